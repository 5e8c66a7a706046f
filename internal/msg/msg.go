package msg

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastMsg displays a temporary message.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool // true for error toasts (red), false for success (green)
}

// ShowToast returns a command to show a toast message.
func ShowToast(message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  message,
			Duration: duration,
		}
	}
}

// ShowError returns a command to show err as an error toast.
func ShowError(prefix string, err error) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  prefix + ": " + err.Error(),
			Duration: 5 * time.Second,
			IsError:  true,
		}
	}
}

// ConfirmMsg asks the app to show a yes/no dialog. OnConfirm is called
// from Update when the user accepts.
type ConfirmMsg struct {
	Title     string
	Body      string
	Danger    bool
	OnConfirm func() tea.Cmd
}

// PromptMsg asks the app to show a single-line text input dialog.
type PromptMsg struct {
	Title       string
	Placeholder string
	Value       string
	// OnSubmit builds the command to run with the entered text.
	OnSubmit func(value string) tea.Cmd
}

// OpenPaletteMsg opens the command palette, optionally in quick-open mode
// listing notes.
type OpenPaletteMsg struct {
	QuickOpen bool
}

// QuitMsg asks the app to flush pending saves and exit.
type QuitMsg struct{}
