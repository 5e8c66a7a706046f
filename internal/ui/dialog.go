package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/twonote/internal/styles"
)

// Modal widths.
const (
	ModalWidthMedium = 50
	ModalWidthLarge  = 70
)

// DialogKind selects between a yes/no confirmation and a text prompt.
type DialogKind int

const (
	KindConfirm DialogKind = iota
	KindPrompt
)

// DialogResult is what a key press did to a dialog.
type DialogResult int

const (
	DialogPending DialogResult = iota
	DialogAccepted
	DialogCanceled
)

// Dialog is a modal confirmation or single-line prompt. The accept button
// has focus 0 and cancel has focus 1.
type Dialog struct {
	Kind         DialogKind
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Danger       bool
	Width        int

	input textinput.Model
	focus int
}

// NewConfirmDialog creates a yes/no dialog.
func NewConfirmDialog(title, message string) *Dialog {
	return &Dialog{
		Kind:         KindConfirm,
		Title:        title,
		Message:      message,
		ConfirmLabel: " Confirm ",
		CancelLabel:  " Cancel ",
		Width:        ModalWidthMedium,
	}
}

// NewPromptDialog creates a text prompt prefilled with value.
func NewPromptDialog(title, placeholder, value string) *Dialog {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return &Dialog{
		Kind:         KindPrompt,
		Title:        title,
		ConfirmLabel: " OK ",
		CancelLabel:  " Cancel ",
		Width:        ModalWidthLarge,
		input:        ti,
	}
}

// Value returns the prompt text.
func (d *Dialog) Value() string {
	return d.input.Value()
}

// Focus returns the focused button index.
func (d *Dialog) Focus() int {
	return d.focus
}

// Update handles a message. Keys other than the dialog's own go to the
// text input of a prompt.
func (d *Dialog) Update(msg tea.Msg) (DialogResult, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		if d.Kind == KindPrompt {
			var cmd tea.Cmd
			d.input, cmd = d.input.Update(msg)
			return DialogPending, cmd
		}
		return DialogPending, nil
	}

	switch k.String() {
	case "esc", "ctrl+c":
		return DialogCanceled, nil
	case "enter":
		if d.focus == 1 {
			return DialogCanceled, nil
		}
		return DialogAccepted, nil
	case "tab", "shift+tab":
		d.focus = 1 - d.focus
		return DialogPending, nil
	}

	if d.Kind == KindConfirm {
		switch k.String() {
		case "y", "Y":
			return DialogAccepted, nil
		case "n", "N":
			return DialogCanceled, nil
		case "left", "h":
			d.focus = 0
		case "right", "l":
			d.focus = 1
		}
		return DialogPending, nil
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return DialogPending, cmd
}

// View renders the dialog box.
func (d *Dialog) View() string {
	width := d.Width
	if width == 0 {
		width = ModalWidthMedium
	}
	inner := width - 4

	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render(d.Title))
	if d.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(d.Message))
	}
	if d.Kind == KindPrompt {
		d.input.Width = inner - 3
		b.WriteString("\n\n")
		b.WriteString(d.input.View())
	}
	b.WriteString("\n\n")
	b.WriteString(d.buttons())
	return styles.ModalBox.Width(width).Render(b.String())
}

func (d *Dialog) buttons() string {
	accept, cancel := styles.Button, styles.Button
	if d.focus == 0 {
		accept = styles.ButtonFocused
		if d.Danger {
			accept = styles.ButtonDangerFocused
		}
	} else {
		cancel = styles.ButtonFocused
		if d.Danger {
			accept = styles.ButtonDanger
		}
	}
	return accept.Render(d.ConfirmLabel) + "  " + cancel.Render(d.CancelLabel)
}
