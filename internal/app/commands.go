package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/config"
	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/plugin"
)

// Message types for tea.Cmd
type (
	// TickMsg is sent on each clock tick.
	TickMsg time.Time

	// TogglePaletteMsg opens or closes the command palette.
	TogglePaletteMsg struct{}

	// ToggleHelpMsg opens or closes the shortcut overlay.
	ToggleHelpMsg struct{}

	// ToggleFooterMsg shows or hides the footer.
	ToggleFooterMsg struct{}

	// CycleThemeMsg switches to the next theme.
	CycleThemeMsg struct{}

	// configReloadedMsg carries a config file change.
	configReloadedMsg config.ReloadEvent
)

// tickCmd returns a command that ticks every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func send(m tea.Msg) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return m }
	}
}

// appCommands are the commands the app handles itself. They are listed in
// the palette next to the plugin commands.
func appCommands() []plugin.Command {
	return []plugin.Command{
		{ID: "quit", Name: "Quit", Description: "Save pending edits and quit", Category: plugin.CategorySystem, Handler: send(msg.QuitMsg{})},
		{ID: "toggle-palette", Name: "Palette", Description: "Open the command palette", Category: plugin.CategorySystem, Handler: send(TogglePaletteMsg{})},
		{ID: "toggle-help", Name: "Help", Description: "Show keyboard shortcuts", Category: plugin.CategorySystem, Handler: send(ToggleHelpMsg{})},
		{ID: "toggle-footer", Name: "Footer", Description: "Show or hide the footer", Category: plugin.CategoryView, Handler: send(ToggleFooterMsg{})},
		{ID: "cycle-theme", Name: "Theme", Description: "Switch to the next color theme", Category: plugin.CategoryView, Handler: send(CycleThemeMsg{})},
	}
}

// registerAppCommands makes the app commands resolvable through km.
func registerAppCommands(km *keymap.Registry) {
	for _, c := range appCommands() {
		km.RegisterCommand(keymap.Command{ID: c.ID, Name: c.Name, Context: keymap.GlobalContext, Handler: c.Handler})
	}
}

// listenConfig waits for the next config reload event.
func listenConfig(ch <-chan config.ReloadEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return configReloadedMsg(ev)
	}
}
