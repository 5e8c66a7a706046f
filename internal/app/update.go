package app

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/config"
	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/palette"
	"github.com/marcus/twonote/internal/plugin"
	"github.com/marcus/twonote/internal/styles"
	"github.com/marcus/twonote/internal/ui"
)

// Update handles all messages and returns the updated model and commands.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		m.palette.SetSize(m.width, m.height)
		return m, nil

	case TickMsg:
		m.clock = time.Time(message)
		m.ClearToast()
		return m, tickCmd()

	case msg.ToastMsg:
		m.ShowToast(message.Message, message.Duration, message.IsError)
		return m, nil

	case msg.PromptMsg:
		d := ui.NewPromptDialog(message.Title, message.Placeholder, message.Value)
		return m, m.openDialog(d, message.OnSubmit)

	case msg.ConfirmMsg:
		d := ui.NewConfirmDialog(message.Title, message.Body)
		d.Danger = message.Danger
		if message.Danger {
			d.ConfirmLabel = " Delete "
		}
		onConfirm := message.OnConfirm
		return m, m.openDialog(d, func(string) tea.Cmd {
			if onConfirm == nil {
				return nil
			}
			return onConfirm()
		})

	case msg.QuitMsg:
		d := ui.NewConfirmDialog("Quit twonote?", "Pending edits are saved before exiting.")
		d.ConfirmLabel = " Quit "
		return m, m.openDialog(d, func(string) tea.Cmd { return m.quit() })

	case msg.OpenPaletteMsg:
		return m, m.openPalette(message.QuickOpen)

	case TogglePaletteMsg:
		if m.showPalette {
			m.closePalette()
			return m, nil
		}
		return m, m.openPalette(false)

	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil

	case ToggleFooterMsg:
		m.showFooter = !m.showFooter
		return m, nil

	case CycleThemeMsg:
		return m, m.cycleTheme()

	case configReloadedMsg:
		cmd := m.applyConfig(config.ReloadEvent(message))
		return m, tea.Batch(cmd, listenConfig(m.reloads))

	case palette.CommandSelectedMsg:
		m.closePalette()
		return m, m.runCommand(message.CommandID, message.Context)

	case palette.NoteSelectedMsg:
		m.closePalette()
		if src, ok := m.ActivePlugin().(noteSource); ok {
			cmd := src.OpenNoteByID(message.NoteID)
			m.updateContext()
			return m, cmd
		}
		return m, nil

	case palette.ClosedMsg:
		m.closePalette()
		return m, nil
	}

	var cmds []tea.Cmd
	switch m.activeModal() {
	case ModalDialog:
		// cursor blink for prompt input
		_, cmd := m.dialog.Update(message)
		cmds = append(cmds, cmd)
	case ModalPalette:
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(message)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.forwardToPlugins(message))
	return m, tea.Batch(cmds...)
}

// forwardToPlugins sends a message to every plugin so async results reach
// their plugin even when another one has focus.
func (m *Model) forwardToPlugins(message tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	plugins := m.registry.Plugins()
	for i, p := range plugins {
		next, cmd := p.Update(message)
		plugins[i] = next
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if m.activeModal() == ModalNone {
		m.updateContext()
	}
	return tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (m Model) handleKeyMsg(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.activeModal() {
	case ModalDialog:
		result, cmd := m.dialog.Update(k)
		switch result {
		case ui.DialogAccepted:
			value, accept := m.dialog.Value(), m.onAccept
			m.dialog, m.onAccept = nil, nil
			if accept != nil {
				cmd = tea.Batch(cmd, accept(value))
			}
			m.updateContext()
		case ui.DialogCanceled:
			m.dialog, m.onAccept = nil, nil
			m.updateContext()
		}
		return m, cmd

	case ModalPalette:
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(k)
		return m, cmd

	case ModalHelp:
		switch k.String() {
		case "esc", "q", "?", "f1":
			m.showHelp = false
		case "ctrl+c":
			m.showHelp = false
			return m, func() tea.Msg { return msg.QuitMsg{} }
		}
		return m, nil
	}

	// Typed text goes straight to an editor unless a key sequence is
	// waiting for its second key.
	if m.consumesText() && isTextKey(k) && !m.keymap.HasPending() {
		return m, m.forwardKey(k)
	}

	id, pending := m.keymap.Resolve(k.String(), m.activeContext)
	if pending {
		return m, nil
	}
	if id != "" {
		return m, m.runCommand(id, m.activeContext)
	}
	return m, m.forwardKey(k)
}

// runCommand runs an app command through its keymap handler, or hands the
// command to the focused plugin.
func (m *Model) runCommand(id, context string) tea.Cmd {
	if c, ok := m.keymap.GetCommand(id); ok && c.Handler != nil {
		return c.Handler()
	}
	runner, ok := m.ActivePlugin().(plugin.CommandRunner)
	if !ok {
		return nil
	}
	cmd := runner.RunCommand(id, context)
	m.updateContext()
	return cmd
}

// forwardKey sends an unbound key to the focused plugin.
func (m *Model) forwardKey(k tea.KeyMsg) tea.Cmd {
	p := m.ActivePlugin()
	if p == nil {
		return nil
	}
	next, cmd := p.Update(k)
	m.registry.Plugins()[m.activePlugin] = next
	m.updateContext()
	return cmd
}

func (m *Model) consumesText() bool {
	c, ok := m.ActivePlugin().(plugin.TextInputConsumer)
	return ok && c.ConsumesTextInput()
}

// isTextKey reports whether k types printable text.
func isTextKey(k tea.KeyMsg) bool {
	if k.Alt {
		return false
	}
	return k.Paste || k.Type == tea.KeyRunes || k.Type == tea.KeySpace
}

// updateContext sets activeContext from the focused plugin.
func (m *Model) updateContext() {
	if p := m.ActivePlugin(); p != nil {
		m.activeContext = p.FocusContext()
		return
	}
	m.activeContext = keymap.GlobalContext
}

func (m *Model) openDialog(d *ui.Dialog, onAccept func(string) tea.Cmd) tea.Cmd {
	m.dialog = d
	m.onAccept = onAccept
	m.showPalette = false
	m.showHelp = false
	return nil
}

// paletteCommands lists app commands and the focused plugin's commands.
func (m *Model) paletteCommands() []plugin.Command {
	cmds := appCommands()
	if p := m.ActivePlugin(); p != nil {
		cmds = append(cmds, p.Commands()...)
	}
	return cmds
}

func (m *Model) openPalette(quickOpen bool) tea.Cmd {
	m.palette.SetSize(m.width, m.height)
	m.showPalette = true
	m.showHelp = false
	if quickOpen {
		src, ok := m.ActivePlugin().(noteSource)
		if !ok {
			m.showPalette = false
			return nil
		}
		return m.palette.OpenQuick(palette.NoteEntries(src.Notes(), src.Notebooks()))
	}
	cmds := m.paletteCommands()
	return m.palette.Open(m.activeContext,
		palette.BuildEntries(m.keymap, cmds, m.activeContext, false),
		palette.BuildEntries(m.keymap, cmds, m.activeContext, true))
}

func (m *Model) closePalette() {
	m.showPalette = false
	m.updateContext()
}

// cycleTheme applies the theme after the current one and saves it.
func (m *Model) cycleTheme() tea.Cmd {
	names := styles.ThemeNames()
	if len(names) == 0 {
		return nil
	}
	i := slices.Index(names, styles.CurrentTheme())
	name := styles.ApplyTheme(names[(i+1)%len(names)])
	m.cfg.UI.Theme = name
	if m.opts.ConfigPath != "" {
		if err := config.SaveTheme(name); err != nil {
			m.logger().Warn("save theme failed", "error", err)
		}
	}
	return tea.Batch(
		m.forwardToPlugins(plugin.ThemeChangedMsg{}),
		msg.ShowToast("Theme: "+name, 0),
	)
}

// applyConfig takes over the settings that can change while running.
func (m *Model) applyConfig(ev config.ReloadEvent) tea.Cmd {
	if ev.Err != nil {
		m.logger().Warn("config reload failed", "error", ev.Err)
		return msg.ShowError("Config reload failed", ev.Err)
	}
	if ev.Config == nil {
		return nil
	}
	storage := m.cfg.Storage
	*m.cfg = *ev.Config
	// the store is opened once at startup
	m.cfg.Storage = storage

	m.showFooter = m.cfg.UI.ShowFooter
	for key, cmdID := range m.cfg.Keymap.Overrides {
		m.keymap.SetUserOverride(key, cmdID)
	}
	var cmds []tea.Cmd
	if styles.CurrentTheme() != m.cfg.UI.Theme {
		styles.ApplyTheme(m.cfg.UI.Theme)
		cmds = append(cmds, m.forwardToPlugins(plugin.ThemeChangedMsg{}))
	}
	m.logger().Info("config reloaded")
	cmds = append(cmds, msg.ShowToast("Config reloaded", 0))
	return tea.Batch(cmds...)
}
