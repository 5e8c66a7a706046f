package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/plugin"
	"github.com/marcus/twonote/internal/styles"
	"github.com/marcus/twonote/internal/ui"
)

const (
	headerHeight = 1
	footerHeight = 1
	minWidth     = 60
	minHeight    = 16
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.ToastError.Render(msg))
	}

	contentHeight := m.height - headerHeight
	if m.showFooter {
		contentHeight -= footerHeight
	}
	if contentHeight < 0 {
		contentHeight = 0
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent(m.width, contentHeight))
	if m.showFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}
	bg := b.String()

	switch m.activeModal() {
	case ModalDialog:
		return ui.OverlayModal(bg, m.dialog.View(), m.width, m.height)
	case ModalPalette:
		return ui.OverlayModal(bg, m.palette.View(), m.width, m.height)
	case ModalHelp:
		return m.renderHelpOverlay(bg)
	}

	// Without a footer, toasts float in the corner.
	if !m.showFooter && m.statusMsg != "" {
		toast := ui.Toast(m.statusMsg, m.statusIsError, m.width/2)
		return ui.Overlay(bg, toast, m.width, m.height, ui.BottomRight, false)
	}
	return bg
}

// renderHeader renders the title bar: name, storage backend and clock.
func (m Model) renderHeader() string {
	title := styles.Logo.Render(" twonote")
	if m.opts.Backend != "" {
		title += styles.Subtle.Render(" / " + m.opts.Backend)
	}
	clock := styles.BarText.Render(m.clock.Format("15:04") + " ")

	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(clock)
	if spacing < 0 {
		spacing = 0
	}
	return lipgloss.NewStyle().Width(m.width).MaxWidth(m.width).
		Render(title + strings.Repeat(" ", spacing) + clock)
}

// renderContent renders the main content area.
func (m Model) renderContent(width, height int) string {
	p := m.ActivePlugin()
	if p == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			styles.Muted.Render("No plugins loaded"))
	}
	if height == 0 {
		return ""
	}
	content := p.View(width, height)
	// MaxHeight truncates; Height only pads.
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

// renderFooter renders the bottom bar with key hints and status.
func (m Model) renderFooter() string {
	var status string
	if m.statusMsg != "" {
		toastStyle := styles.ToastSuccess
		if m.statusIsError {
			toastStyle = styles.ToastError
		}
		status = toastStyle.Render(m.statusMsg)
	}

	statusWidth := lipgloss.Width(status)
	availableForHints := m.width - statusWidth - 4
	hintsStr := renderHintLineTruncated(m.footerHints(), availableForHints)

	spacing := m.width - lipgloss.Width(hintsStr) - statusWidth
	if spacing < 0 {
		spacing = 0
	}
	footer := hintsStr + strings.Repeat(" ", spacing) + status
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(footer)
}

type footerHint struct {
	keys  string
	label string
}

func (m Model) footerHints() []footerHint {
	var hints []footerHint
	if p := m.ActivePlugin(); p != nil {
		hints = m.pluginFooterHints(p, m.activeContext)
	}
	return append(hints, m.globalFooterHints()...)
}

func (m Model) globalFooterHints() []footerHint {
	keysByCmd := bindingKeysByCommand(m.keymap.BindingsForContext(keymap.GlobalContext))
	specs := []struct {
		id    string
		label string
	}{
		{id: "toggle-palette", label: "palette"},
		{id: "toggle-help", label: "help"},
		{id: "quit", label: "quit"},
	}

	var hints []footerHint
	for _, spec := range specs {
		keys := keysByCmd[spec.id]
		if len(keys) == 0 {
			continue
		}
		hints = append(hints, footerHint{keys: keys[0], label: spec.label})
	}
	return hints
}

func (m Model) pluginFooterHints(p plugin.Plugin, context string) []footerHint {
	if context == "" || context == keymap.GlobalContext {
		return nil
	}
	keysByCmd := bindingKeysByCommand(m.keymap.BindingsForContext(context))

	type cmdWithPriority struct {
		cmd      plugin.Command
		keys     []string
		priority int
	}
	var cmds []cmdWithPriority
	for _, cmd := range p.Commands() {
		if cmd.Context != context {
			continue
		}
		keys := keysByCmd[cmd.ID]
		if len(keys) == 0 {
			continue
		}
		priority := cmd.Priority
		if priority == 0 {
			priority = 99
		}
		cmds = append(cmds, cmdWithPriority{cmd, keys, priority})
	}
	sort.SliceStable(cmds, func(i, j int) bool {
		return cmds[i].priority < cmds[j].priority
	})

	hints := make([]footerHint, 0, len(cmds))
	for _, c := range cmds {
		hints = append(hints, footerHint{keys: formatBindingKeys(c.keys), label: c.cmd.Name})
	}
	return hints
}

func bindingKeysByCommand(bindings []keymap.Binding) map[string][]string {
	keysByCmd := make(map[string][]string, len(bindings))
	for _, b := range bindings {
		keysByCmd[b.Command] = append(keysByCmd[b.Command], b.Key)
	}
	return keysByCmd
}

// renderHintLineTruncated renders hints but stops adding when maxWidth is exceeded.
func renderHintLineTruncated(hints []footerHint, maxWidth int) string {
	if len(hints) == 0 || maxWidth <= 0 {
		return ""
	}
	var result string
	for _, hint := range hints {
		if hint.keys == "" || hint.label == "" {
			continue
		}
		part := fmt.Sprintf("%s %s", styles.KeyHint.Render(hint.keys), hint.label)
		candidate := part
		if result != "" {
			candidate = result + "  " + part
		}
		if lipgloss.Width(candidate) > maxWidth {
			break
		}
		result = candidate
	}
	return result
}

// renderHelpOverlay renders the help modal over content.
func (m Model) renderHelpOverlay(content string) string {
	modal := styles.ModalBox.Render(m.buildHelpContent())
	return ui.OverlayModal(content, modal, m.width, m.height)
}

// buildHelpContent lists the global bindings and those of the focused pane.
func (m Model) buildHelpContent() string {
	var b strings.Builder

	b.WriteString(styles.ModalTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(styles.Title.Render("Global"))
	b.WriteString("\n")
	m.renderBindingSection(&b, keymap.GlobalContext)
	b.WriteString("\n")

	if ctx := m.activeContext; ctx != keymap.GlobalContext && ctx != "" {
		if len(m.keymap.BindingsForContext(ctx)) > 0 {
			b.WriteString(styles.Title.Render(contextTitle(ctx)))
			b.WriteString("\n")
			m.renderBindingSection(&b, ctx)
			b.WriteString("\n")
		}
	}

	b.WriteString(styles.Subtle.Render("Press f1 or esc to close"))
	return b.String()
}

// contextTitle turns "notes-editor" into "Editor".
func contextTitle(ctx string) string {
	if i := strings.LastIndex(ctx, "-"); i >= 0 {
		ctx = ctx[i+1:]
	}
	if ctx == "" {
		return ""
	}
	return strings.ToUpper(ctx[:1]) + ctx[1:]
}

// renderBindingSection renders bindings for a context.
func (m Model) renderBindingSection(b *strings.Builder, context string) {
	bindings := m.keymap.BindingsForContext(context)
	keysByCmd := bindingKeysByCommand(bindings)

	seen := make(map[string]bool)
	for _, binding := range bindings {
		if seen[binding.Command] {
			continue
		}
		seen[binding.Command] = true

		padded := fmt.Sprintf("%-14s", formatBindingKeys(keysByCmd[binding.Command]))
		fmt.Fprintf(b, "  %s %s\n", styles.Muted.Render(padded), formatCommandName(binding.Command))
	}
}

// formatBindingKeys formats multiple keys into a display string.
func formatBindingKeys(keys []string) string {
	if len(keys) > 2 {
		keys = keys[:2]
	}
	return strings.Join(keys, ", ")
}

// formatCommandName converts a command ID to a display name.
func formatCommandName(cmd string) string {
	return strings.ReplaceAll(cmd, "-", " ")
}
