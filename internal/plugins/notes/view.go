package notes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/marcus/twonote/internal/formatting"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/state"
	"github.com/marcus/twonote/internal/styles"
)

// panelChrome is the border plus horizontal padding of a panel.
const panelChrome = 4

// layout returns the outer widths of the sidebar and main panels.
func (p *Plugin) layout() (sidebar, main int) {
	sidebar = min(p.sidebarWidth, p.width/2)
	return sidebar, p.width - sidebar
}

// editorSize returns the size of the editing area, before splitting into
// columns.
func (p *Plugin) editorSize() (width, height int) {
	_, main := p.layout()
	width = main - panelChrome
	height = p.height - 2 - 2 // borders, header and status lines
	if p.note != nil && len(p.note.Attachments) > 0 {
		height--
	}
	if p.previewMode == state.PreviewSplit {
		width = (width - dividerWidth) / 2
	}
	return width, height
}

// View renders the plugin.
func (p *Plugin) View(width, height int) string {
	if width != p.width || height != p.height {
		p.width, p.height = width, height
		p.updateTextareaDimensions()
	}

	sw, mw := p.layout()
	innerH := max(1, height-2)

	sidebarStyle := styles.PanelInactive
	mainStyle := styles.PanelInactive
	if p.active == paneSidebar {
		sidebarStyle = styles.PanelActive
	} else {
		mainStyle = styles.PanelActive
	}

	sidebar := sidebarStyle.
		Width(sw - 2).
		Height(innerH).
		MaxHeight(height).
		Render(p.renderSidebar(sw-panelChrome, innerH))

	var body string
	switch {
	case p.active == paneTasks:
		body = p.renderTasks(mw-panelChrome, innerH)
	case p.note == nil:
		body = p.renderEmpty(mw-panelChrome, innerH)
	default:
		body = p.renderNote(mw-panelChrome, innerH)
	}
	main := mainStyle.
		Width(mw - 2).
		Height(innerH).
		MaxHeight(height).
		Render(body)

	content := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

func (p *Plugin) renderEmpty(width, height int) string {
	msg := "Select a note, or press alt+n to create one."
	if len(p.notebooks) == 0 {
		msg = "Press alt+N to create a notebook."
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.Muted.Render(msg))
}

// renderNote renders the header, attachment bar, editor or preview, and
// the status line.
func (p *Plugin) renderNote(width, height int) string {
	var parts []string
	parts = append(parts, p.renderNoteHeader(width))
	if bar := p.renderAttachmentBar(width); bar != "" {
		parts = append(parts, bar)
	}
	bodyHeight := max(1, height-len(parts)-1)

	var body string
	switch p.previewMode {
	case state.PreviewOnly:
		body, p.previewScroll = sliceLines(p.renderPreview(width), p.previewScroll, bodyHeight)
	case state.PreviewSplit:
		half := (width - dividerWidth) / 2
		preview, off := sliceLines(p.renderPreview(width-half-dividerWidth), p.previewScroll, bodyHeight)
		p.previewScroll = off
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(half).Height(bodyHeight).MaxHeight(bodyHeight).Render(p.renderEditor()),
			p.divider(bodyHeight),
			preview)
	default:
		body = p.renderEditor()
	}
	parts = append(parts, lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body))
	parts = append(parts, p.renderStatus(width))
	return strings.Join(parts, "\n")
}

func (p *Plugin) renderEditor() string {
	if !p.twoColumn() {
		return p.columns[0].View()
	}
	_, h := p.editorSize()
	return lipgloss.JoinHorizontal(lipgloss.Top, p.columns[0].View(), p.divider(h), p.columns[1].View())
}

func (p *Plugin) divider(height int) string {
	return styles.Subtle.Render(strings.TrimSuffix(strings.Repeat("│\n", max(1, height)), "\n"))
}

func (p *Plugin) renderNoteHeader(width int) string {
	title := styles.Title.Render(notebook.DisplayTitle(*p.note))
	if p.dirty {
		title += " " + styles.Modified.Render("●")
	}
	if nb := p.findNotebook(p.note.NotebookID); nb != nil {
		title += styles.Subtle.Render("  in " + nb.Name)
	}
	return ansi.Truncate(title, width, "…")
}

// renderStatus renders cursor position, column, mark, task counts and save
// state.
func (p *Plugin) renderStatus(width int) string {
	ta := p.activeTextarea()
	line, col := formatting.Position(ta.Value(), textOffset(ta))
	items := []string{fmt.Sprintf("Ln %d, Col %d", line+1, col+1)}
	if p.twoColumn() {
		side := "left"
		if p.column == 1 {
			side = "right"
		}
		items = append(items, "column "+side)
	}
	if p.mark >= 0 {
		start, end, _ := p.selection()
		items = append(items, fmt.Sprintf("mark %d chars", abs(end-start)))
	}
	if open, done := notebook.TaskCounts(p.content()); open+done > 0 {
		items = append(items, fmt.Sprintf("%d/%d tasks done", done, open+done))
	}
	switch {
	case p.dirty:
		items = append(items, styles.Modified.Render("modified"))
	case !p.note.UpdatedAt.IsZero():
		items = append(items, "saved "+humanize.Time(p.note.UpdatedAt))
	}
	if p.previewMode != state.PreviewOff {
		items = append(items, "preview "+p.previewMode)
	}
	return styles.BarText.Render(ansi.Truncate(strings.Join(items, " · "), width, "…"))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
