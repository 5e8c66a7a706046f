package notes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/state"
	"github.com/marcus/twonote/internal/styles"
)

// sidebarRow is one line of the sidebar: a notebook header or a note.
type sidebarRow struct {
	notebook *notebook.Notebook
	note     *notebook.Note
}

func (r sidebarRow) notebookID() string {
	if r.note != nil {
		return r.note.NotebookID
	}
	return r.notebook.ID
}

// rebuildRows lays out notebooks with their notes beneath, skipping the
// notes of collapsed notebooks. The cursor stays on the same item.
func (p *Plugin) rebuildRows() {
	var selectedNote, selectedNotebook string
	if row, ok := p.selectedRow(); ok {
		if row.note != nil {
			selectedNote = row.note.ID
		} else {
			selectedNotebook = row.notebook.ID
		}
	}

	p.rows = p.rows[:0]
	for i := range p.notebooks {
		nb := &p.notebooks[i]
		p.rows = append(p.rows, sidebarRow{notebook: nb})
		if p.collapsed[nb.ID] {
			continue
		}
		for _, n := range notebook.NotesIn(p.notes, nb.ID) {
			p.rows = append(p.rows, sidebarRow{notebook: nb, note: p.findNote(n.ID)})
		}
	}

	switch {
	case selectedNote != "" && p.selectNote(selectedNote):
	case selectedNotebook != "" && p.selectNotebook(selectedNotebook):
	default:
		p.cursor = max(0, min(p.cursor, len(p.rows)-1))
	}
}

func (p *Plugin) selectedRow() (sidebarRow, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return sidebarRow{}, false
	}
	return p.rows[p.cursor], true
}

// selectNote moves the cursor to a note row.
func (p *Plugin) selectNote(id string) bool {
	for i, r := range p.rows {
		if r.note != nil && r.note.ID == id {
			p.cursor = i
			return true
		}
	}
	return false
}

// selectNotebook moves the cursor to a notebook header.
func (p *Plugin) selectNotebook(id string) bool {
	for i, r := range p.rows {
		if r.note == nil && r.notebook.ID == id {
			p.cursor = i
			return true
		}
	}
	return false
}

func (p *Plugin) moveCursor(delta int) {
	if len(p.rows) == 0 {
		return
	}
	p.cursor = max(0, min(len(p.rows)-1, p.cursor+delta))
}

// activateRow opens the selected note or collapses/expands the selected
// notebook.
func (p *Plugin) activateRow() (focusEditor bool) {
	row, ok := p.selectedRow()
	if !ok {
		return false
	}
	if row.note == nil {
		p.collapsed[row.notebook.ID] = !p.collapsed[row.notebook.ID]
		p.rebuildRows()
		return false
	}
	p.openNote(*row.note)
	return true
}

// stepNote opens the next (delta 1) or previous (-1) note in sidebar order.
func (p *Plugin) stepNote(delta int) bool {
	var ids []string
	current := -1
	for _, nb := range p.notebooks {
		for _, n := range notebook.NotesIn(p.notes, nb.ID) {
			if p.note != nil && n.ID == p.note.ID {
				current = len(ids)
			}
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return false
	}
	next := 0
	if current >= 0 {
		next = current + delta
	}
	if next < 0 || next >= len(ids) {
		return false
	}
	n := p.findNote(ids[next])
	p.collapsed[n.NotebookID] = false
	p.rebuildRows()
	p.selectNote(n.ID)
	p.openNote(*n)
	return true
}

// resizeSidebar changes the sidebar width by delta and remembers it.
func (p *Plugin) resizeSidebar(delta int) {
	p.sidebarWidth = max(minSidebarWidth, min(maxSidebarWidth, p.sidebarWidth+delta))
	p.updateTextareaDimensions()
	if err := state.SetSidebarWidth(p.sidebarWidth); err != nil {
		p.logger().Debug("notes: save sidebar width failed", "error", err)
	}
}

// renderSidebar renders the notebook tree into width x height.
func (p *Plugin) renderSidebar(width, height int) string {
	if height < 1 {
		return ""
	}
	if len(p.rows) == 0 {
		hint := "No notebooks yet"
		if !p.loaded {
			hint = "Loading..."
		}
		return styles.Muted.Render(hint)
	}

	if p.cursor < p.scroll {
		p.scroll = p.cursor
	}
	if p.cursor >= p.scroll+height {
		p.scroll = p.cursor - height + 1
	}

	var b strings.Builder
	end := min(len(p.rows), p.scroll+height)
	for i := p.scroll; i < end; i++ {
		if i > p.scroll {
			b.WriteString("\n")
		}
		b.WriteString(p.renderRow(p.rows[i], i == p.cursor, width))
	}
	return b.String()
}

func (p *Plugin) renderRow(r sidebarRow, selected bool, width int) string {
	var line string
	if r.note == nil {
		arrow := "▾"
		if p.collapsed[r.notebook.ID] {
			arrow = "▸"
		}
		count := len(notebook.NotesIn(p.notes, r.notebook.ID))
		label := fmt.Sprintf("%s %s", arrow, r.notebook.Name)
		suffix := fmt.Sprintf(" %d", count)
		line = ansi.Truncate(label, max(0, width-len(suffix)-1), "…")
		line = styles.SectionHeader.Render(line) + styles.Subtle.Render(suffix)
	} else {
		title := notebook.DisplayTitle(*r.note)
		marker := "  "
		if p.note != nil && p.note.ID == r.note.ID {
			marker = styles.ListCursor.Render("• ")
			if p.dirty {
				title += " " + styles.Modified.Render("*")
			}
		}
		open, _ := notebook.TaskCounts(r.note.Content)
		suffix := ""
		if open > 0 {
			suffix = styles.TaskOpen.Render(fmt.Sprintf(" [%d]", open))
		}
		line = "  " + marker + ansi.Truncate(title, max(0, width-6-ansi.StringWidth(suffix)), "…") + suffix
	}

	if selected && p.active == paneSidebar {
		return styles.ListItemSelected.Width(width).MaxWidth(width).Render(ansi.Strip(line))
	}
	return styles.ListItemNormal.MaxWidth(width).Render(line)
}
