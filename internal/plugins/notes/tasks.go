package notes

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/twonote/internal/formatting"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/store"
	"github.com/marcus/twonote/internal/styles"
)

// refreshTasks recomputes the pending task list, reading the open note from
// the editor buffer.
func (p *Plugin) refreshTasks() {
	notes := make([]notebook.Note, 0, len(p.notes))
	for _, nb := range p.notebooks {
		for _, n := range notebook.NotesIn(p.notes, nb.ID) {
			if p.note != nil && n.ID == p.note.ID {
				n.Content = p.content()
			}
			notes = append(notes, n)
		}
	}
	p.tasks = notebook.PendingTasks(notes)
	p.taskCursor = max(0, min(p.taskCursor, len(p.tasks)-1))
}

// toggleTasks shows or hides the pending task list.
func (p *Plugin) toggleTasks() tea.Cmd {
	if p.active == paneTasks {
		p.active = paneSidebar
		if p.note != nil {
			return p.focusEditor()
		}
		return nil
	}
	p.refreshTasks()
	p.active = paneTasks
	p.activeTextarea().Blur()
	return nil
}

func (p *Plugin) selectedTask() (notebook.PendingTask, bool) {
	if p.taskCursor < 0 || p.taskCursor >= len(p.tasks) {
		return notebook.PendingTask{}, false
	}
	return p.tasks[p.taskCursor], true
}

func (p *Plugin) moveTaskCursor(delta int) {
	if len(p.tasks) == 0 {
		return
	}
	p.taskCursor = max(0, min(len(p.tasks)-1, p.taskCursor+delta))
}

// storedLineColumn maps a 0-based line of stored content to the editor
// column and row that display it. ok is false for the separator line.
func storedLineColumn(n notebook.Note, line int) (column, row int, ok bool) {
	if !n.TwoColumn() {
		return 0, line, true
	}
	left, _ := notebook.SplitColumns(n.Content)
	leftLines := len(formatting.SplitLines(left))
	switch {
	case line < leftLines:
		return 0, line, true
	case line == leftLines:
		return 0, 0, false
	default:
		return 1, line - leftLines - 1, true
	}
}

// openTask opens the note of the selected task with the cursor on its line.
func (p *Plugin) openTask() tea.Cmd {
	t, ok := p.selectedTask()
	if !ok {
		return nil
	}
	n := p.findNote(t.NoteID)
	if n == nil {
		return nil
	}
	save := p.saveNote()
	p.collapsed[n.NotebookID] = false
	p.rebuildRows()
	p.selectNote(n.ID)
	p.openNote(*n)

	stored := *n
	stored.Content = p.content()
	if col, row, ok := storedLineColumn(stored, t.Line-1); ok {
		p.column = col
		p.mark = -1
		ta := p.activeTextarea()
		setTextOffset(ta, formatting.OffsetOf(ta.Value(), row, 0))
	}
	return tea.Batch(save, p.focusEditor())
}

// completeTask marks the selected task done.
func (p *Plugin) completeTask() tea.Cmd {
	t, ok := p.selectedTask()
	if !ok {
		return nil
	}
	n := p.findNote(t.NoteID)
	if n == nil {
		return nil
	}

	if p.note != nil && p.note.ID == n.ID {
		content := p.content()
		e := formatting.ToggleTask(content, formatting.OffsetOf(content, t.Line-1, 0))
		p.setContent(e.Content)
		p.refreshTasks()
		return tea.Batch(p.markDirty(), p.saveNote(), msg.ShowToast("Task done", toastDuration))
	}

	e := formatting.ToggleTask(n.Content, formatting.OffsetOf(n.Content, t.Line-1, 0))
	n.Content = e.Content
	p.refreshTasks()
	if p.ctx == nil || p.ctx.Saver == nil {
		return nil
	}
	content := e.Content
	gen, done := p.ctx.Saver.Submit(n.ID, store.NoteUpdate{Content: &content})
	epoch := p.ctx.Epoch
	return tea.Batch(func() tea.Msg {
		return NoteSavedMsg{Result: <-done, Generation: gen, Epoch: epoch}
	}, msg.ShowToast("Task done", toastDuration))
}

// setContent replaces the editor buffer with stored content, keeping the
// cursor offset of each column where possible.
func (p *Plugin) setContent(content string) {
	left, right := content, ""
	if p.twoColumn() {
		left, right = notebook.SplitColumns(content)
	}
	for i, v := range []string{left, right} {
		ta := &p.columns[i]
		off := textOffset(ta)
		ta.SetValue(v)
		setTextOffset(ta, off)
	}
	p.mark = -1
}

// renderTasks renders the pending task list.
func (p *Plugin) renderTasks(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Pending tasks (%d)", len(p.tasks))))
	if len(p.tasks) == 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.Muted.Render("Nothing to do."))
		return b.String()
	}

	visible := max(1, height-2)
	if p.taskCursor < p.taskScroll {
		p.taskScroll = p.taskCursor
	}
	if p.taskCursor >= p.taskScroll+visible {
		p.taskScroll = p.taskCursor - visible + 1
	}
	b.WriteString("\n")

	lastNote := ""
	end := min(len(p.tasks), p.taskScroll+visible)
	for i := p.taskScroll; i < end; i++ {
		t := p.tasks[i]
		b.WriteString("\n")
		title := ""
		if t.NoteID != lastNote {
			title = t.NoteTitle
			lastNote = t.NoteID
		}
		text := styles.TaskOpen.Render("☐ ") + ansi.Truncate(t.Text, max(0, width-28), "…")
		source := lipgloss.NewStyle().Width(22).Render(styles.Subtle.Render(ansi.Truncate(title, 20, "…")))
		line := source + " " + text
		if i == p.taskCursor && p.active == paneTasks {
			b.WriteString(styles.ListItemSelected.Width(width).MaxWidth(width).Render(ansi.Strip(line)))
			continue
		}
		b.WriteString(styles.ListItemNormal.MaxWidth(width).Render(line))
	}
	return b.String()
}
