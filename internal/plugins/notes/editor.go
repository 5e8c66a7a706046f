package notes

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/autosave"
	"github.com/marcus/twonote/internal/formatting"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/state"
	"github.com/marcus/twonote/internal/store"
)

const defaultAutosaveDelay = time.Second

// textOffset returns the cursor of ta as an absolute rune offset into its
// value.
func textOffset(ta *textarea.Model) int {
	li := ta.LineInfo()
	return formatting.OffsetOf(ta.Value(), ta.Line(), li.StartColumn+li.ColumnOffset)
}

// setTextOffset moves the cursor of ta to an absolute rune offset.
func setTextOffset(ta *textarea.Model, offset int) {
	row, col := formatting.Position(ta.Value(), offset)
	if n := ta.LineCount(); row >= n {
		row = n - 1
	}
	// CursorUp/CursorDown step through soft-wrapped lines, so bound the
	// number of steps rather than the number of rows.
	limit := ta.Length() + ta.LineCount()
	for i := 0; ta.Line() > row && i < limit; i++ {
		ta.CursorUp()
	}
	for i := 0; ta.Line() < row && i < limit; i++ {
		ta.CursorDown()
	}
	ta.SetCursor(col)
}

// activeTextarea returns the focused column's textarea.
func (p *Plugin) activeTextarea() *textarea.Model {
	return &p.columns[p.column]
}

// twoColumn reports whether the open note is edited as two columns.
func (p *Plugin) twoColumn() bool {
	return p.note != nil && p.note.TwoColumn()
}

// content returns the editor buffer as stored note content.
func (p *Plugin) content() string {
	if p.twoColumn() {
		return notebook.JoinColumns(p.columns[0].Value(), p.columns[1].Value())
	}
	return p.columns[0].Value()
}

// openNote loads n into the editor, restoring the remembered cursor.
func (p *Plugin) openNote(n notebook.Note) {
	if p.note != nil && p.note.ID == n.ID {
		return
	}
	p.rememberCursor()

	note := n
	p.note = &note
	p.dirty = false
	p.mark = -1
	p.column = 0
	p.previewScroll = 0

	left, right := n.Content, ""
	if n.TwoColumn() {
		left, right = notebook.SplitColumns(n.Content)
	}
	p.columns[0].SetValue(left)
	p.columns[1].SetValue(right)
	offset := 0
	if saved, ok := state.GetCursor(n.ID); ok {
		offset = saved
	}
	setTextOffset(&p.columns[0], offset)
	setTextOffset(&p.columns[1], 0)
	p.updateTextareaDimensions()

	if err := state.SetLastOpened(n.NotebookID, n.ID); err != nil {
		p.logger().Debug("notes: save state failed", "error", err)
	}
}

// closeNote drops the open note. Callers save first.
func (p *Plugin) closeNote() {
	p.rememberCursor()
	p.note = nil
	p.dirty = false
	p.mark = -1
	p.columns[0].Blur()
	p.columns[1].Blur()
	p.columns[0].Reset()
	p.columns[1].Reset()
	if p.active == paneEditor {
		p.active = paneSidebar
	}
}

func (p *Plugin) rememberCursor() {
	if p.note == nil {
		return
	}
	if err := state.SetCursor(p.note.ID, textOffset(&p.columns[0])); err != nil {
		p.logger().Debug("notes: save cursor failed", "error", err)
	}
}

// focusEditor moves focus to the open note.
func (p *Plugin) focusEditor() tea.Cmd {
	if p.note == nil {
		return nil
	}
	p.active = paneEditor
	p.columns[1-p.column].Blur()
	return p.activeTextarea().Focus()
}

// focusColumn switches to column i of a two-column note.
func (p *Plugin) focusColumn(i int) tea.Cmd {
	if !p.twoColumn() || i == p.column {
		return nil
	}
	p.activeTextarea().Blur()
	p.column = i
	p.mark = -1
	return p.activeTextarea().Focus()
}

// selection returns the selection of the focused column: mark to cursor
// when a mark is set, the collapsed cursor otherwise.
func (p *Plugin) selection() (start, end int, ranged bool) {
	cur := textOffset(p.activeTextarea())
	if p.mark >= 0 && p.mark != cur {
		return p.mark, cur, true
	}
	return cur, cur, false
}

// applyEdit writes a transform result back to the focused column.
func (p *Plugin) applyEdit(e formatting.Edit, keepSelection bool) tea.Cmd {
	ta := p.activeTextarea()
	if e.Content == ta.Value() && textOffset(ta) == e.SelectionEnd {
		return nil
	}
	ta.SetValue(e.Content)
	setTextOffset(ta, e.SelectionEnd)
	if keepSelection && e.SelectionStart != e.SelectionEnd {
		p.mark = e.SelectionStart
	} else {
		p.mark = -1
	}
	return p.markDirty()
}

// markDirty records an edit and restarts the autosave timer.
func (p *Plugin) markDirty() tea.Cmd {
	p.dirty = true
	p.editGen++
	return p.startAutoSaveTimer()
}

// rangeTransform runs a selection-aware transform on the focused column.
func (p *Plugin) rangeTransform(fn func(content string, start, end int) formatting.Edit) tea.Cmd {
	if p.note == nil {
		return nil
	}
	start, end, ranged := p.selection()
	return p.applyEdit(fn(p.activeTextarea().Value(), start, end), ranged)
}

// cursorTransform runs a cursor-line transform on the focused column.
func (p *Plugin) cursorTransform(fn func(content string, cursor int) formatting.Edit) tea.Cmd {
	if p.note == nil {
		return nil
	}
	ta := p.activeTextarea()
	return p.applyEdit(fn(ta.Value(), textOffset(ta)), false)
}

func (p *Plugin) moveLine(dir formatting.Direction) tea.Cmd {
	return p.cursorTransform(func(content string, cursor int) formatting.Edit {
		return formatting.MoveLine(content, cursor, dir)
	})
}

// toggleMark sets the selection anchor at the cursor, or clears it.
func (p *Plugin) toggleMark() tea.Cmd {
	if p.note == nil {
		return nil
	}
	if p.mark >= 0 {
		p.mark = -1
		return msg.ShowToast("Mark cleared", toastDuration)
	}
	p.mark = textOffset(p.activeTextarea())
	return msg.ShowToast("Mark set", toastDuration)
}

// toggleColumns switches the open note between one and two columns. The
// right column is appended to the left when going back to one.
func (p *Plugin) toggleColumns() tea.Cmd {
	if p.note == nil {
		return nil
	}
	p.mark = -1
	if p.twoColumn() {
		left, right := p.columns[0].Value(), p.columns[1].Value()
		merged := left
		if right != "" {
			merged = left + "\n" + right
		}
		p.note.Columns = 1
		p.columns[1].Reset()
		p.columns[0].SetValue(merged)
		p.column = 0
	} else {
		p.note.Columns = 2
		p.columns[1].SetValue("")
	}
	p.updateTextareaDimensions()
	return tea.Batch(p.markDirty(), p.focusEditor())
}

// handleEditorKey feeds a key to the focused textarea and runs the
// formatting hooks around it.
func (p *Plugin) handleEditorKey(k tea.KeyMsg) tea.Cmd {
	ta := p.activeTextarea()
	if k.Type == tea.KeyEnter {
		if e, ok := formatting.HandleEnter(ta.Value(), textOffset(ta)); ok {
			return p.applyEdit(e, false)
		}
	}

	before := ta.Value()
	var cmd tea.Cmd
	*ta, cmd = ta.Update(k)
	if ta.Value() == before {
		return cmd
	}
	if e, ok := formatting.ProcessAutoFormat(ta.Value(), textOffset(ta)); ok {
		if c := p.applyEdit(e, false); c != nil {
			return tea.Batch(cmd, c)
		}
	}
	return tea.Batch(cmd, p.markDirty())
}

// startAutoSaveTimer starts the debounce timer for autosave.
func (p *Plugin) startAutoSaveTimer() tea.Cmd {
	p.autoSaveID++
	id := p.autoSaveID
	delay := defaultAutosaveDelay
	if p.ctx != nil && p.ctx.Config != nil && p.ctx.Config.Editor.AutosaveDelay > 0 {
		delay = p.ctx.Config.Editor.AutosaveDelay
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return AutoSaveTickMsg{ID: id}
	})
}

// saveNote submits the editor content to the autosave queue.
func (p *Plugin) saveNote() tea.Cmd {
	if p.note == nil || !p.dirty || p.ctx == nil {
		return nil
	}
	upd := p.snapshot()
	editGen := p.editGen
	epoch := p.ctx.Epoch

	if p.ctx.Saver == nil {
		st, noteID := p.ctx.Store, p.note.ID
		return func() tea.Msg {
			n, err := st.UpdateNote(context.Background(), noteID, upd)
			return NoteSavedMsg{Result: resultOf(noteID, n, err), EditGen: editGen, Epoch: epoch}
		}
	}
	gen, done := p.ctx.Saver.Submit(p.note.ID, upd)
	return func() tea.Msg {
		return NoteSavedMsg{Result: <-done, Generation: gen, EditGen: editGen, Epoch: epoch}
	}
}

// snapshot captures the editor buffer as a note update.
func (p *Plugin) snapshot() store.NoteUpdate {
	content := p.content()
	columns := p.note.Columns
	return store.NoteUpdate{Content: &content, Columns: &columns}
}

// flushPending hands unsaved edits to the autosave queue without waiting
// for the debounce timer.
func (p *Plugin) flushPending() {
	if p.note == nil || !p.dirty || p.ctx == nil || p.ctx.Saver == nil {
		return
	}
	p.ctx.Saver.Submit(p.note.ID, p.snapshot())
}

func resultOf(noteID string, n *notebook.Note, err error) autosave.Result {
	return autosave.Result{NoteID: noteID, Note: n, Err: err}
}

// handleSaved applies a save result. The editor stays dirty when it was
// edited after the snapshot was taken.
func (p *Plugin) handleSaved(m NoteSavedMsg) tea.Cmd {
	res := m.Result
	if res.Err != nil {
		p.logger().Error("notes: save failed", "id", res.NoteID, "error", res.Err)
		return msg.ShowError("Save failed", res.Err)
	}
	if res.Note != nil {
		if n := p.findNote(res.NoteID); n != nil {
			*n = *res.Note
		}
		p.refreshTasks()
	}
	if res.Superseded(m.Generation) {
		return nil
	}
	p.logger().Debug("notes: saved", "id", res.NoteID)
	if p.note != nil && p.note.ID == res.NoteID {
		if res.Note != nil {
			p.note.UpdatedAt = res.Note.UpdatedAt
		}
		if m.EditGen == p.editGen {
			p.dirty = false
		}
	}
	return nil
}

// saveNow saves immediately, for ctrl+s.
func (p *Plugin) saveNow() tea.Cmd {
	if p.note == nil {
		return nil
	}
	if !p.dirty {
		return msg.ShowToast("No changes", toastDuration)
	}
	return tea.Batch(p.saveNote(), msg.ShowToast("Saved", toastDuration))
}

// updateTextareaDimensions sizes the textareas for the current layout.
func (p *Plugin) updateTextareaDimensions() {
	w, h := p.editorSize()
	if w < 1 || h < 1 {
		return
	}
	if p.twoColumn() {
		half := (w - dividerWidth) / 2
		p.columns[0].SetWidth(max(1, half))
		p.columns[1].SetWidth(max(1, w-dividerWidth-half))
	} else {
		p.columns[0].SetWidth(w)
	}
	p.columns[0].SetHeight(h)
	p.columns[1].SetHeight(h)
}
