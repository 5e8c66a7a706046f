package notes

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/autosave"
	"github.com/marcus/twonote/internal/config"
	"github.com/marcus/twonote/internal/formatting"
	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/plugin"
	"github.com/marcus/twonote/internal/store"
)

// run executes cmd and the commands batched inside it, returning the
// messages produced within a short timeout. Timer commands such as cursor
// blinks and autosave ticks are dropped.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var m tea.Msg
	select {
	case m = <-ch:
	case <-time.After(200 * time.Millisecond):
		return nil
	}
	if batch, ok := m.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if m == nil {
		return nil
	}
	return []tea.Msg{m}
}

// feed runs cmd and delivers the plugin's own result messages back to it
// until nothing is left. Every message seen is returned.
func feed(p *Plugin, cmd tea.Cmd) []tea.Msg {
	var seen []tea.Msg
	for _, m := range run(cmd) {
		seen = append(seen, m)
		switch m.(type) {
		case DataLoadedMsg, NoteSavedMsg, NoteCreatedMsg, NotebookCreatedMsg, MutationDoneMsg:
			_, next := p.Update(m)
			seen = append(seen, feed(p, next)...)
		}
	}
	return seen
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

type fixture struct {
	p     *Plugin
	st    *store.SQLiteStore
	nb    *notebook.Notebook
	notes []*notebook.Note
}

// newFixture creates a store with one notebook holding a note per content
// and a loaded plugin on top of it.
func newFixture(t *testing.T, contents ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.NewSQLiteStore(store.DriverPureGo, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	nb, err := st.CreateNotebook(ctx, "Work")
	if err != nil {
		t.Fatalf("CreateNotebook: %v", err)
	}
	f := &fixture{st: st, nb: nb}
	for _, c := range contents {
		n, err := st.CreateNote(ctx, nb.ID, notebook.UntitledTitle)
		if err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
		content := c
		title := notebook.DeriveTitle(c)
		n, err = st.UpdateNote(ctx, n.ID, store.NoteUpdate{Content: &content, Title: &title})
		if err != nil {
			t.Fatalf("UpdateNote: %v", err)
		}
		f.notes = append(f.notes, n)
	}

	cfg := config.Default()
	cfg.Editor.AutosaveDelay = time.Hour
	pctx := &plugin.Context{
		Store:  st,
		Saver:  autosave.New(st.UpdateNote, nil),
		Config: cfg,
		Keymap: keymap.NewRegistry(),
	}
	f.p = New()
	if err := f.p.Init(pctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	feed(f.p, f.p.Start())
	f.p.View(120, 40)
	if !f.p.loaded {
		t.Fatal("data not loaded")
	}
	return f
}

// open opens the i-th fixture note in the editor.
func (f *fixture) open(t *testing.T, i int) {
	t.Helper()
	feed(f.p, f.p.OpenNoteByID(f.notes[i].ID))
	if f.p.note == nil || f.p.note.ID != f.notes[i].ID {
		t.Fatalf("note %d not open", i)
	}
}

func (f *fixture) stored(t *testing.T, i int) string {
	t.Helper()
	n, err := f.st.Note(context.Background(), f.notes[i].ID)
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	return n.Content
}

func TestPlugin_LoadBuildsSidebar(t *testing.T) {
	f := newFixture(t, "first", "second")
	if len(f.p.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(f.p.rows))
	}
	if f.p.rows[0].note != nil || f.p.rows[1].note == nil {
		t.Error("expected notebook header followed by notes")
	}
	if got := f.p.FocusContext(); got != keymap.ContextSidebar {
		t.Errorf("FocusContext = %q, want %q", got, keymap.ContextSidebar)
	}

	f.p.RunCommand("open", keymap.ContextSidebar)
	if len(f.p.rows) != 1 {
		t.Errorf("collapsed rows = %d, want 1", len(f.p.rows))
	}
	f.p.RunCommand("open", keymap.ContextSidebar)
	f.p.RunCommand("cursor-down", keymap.ContextSidebar)
	f.p.RunCommand("open", keymap.ContextSidebar)
	if f.p.note == nil || f.p.note.ID != f.notes[0].ID {
		t.Fatal("open should open the selected note")
	}
	if got := f.p.FocusContext(); got != keymap.ContextEditor {
		t.Errorf("FocusContext = %q, want %q", got, keymap.ContextEditor)
	}
	if !f.p.ConsumesTextInput() {
		t.Error("editor should consume text input")
	}
}

func TestPlugin_FormatAndSave(t *testing.T) {
	f := newFixture(t, "alpha\nbeta")
	f.open(t, 0)

	f.p.RunCommand("toggle-bullet", keymap.ContextEditor)
	if got := f.p.content(); got != "• alpha\nbeta" {
		t.Fatalf("content = %q", got)
	}
	if !f.p.Dirty() {
		t.Fatal("edit should mark the note dirty")
	}

	feed(f.p, f.p.saveNote())
	if f.p.Dirty() {
		t.Error("save should clear dirty")
	}
	if got := f.stored(t, 0); got != "• alpha\nbeta" {
		t.Errorf("stored = %q", got)
	}
}

func TestPlugin_MarkSelection(t *testing.T) {
	f := newFixture(t, "alpha\nbeta")
	f.open(t, 0)

	setTextOffset(f.p.activeTextarea(), formatting.Len("alpha\nbe"))
	f.p.RunCommand("toggle-task", keymap.ContextEditor)
	if got := f.p.content(); got != "alpha\n[ ] beta" {
		t.Fatalf("toggle-task uses the cursor line, got %q", got)
	}

	f.p.RunCommand("set-mark", keymap.ContextEditor)
	setTextOffset(f.p.activeTextarea(), 0)
	f.p.RunCommand("toggle-bullet", keymap.ContextEditor)
	if got := f.p.content(); got != "• alpha\n• [ ] beta" {
		t.Errorf("toggle-bullet over mark = %q", got)
	}
	if f.p.mark < 0 {
		t.Error("ranged transform should keep the selection")
	}

	f.p.RunCommand("set-mark", keymap.ContextEditor)
	if f.p.mark >= 0 {
		t.Error("set-mark should clear an existing mark")
	}
}

func TestPlugin_EnterContinuesList(t *testing.T) {
	f := newFixture(t, "• milk")
	f.open(t, 0)
	ta := f.p.activeTextarea()
	setTextOffset(ta, formatting.Len("• milk"))

	f.p.handleEditorKey(tea.KeyMsg{Type: tea.KeyEnter})
	if got := f.p.content(); got != "• milk\n• " {
		t.Fatalf("after enter = %q", got)
	}
	f.p.handleEditorKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("eggs")})
	if got := f.p.content(); got != "• milk\n• eggs" {
		t.Errorf("after typing = %q", got)
	}
}

func TestPlugin_DashAutoFormat(t *testing.T) {
	f := newFixture(t, "")
	f.open(t, 0)

	f.p.handleEditorKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	f.p.handleEditorKey(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if got := f.p.content(); got != "• " {
		t.Fatalf("content = %q, want bullet", got)
	}
	if off := textOffset(f.p.activeTextarea()); off != 2 {
		t.Errorf("cursor = %d, want 2", off)
	}
	if !f.p.Dirty() {
		t.Error("autoformat should mark the note dirty")
	}
}

func TestPlugin_ToggleColumns(t *testing.T) {
	f := newFixture(t, "left")
	f.open(t, 0)

	f.p.RunCommand("toggle-columns", keymap.ContextEditor)
	if !f.p.twoColumn() {
		t.Fatal("expected two columns")
	}
	f.p.RunCommand("focus-right-column", keymap.ContextEditor)
	f.p.columns[1].SetValue("right")
	if got := f.p.content(); got != notebook.JoinColumns("left", "right") {
		t.Errorf("content = %q", got)
	}

	f.p.RunCommand("toggle-columns", keymap.ContextEditor)
	if f.p.twoColumn() {
		t.Fatal("expected one column")
	}
	if got := f.p.content(); got != "left\nright" {
		t.Errorf("merged = %q", got)
	}
	if f.p.column != 0 {
		t.Errorf("column = %d, want 0", f.p.column)
	}
}

func TestPlugin_CreateNotebookAndNote(t *testing.T) {
	f := newFixture(t)

	pm, ok := findMsg[msg.PromptMsg](run(f.p.RunCommand("new-notebook", keymap.ContextSidebar)))
	if !ok {
		t.Fatal("expected a prompt")
	}
	feed(f.p, pm.OnSubmit("  Home "))
	if len(f.p.notebooks) != 2 {
		t.Fatalf("notebooks = %d, want 2", len(f.p.notebooks))
	}

	f.p.selectNotebook(f.nb.ID)
	feed(f.p, f.p.RunCommand("new-note", keymap.ContextSidebar))
	if f.p.note == nil {
		t.Fatal("new note should open")
	}
	if f.p.note.NotebookID != f.nb.ID {
		t.Errorf("note created in %q, want %q", f.p.note.NotebookID, f.nb.ID)
	}
	if f.p.note.Title != notebook.UntitledTitle {
		t.Errorf("title = %q", f.p.note.Title)
	}
}

func TestPlugin_DeleteNote(t *testing.T) {
	f := newFixture(t, "doomed", "kept")
	f.open(t, 0)

	cm, ok := findMsg[msg.ConfirmMsg](run(f.p.RunCommand("delete-note", keymap.ContextEditor)))
	if !ok {
		t.Fatal("expected a confirmation")
	}
	if !cm.Danger {
		t.Error("delete should be a danger confirmation")
	}
	feed(f.p, cm.OnConfirm())
	if f.p.note != nil {
		t.Error("deleted note should be closed")
	}
	if len(f.p.notes) != 1 || f.p.notes[0].ID != f.notes[1].ID {
		t.Errorf("notes after delete = %+v", f.p.notes)
	}
}

func TestPlugin_CompleteTaskInOtherNote(t *testing.T) {
	f := newFixture(t, "open one", "todo\n[ ] call bob\n[ ] write")
	f.open(t, 0)

	f.p.RunCommand("show-tasks", keymap.ContextEditor)
	if got := f.p.FocusContext(); got != keymap.ContextTasks {
		t.Fatalf("FocusContext = %q, want tasks", got)
	}
	if len(f.p.tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(f.p.tasks))
	}

	feed(f.p, f.p.RunCommand("complete-task", keymap.ContextTasks))
	if got := f.stored(t, 1); got != "todo\n[x] call bob\n[ ] write" {
		t.Errorf("stored = %q", got)
	}
	if len(f.p.tasks) != 1 || f.p.tasks[0].Text != "write" {
		t.Errorf("remaining tasks = %+v", f.p.tasks)
	}

	feed(f.p, f.p.RunCommand("open", keymap.ContextTasks))
	if f.p.note == nil || f.p.note.ID != f.notes[1].ID {
		t.Fatal("open should jump to the task's note")
	}
	line, _ := formatting.Position(f.p.content(), textOffset(f.p.activeTextarea()))
	if line != 2 {
		t.Errorf("cursor line = %d, want 2", line)
	}
}

func TestPlugin_StepNote(t *testing.T) {
	f := newFixture(t, "one", "two")
	f.open(t, 0)

	f.p.RunCommand("next-note", keymap.ContextEditor)
	if f.p.note.ID != f.notes[1].ID {
		t.Fatal("next-note should open the second note")
	}
	f.p.RunCommand("next-note", keymap.ContextEditor)
	if f.p.note.ID != f.notes[1].ID {
		t.Error("next-note past the end should stay put")
	}
	f.p.RunCommand("prev-note", keymap.ContextEditor)
	if f.p.note.ID != f.notes[0].ID {
		t.Error("prev-note should open the first note")
	}
}

func TestPlugin_MoveNoteDown(t *testing.T) {
	f := newFixture(t, "one", "two")
	f.p.selectNote(f.notes[0].ID)

	feed(f.p, f.p.RunCommand("move-down", keymap.ContextSidebar))
	notes, err := f.st.Notes(context.Background(), f.nb.ID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	notebook.SortNotes(notes)
	if notes[0].ID != f.notes[1].ID {
		t.Errorf("first note = %s, want %s", notes[0].ID, f.notes[1].ID)
	}
	if row, _ := f.p.selectedRow(); row.note == nil || row.note.ID != f.notes[0].ID {
		t.Error("selection should follow the moved note")
	}
}

func TestPlugin_PreviewContext(t *testing.T) {
	f := newFixture(t, "• item")
	f.open(t, 0)

	f.p.RunCommand("toggle-preview", keymap.ContextEditor)
	if f.p.FocusContext() != keymap.ContextEditor {
		t.Error("split preview keeps the editor focused")
	}
	f.p.RunCommand("toggle-preview", keymap.ContextEditor)
	if got := f.p.FocusContext(); got != keymap.ContextPreview {
		t.Fatalf("FocusContext = %q, want preview", got)
	}
	if view := f.p.View(120, 40); !strings.Contains(view, "item") {
		t.Error("preview should render the note")
	}
	f.p.RunCommand("focus-editor", keymap.ContextPreview)
	if got := f.p.FocusContext(); got != keymap.ContextEditor {
		t.Errorf("FocusContext = %q, want editor", got)
	}
}

func TestPlugin_StaleMessagesDropped(t *testing.T) {
	f := newFixture(t, "one")
	before := len(f.p.notes)
	f.p.Update(DataLoadedMsg{Epoch: f.p.ctx.Epoch + 1})
	if len(f.p.notes) != before {
		t.Error("stale load should be ignored")
	}
}

func TestPlugin_CommandsCoverBindings(t *testing.T) {
	p := New()
	known := make(map[string]bool)
	for _, c := range p.Commands() {
		ctx := c.Context
		if ctx == "" {
			ctx = keymap.GlobalContext
		}
		known[ctx+"/"+c.ID] = true
	}
	app := map[string]bool{"toggle-palette": true, "toggle-help": true, "toggle-footer": true, "quit": true, "cycle-theme": true}
	for _, b := range keymap.DefaultBindings() {
		if app[b.Command] {
			continue
		}
		if !known[b.Context+"/"+b.Command] {
			t.Errorf("binding %q -> %s in %s has no command", b.Key, b.Command, b.Context)
		}
	}
}

func TestStoredLineColumn(t *testing.T) {
	two := notebook.Note{Columns: 2, Content: notebook.JoinColumns("a\nb", "c\nd")}
	tests := []struct {
		name     string
		note     notebook.Note
		line     int
		col, row int
		ok       bool
	}{
		{"single column", notebook.Note{Content: "a\nb"}, 1, 0, 1, true},
		{"left column", two, 1, 0, 1, true},
		{"separator", two, 2, 0, 0, false},
		{"right first", two, 3, 1, 0, true},
		{"right second", two, 4, 1, 1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			col, row, ok := storedLineColumn(tc.note, tc.line)
			if ok != tc.ok || (ok && (col != tc.col || row != tc.row)) {
				t.Errorf("storedLineColumn(%d) = %d, %d, %v; want %d, %d, %v", tc.line, col, row, ok, tc.col, tc.row, tc.ok)
			}
		})
	}
}

func TestSwapID(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		id    string
		delta int
		want  []string
		ok    bool
	}{
		{"down", []string{"a", "b", "c"}, "a", 1, []string{"b", "a", "c"}, true},
		{"up", []string{"a", "b", "c"}, "c", -1, []string{"a", "c", "b"}, true},
		{"top edge", []string{"a", "b"}, "a", -1, nil, false},
		{"bottom edge", []string{"a", "b"}, "b", 1, nil, false},
		{"missing", []string{"a"}, "z", 1, nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := swapID(tc.ids, tc.id, tc.delta)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
