package palette

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/plugin"
)

func testCommands() []plugin.Command {
	return []plugin.Command{
		{ID: "toggle-bullet", Name: "Bullet", Description: "Toggle bullet list", Category: plugin.CategoryFormat, Context: keymap.ContextEditor},
		{ID: "toggle-task", Name: "Task", Description: "Cycle task marker", Category: plugin.CategoryFormat, Context: keymap.ContextEditor},
		{ID: "new-note", Name: "New note", Description: "Create a note", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar},
		{ID: "new-note", Name: "New note", Description: "Create a note", Category: plugin.CategoryNotes, Context: "global"},
		{ID: "rename", Name: "Rename", Description: "Rename selection", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar},
		{ID: "quit", Name: "Quit", Description: "Save and exit", Category: plugin.CategorySystem},
	}
}

func testRegistry() *keymap.Registry {
	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	return km
}

func TestBuildEntries_ContextOnly(t *testing.T) {
	entries := BuildEntries(testRegistry(), testCommands(), keymap.ContextEditor, false)

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.CommandID)
	}
	got := strings.Join(ids, ",")
	if got != "toggle-bullet,toggle-task,new-note,quit" {
		t.Errorf("entries = %s", got)
	}

	if entries[0].Layer != LayerCurrentMode || entries[0].Key != "ctrl+b" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[2].Layer != LayerGlobal || entries[2].ContextCount != 2 || entries[2].Key != "alt+n" {
		t.Errorf("new-note entry = %+v", entries[2])
	}
}

func TestBuildEntries_AllContexts(t *testing.T) {
	entries := BuildEntries(testRegistry(), testCommands(), keymap.ContextSidebar, true)

	byID := make(map[string]PaletteEntry)
	for _, e := range entries {
		if _, dup := byID[e.CommandID]; dup {
			t.Errorf("duplicate entry %s", e.CommandID)
		}
		byID[e.CommandID] = e
	}
	if len(byID) != 5 {
		t.Errorf("got %d entries, want 5", len(byID))
	}
	if e := byID["new-note"]; e.Layer != LayerCurrentMode || e.Key != "n" {
		t.Errorf("new-note should resolve in the sidebar layer: %+v", e)
	}
	if e := byID["toggle-task"]; e.Layer != LayerPlugin {
		t.Errorf("editor commands belong to the plugin layer here: %+v", e)
	}
}

func TestFilterEntries(t *testing.T) {
	entries := BuildEntries(testRegistry(), testCommands(), keymap.ContextEditor, false)

	if got := FilterEntries(entries, ""); len(got) != len(entries) {
		t.Errorf("empty query should keep all entries, got %d", len(got))
	}

	got := FilterEntries(entries, "tsk")
	if len(got) != 1 || got[0].CommandID != "toggle-task" {
		t.Fatalf("got %+v", got)
	}
	want := []MatchRange{{0, 1}, {2, 4}}
	if len(got[0].MatchRanges) != 2 || got[0].MatchRanges[0] != want[0] || got[0].MatchRanges[1] != want[1] {
		t.Errorf("MatchRanges = %v, want %v", got[0].MatchRanges, want)
	}

	if got := FilterEntries(entries, "zzz"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestToRanges_MultiByte(t *testing.T) {
	// "⭐ a" - the star is 3 bytes
	got := toRanges("⭐ a", []int{0, 3})
	if len(got) != 1 || got[0] != (MatchRange{0, 4}) {
		t.Errorf("got %v", got)
	}
}

func TestNoteEntries(t *testing.T) {
	notes := []notebook.Note{
		{ID: "nt-1", NotebookID: "nb-1", Title: "Groceries"},
		{ID: "nt-2", NotebookID: "nb-2", Content: "• first line"},
	}
	nbs := []notebook.Notebook{{ID: "nb-1", Name: "Home"}, {ID: "nb-2", Name: "Work"}}

	entries := NoteEntries(notes, nbs)
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Name != "Groceries" || entries[0].Description != "Home" || entries[0].Layer != LayerNotes {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].NoteID != "nt-2" || entries[1].Description != "Work" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_TypeAndSelect(t *testing.T) {
	km := testRegistry()
	m := New()
	m.SetSize(120, 40)
	m.Open(keymap.ContextEditor,
		BuildEntries(km, testCommands(), keymap.ContextEditor, false),
		BuildEntries(km, testCommands(), keymap.ContextEditor, true))

	for _, r := range "qui" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	if m.Query() != "qui" {
		t.Fatalf("Query() = %q", m.Query())
	}
	if len(m.Filtered()) != 1 {
		t.Fatalf("Filtered() = %+v", m.Filtered())
	}

	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter should produce a command")
	}
	sel, ok := cmd().(CommandSelectedMsg)
	if !ok || sel.CommandID != "quit" {
		t.Errorf("got %#v", cmd())
	}
}

func TestModel_ToggleAllContexts(t *testing.T) {
	km := testRegistry()
	m := New()
	m.SetSize(120, 40)
	m.Open(keymap.ContextEditor,
		BuildEntries(km, testCommands(), keymap.ContextEditor, false),
		BuildEntries(km, testCommands(), keymap.ContextEditor, true))

	before := len(m.Filtered())
	m, _ = m.Update(keyMsg("tab"))
	if after := len(m.Filtered()); after <= before {
		t.Errorf("tab should show more entries: %d -> %d", before, after)
	}
	if !strings.Contains(m.View(), "All Contexts") {
		t.Error("view should show the all-contexts badge")
	}
}

func TestModel_QuickOpen(t *testing.T) {
	m := New()
	m.SetSize(100, 30)
	notes := []notebook.Note{{ID: "nt-1", Title: "Alpha"}, {ID: "nt-2", Title: "Beta"}}
	m.OpenQuick(NoteEntries(notes, nil))

	if !m.QuickOpen() {
		t.Fatal("QuickOpen() should be true")
	}
	m, _ = m.Update(keyMsg("down"))
	_, cmd := m.Update(keyMsg("enter"))
	if sel, ok := cmd().(NoteSelectedMsg); !ok || sel.NoteID != "nt-2" {
		t.Errorf("got %#v", cmd())
	}

	// tab does nothing in quick open
	m, _ = m.Update(keyMsg("tab"))
	if len(m.Filtered()) != 2 {
		t.Errorf("Filtered() = %d entries", len(m.Filtered()))
	}

	_, cmd = m.Update(keyMsg("esc"))
	if _, ok := cmd().(ClosedMsg); !ok {
		t.Error("esc should close the palette")
	}
}

func TestModel_ViewEmpty(t *testing.T) {
	m := New()
	m.SetSize(80, 24)
	m.OpenQuick(nil)
	if !strings.Contains(m.View(), "No matching notes") {
		t.Error("empty quick open should say so")
	}
}
