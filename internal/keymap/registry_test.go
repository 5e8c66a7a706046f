package keymap

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

func TestLookup_ContextAndGlobalFallback(t *testing.T) {
	r := newDefaultRegistry()

	tests := []struct {
		key, context, want string
	}{
		{"tab", ContextEditor, "indent"},
		{"tab", ContextSidebar, "focus-editor"},
		{"ctrl+b", ContextEditor, "toggle-bullet"},
		{"ctrl+_", ContextEditor, "toggle-strikethrough"},
		{"ctrl+p", ContextEditor, "toggle-palette"},
		{"ctrl+p", ContextSidebar, "toggle-palette"},
		{"alt+n", "", "new-note"},
		{"ctrl+b", ContextSidebar, ""},
	}
	for _, tt := range tests {
		got, _ := r.Lookup(tt.key, tt.context)
		if got != tt.want {
			t.Errorf("Lookup(%q, %q) = %q, want %q", tt.key, tt.context, got, tt.want)
		}
	}
}

func TestSetUserOverride(t *testing.T) {
	r := newDefaultRegistry()

	r.SetUserOverride("ctrl+t", "toggle-task")
	if got, _ := r.Lookup("ctrl+t", ContextEditor); got != "toggle-task" {
		t.Errorf("override not applied in editor context: %q", got)
	}
	if got, _ := r.Lookup("ctrl+t", ContextSidebar); got != "" {
		t.Errorf("editor override leaked into sidebar: %q", got)
	}
	// the default key still works
	if got, _ := r.Lookup("alt+2", ContextEditor); got != "toggle-task" {
		t.Errorf("default binding lost: %q", got)
	}

	// overriding a key that already has a default replaces it
	r.SetUserOverride("ctrl+b", "toggle-bold")
	if got, _ := r.Lookup("ctrl+b", ContextEditor); got != "toggle-bold" {
		t.Errorf("got %q, want toggle-bold", got)
	}

	// commands without defaults are bound globally
	r.SetUserOverride("f5", "export-backup")
	if got, _ := r.Lookup("f5", ContextSidebar); got != "export-backup" {
		t.Errorf("got %q, want export-backup", got)
	}
}

func TestResolve_Sequence(t *testing.T) {
	r := newDefaultRegistry()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	id, pending := r.Resolve("g", ContextSidebar)
	if id != "" || !pending {
		t.Fatalf("first key: got %q pending=%v", id, pending)
	}
	if !r.HasPending() {
		t.Error("HasPending should be true")
	}
	id, pending = r.Resolve("g", ContextSidebar)
	if id != "cursor-top" || pending {
		t.Errorf("second key: got %q pending=%v", id, pending)
	}

	// A stale first key is dropped and the new key starts over.
	r.Resolve("g", ContextSidebar)
	clock = clock.Add(time.Second)
	id, pending = r.Resolve("j", ContextSidebar)
	if id != "cursor-down" || pending {
		t.Errorf("after timeout: got %q pending=%v", id, pending)
	}

	// "g" is plain text in the editor.
	if id, pending := r.Resolve("g", ContextEditor); id != "" || pending {
		t.Errorf("editor g: got %q pending=%v", id, pending)
	}
}

type ranMsg string

func TestHandle(t *testing.T) {
	r := newDefaultRegistry()
	r.RegisterCommand(Command{ID: "toggle-palette", Name: "Command palette", Handler: func() tea.Cmd {
		return func() tea.Msg { return ranMsg("palette") }
	}})

	cmd := r.Handle(tea.KeyMsg{Type: tea.KeyCtrlP}, ContextEditor)
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg := cmd(); msg != ranMsg("palette") {
		t.Errorf("got %v", msg)
	}

	if cmd := r.Handle(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}, ContextEditor); cmd != nil {
		t.Error("unbound key should return nil")
	}
	// bound but no registered handler
	if cmd := r.Handle(tea.KeyMsg{Type: tea.KeyCtrlB}, ContextEditor); cmd != nil {
		t.Error("command without handler should return nil")
	}
}

func TestBindingsForCommand(t *testing.T) {
	r := newDefaultRegistry()

	got := r.BindingsForCommand("toggle-strikethrough")
	if len(got) != 2 || got[0].Key != "alt+x" || got[1].Key != "ctrl+_" {
		t.Errorf("got %+v", got)
	}

	got = r.BindingsForCommand("new-note")
	if len(got) != 2 || got[0].Context != "global" || got[1].Context != ContextSidebar {
		t.Errorf("got %+v", got)
	}

	if got := r.KeysFor("toggle-strikethrough", ContextEditor); got != "alt+x/ctrl+_" {
		t.Errorf("KeysFor = %q", got)
	}
	if got := r.KeysFor("toggle-palette", ContextEditor); got != "ctrl+p" {
		t.Errorf("KeysFor should fall back to global, got %q", got)
	}
}

func TestDefaultBindings_NoDuplicateKeysPerContext(t *testing.T) {
	seen := make(map[string]string)
	for _, b := range DefaultBindings() {
		k := b.Context + "|" + b.Key
		if prev, ok := seen[k]; ok {
			t.Errorf("key %q bound twice in %s: %s and %s", b.Key, b.Context, prev, b.Command)
		}
		seen[k] = b.Command
	}
}
