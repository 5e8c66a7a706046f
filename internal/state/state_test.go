package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// withTempState points the package at a fresh state file for one test.
func withTempState(t *testing.T) string {
	t.Helper()
	originalPath := path
	originalCurrent := current
	t.Cleanup(func() {
		path = originalPath
		current = originalCurrent
	})

	dir := filepath.Join(t.TempDir(), ".config", "twonote")
	if err := InitWithDir(dir); err != nil {
		t.Fatalf("InitWithDir() failed: %v", err)
	}
	return filepath.Join(dir, "state.json")
}

func TestInit(t *testing.T) {
	withTempState(t)

	if current == nil {
		t.Fatal("current state should be initialized")
	}
	if current.PreviewMode != PreviewOff {
		t.Errorf("default PreviewMode = %q, want off", current.PreviewMode)
	}
	if nb, note := GetLastOpened(); nb != "" || note != "" {
		t.Errorf("GetLastOpened() = %q, %q, want empty", nb, note)
	}
}

func TestLoad_ExistingFile(t *testing.T) {
	stateFile := withTempState(t)

	testState := State{LastNotebookID: "nb-1", LastNoteID: "nt-1", SidebarWidth: 30, PreviewMode: PreviewSplit}
	data, _ := json.Marshal(testState)
	if err := os.MkdirAll(filepath.Dir(stateFile), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stateFile, data, 0644); err != nil {
		t.Fatalf("failed to write test state file: %v", err)
	}

	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if nb, note := GetLastOpened(); nb != "nb-1" || note != "nt-1" {
		t.Errorf("GetLastOpened() = %q, %q", nb, note)
	}
	if got := GetSidebarWidth(); got != 30 {
		t.Errorf("GetSidebarWidth() = %d, want 30", got)
	}
	if got := GetPreviewMode(); got != PreviewSplit {
		t.Errorf("GetPreviewMode() = %q, want split", got)
	}
}

func TestLoad_InvalidPreviewMode(t *testing.T) {
	stateFile := withTempState(t)
	os.MkdirAll(filepath.Dir(stateFile), 0755)
	if err := os.WriteFile(stateFile, []byte(`{"previewMode":"sideways"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := GetPreviewMode(); got != PreviewOff {
		t.Errorf("GetPreviewMode() = %q, want off", got)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	stateFile := withTempState(t)
	os.MkdirAll(filepath.Dir(stateFile), 0755)
	if err := os.WriteFile(stateFile, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err == nil {
		t.Error("Load() should fail on invalid JSON")
	}
}

func TestSetters_Persist(t *testing.T) {
	stateFile := withTempState(t)

	if err := SetLastOpened("nb-2", "nt-9"); err != nil {
		t.Fatalf("SetLastOpened() failed: %v", err)
	}
	if err := SetSidebarWidth(42); err != nil {
		t.Fatalf("SetSidebarWidth() failed: %v", err)
	}
	if err := SetPreviewMode("bogus"); err != nil {
		t.Fatalf("SetPreviewMode() failed: %v", err)
	}

	data, err := os.ReadFile(stateFile)
	if err != nil {
		t.Fatalf("state file not written: %v", err)
	}
	var saved State
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.LastNotebookID != "nb-2" || saved.LastNoteID != "nt-9" || saved.SidebarWidth != 42 {
		t.Errorf("saved = %+v", saved)
	}
	if saved.PreviewMode != PreviewOff {
		t.Errorf("unknown preview mode should be stored as off, got %q", saved.PreviewMode)
	}
}

func TestNextPreviewMode(t *testing.T) {
	tests := []struct{ in, want string }{
		{PreviewOff, PreviewSplit},
		{PreviewSplit, PreviewOnly},
		{PreviewOnly, PreviewOff},
		{"", PreviewOff},
	}
	for _, tt := range tests {
		if got := NextPreviewMode(tt.in); got != tt.want {
			t.Errorf("NextPreviewMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCursors(t *testing.T) {
	withTempState(t)

	if _, ok := GetCursor("nt-1"); ok {
		t.Error("no cursor should be remembered yet")
	}
	SetCursor("nt-1", 5)
	SetCursor("nt-1", 7)
	if off, ok := GetCursor("nt-1"); !ok || off != 7 {
		t.Errorf("GetCursor() = %d, %v, want 7", off, ok)
	}
	if len(current.CursorOrder) != 1 {
		t.Errorf("re-setting a cursor should not duplicate it: %v", current.CursorOrder)
	}

	SetLastOpened("nb-1", "nt-1")
	if err := ForgetNote("nt-1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := GetCursor("nt-1"); ok {
		t.Error("ForgetNote should drop the cursor")
	}
	if _, note := GetLastOpened(); note != "" {
		t.Errorf("ForgetNote should clear the last note, got %q", note)
	}
}

func TestCursors_Eviction(t *testing.T) {
	withTempState(t)

	for i := 0; i < maxRememberedCursors+5; i++ {
		SetCursor(fmt.Sprintf("nt-%d", i), i)
	}
	if len(current.Cursors) != maxRememberedCursors {
		t.Errorf("got %d cursors, want %d", len(current.Cursors), maxRememberedCursors)
	}
	if _, ok := GetCursor("nt-0"); ok {
		t.Error("oldest cursor should be evicted")
	}
	if _, ok := GetCursor(fmt.Sprintf("nt-%d", maxRememberedCursors+4)); !ok {
		t.Error("newest cursor should be kept")
	}
}

func TestConcurrentAccess(t *testing.T) {
	withTempState(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			SetSidebarWidth(20 + i)
		}(i)
		go func() {
			defer wg.Done()
			GetSidebarWidth()
			GetPreviewMode()
		}()
	}
	wg.Wait()

	if w := GetSidebarWidth(); w < 20 || w > 29 {
		t.Errorf("GetSidebarWidth() = %d, want 20..29", w)
	}
}
