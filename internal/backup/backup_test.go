package backup

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(store.DriverPureGo, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s store.Storage) {
	t.Helper()
	ctx := context.Background()
	work, err := s.CreateNotebook(ctx, "Work")
	if err != nil {
		t.Fatal(err)
	}
	home, err := s.CreateNotebook(ctx, "Home")
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.CreateNote(ctx, work.ID, "Plan")
	if err != nil {
		t.Fatal(err)
	}
	content := "• ship it\n[ ] write tests"
	cols := 2
	if _, err := s.UpdateNote(ctx, n.ID, store.NoteUpdate{Content: &content, Columns: &cols}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAttachment(ctx, n.ID, store.AttachmentFromBytes("a.txt", []byte("hello"))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateNote(ctx, home.ID, "Groceries"); err != nil {
		t.Fatal(err)
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC))
	if got != "twonote-backup-2024-03-07.json" {
		t.Errorf("got %q", got)
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)
	seed(t, src)

	now := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	doc, err := Export(ctx, src, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if doc.Version != 1 || !doc.ExportedAt.Equal(now) || len(doc.Notebooks) != 2 || len(doc.Notes) != 2 {
		t.Fatalf("unexpected export: %+v", doc)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	read, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	dst := newStore(t)
	res, err := Restore(ctx, dst, read)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.NotebooksCreated != 2 || res.NotesRestored != 2 || res.NotesSkipped != 0 {
		t.Errorf("result = %+v", res)
	}

	nbs, _ := dst.Notebooks(ctx)
	if len(nbs) != 2 || nbs[0].Name != "Work" || nbs[1].Name != "Home" {
		t.Errorf("notebooks = %+v", nbs)
	}
	notes, _ := dst.Notes(ctx, nbs[0].ID)
	if len(notes) != 1 {
		t.Fatalf("notes = %+v", notes)
	}
	got := notes[0]
	if got.Title != "Plan" || got.Content != "• ship it\n[ ] write tests" || got.Columns != 2 {
		t.Errorf("restored note = %+v", got)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "a.txt" {
		t.Errorf("attachments = %+v", got.Attachments)
	}
}

func TestRestore_ReusesNotebooksByName(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seed(t, s)

	doc, err := Export(ctx, s, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	// restoring into the same store must not collide on attachment ids
	res, err := Restore(ctx, s, doc)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.NotebooksReused != 2 || res.NotebooksCreated != 0 {
		t.Errorf("result = %+v", res)
	}

	nbs, _ := s.Notebooks(ctx)
	if len(nbs) != 2 {
		t.Errorf("notebooks should not be duplicated: %+v", nbs)
	}
	all, _ := s.Notes(ctx, "")
	if len(all) != 4 {
		t.Errorf("expected 4 notes after restore, got %d", len(all))
	}
}

func TestRestore_SkipsOrphanNotes(t *testing.T) {
	ctx := context.Background()
	doc := Document{
		Version:   1,
		Notebooks: []notebook.Notebook{{ID: "nb-old", Name: "Kept", Order: 1}},
		Notes: []notebook.Note{
			{ID: "nt-1", NotebookID: "nb-old", Content: "x"},
			{ID: "nt-2", NotebookID: "nb-gone", Title: "Lost"},
		},
	}
	s := newStore(t)
	res, err := Restore(ctx, s, doc)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.NotesRestored != 1 || res.NotesSkipped != 1 {
		t.Errorf("result = %+v", res)
	}
	notes, _ := s.Notes(ctx, "")
	if len(notes) != 1 || notes[0].Title != notebook.UntitledTitle {
		t.Errorf("notes = %+v", notes)
	}
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"not json", "nope", ErrInvalidDocument},
		{"wrong version", `{"version":2,"notebooks":[],"notes":[]}`, ErrUnsupportedVersion},
		{"missing notes", `{"version":1,"notebooks":[]}`, ErrInvalidDocument},
		{"missing notebooks", `{"version":1,"notes":[]}`, ErrInvalidDocument},
		{"bad notes", `{"version":1,"notebooks":[],"notes":{}}`, ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	doc, err := Read(strings.NewReader(`{"version":1,"notebooks":[],"notes":[]}`))
	if err != nil || len(doc.Notes) != 0 {
		t.Errorf("empty backup should be valid: %v", err)
	}
}
