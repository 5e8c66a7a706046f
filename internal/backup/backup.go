// Package backup exports every notebook and note to a single JSON document
// and restores such a document into any storage backend.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/store"
)

// Version is the only document version Read accepts.
const Version = 1

// Document is the on-disk backup format.
type Document struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Notebooks  []notebook.Notebook `json:"notebooks"`
	Notes      []notebook.Note     `json:"notes"`
}

// Result summarizes a restore.
type Result struct {
	NotebooksCreated int
	NotebooksReused  int
	NotesRestored    int
	// NotesSkipped counts notes whose notebook was not part of the backup.
	NotesSkipped int
}

var (
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrInvalidDocument    = errors.New("invalid backup file")
)

// FileName returns the default backup file name for t.
func FileName(t time.Time) string {
	return "twonote-backup-" + t.Format("2006-01-02") + ".json"
}

// Export reads every notebook and note from s.
func Export(ctx context.Context, s store.Storage, now time.Time) (Document, error) {
	nbs, err := s.Notebooks(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export notebooks: %w", err)
	}
	notes, err := s.Notes(ctx, "")
	if err != nil {
		return Document{}, fmt.Errorf("export notes: %w", err)
	}
	if nbs == nil {
		nbs = []notebook.Notebook{}
	}
	if notes == nil {
		notes = []notebook.Note{}
	}
	return Document{
		Version:    Version,
		ExportedAt: now.UTC(),
		Notebooks:  nbs,
		Notes:      notes,
	}, nil
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Read decodes and validates a backup document.
func Read(r io.Reader) (Document, error) {
	// Decode into raw fields first so a missing list can be told apart from
	// an empty one.
	var raw struct {
		Version    int              `json:"version"`
		ExportedAt time.Time        `json:"exportedAt"`
		Notebooks  *json.RawMessage `json:"notebooks"`
		Notes      *json.RawMessage `json:"notes"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if raw.Version != Version {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}
	if raw.Notebooks == nil || raw.Notes == nil {
		return Document{}, fmt.Errorf("%w: missing notebooks or notes", ErrInvalidDocument)
	}

	doc := Document{Version: raw.Version, ExportedAt: raw.ExportedAt}
	if err := json.Unmarshal(*raw.Notebooks, &doc.Notebooks); err != nil {
		return Document{}, fmt.Errorf("%w: notebooks: %w", ErrInvalidDocument, err)
	}
	if err := json.Unmarshal(*raw.Notes, &doc.Notes); err != nil {
		return Document{}, fmt.Errorf("%w: notes: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

// Restore writes doc into s. A notebook whose name already exists in s is
// reused instead of duplicated. Notes are created in their mapped notebook
// and then updated with content, columns and attachments.
func Restore(ctx context.Context, s store.Storage, doc Document) (Result, error) {
	var res Result

	existing, err := s.Notebooks(ctx)
	if err != nil {
		return res, fmt.Errorf("restore: list notebooks: %w", err)
	}
	byName := make(map[string]string, len(existing))
	for _, nb := range existing {
		if _, ok := byName[nb.Name]; !ok {
			byName[nb.Name] = nb.ID
		}
	}

	idMap := make(map[string]string, len(doc.Notebooks))
	backupNotebooks := append([]notebook.Notebook(nil), doc.Notebooks...)
	notebook.SortNotebooks(backupNotebooks)
	for _, nb := range backupNotebooks {
		if id, ok := byName[nb.Name]; ok {
			idMap[nb.ID] = id
			res.NotebooksReused++
			continue
		}
		created, err := s.CreateNotebook(ctx, nb.Name)
		if err != nil {
			return res, fmt.Errorf("restore notebook %q: %w", nb.Name, err)
		}
		idMap[nb.ID] = created.ID
		byName[nb.Name] = created.ID
		res.NotebooksCreated++
	}

	backupNotes := append([]notebook.Note(nil), doc.Notes...)
	notebook.SortNotes(backupNotes)
	for _, n := range backupNotes {
		target, ok := idMap[n.NotebookID]
		if !ok {
			res.NotesSkipped++
			continue
		}
		title := n.Title
		if title == "" {
			title = notebook.UntitledTitle
		}
		created, err := s.CreateNote(ctx, target, title)
		if err != nil {
			return res, fmt.Errorf("restore note %s: %w", n.ID, err)
		}

		content := n.Content
		columns := notebook.NormalizeColumns(n.Columns)
		atts := make([]notebook.Attachment, len(n.Attachments))
		for i, a := range n.Attachments {
			// fresh ids, the originals may still exist in s
			a.ID = ""
			atts[i] = a
		}
		upd := store.NoteUpdate{Content: &content, Columns: &columns, Attachments: &atts}
		if _, err := s.UpdateNote(ctx, created.ID, upd); err != nil {
			return res, fmt.Errorf("restore note %s: %w", n.ID, err)
		}
		res.NotesRestored++
	}
	return res, nil
}
