// Package store persists notebooks, notes and attachments. Storage is the
// contract the editor talks to; SQLiteStore and RESTStore implement it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcus/twonote/internal/notebook"
)

// ErrNotFound is returned (wrapped) when a notebook, note or attachment does
// not exist.
var ErrNotFound = errors.New("not found")

// Storage is the persistence interface used by the application.
type Storage interface {
	Notebooks(ctx context.Context) ([]notebook.Notebook, error)
	CreateNotebook(ctx context.Context, name string) (*notebook.Notebook, error)
	UpdateNotebook(ctx context.Context, id string, upd NotebookUpdate) (*notebook.Notebook, error)
	// DeleteNotebook removes a notebook and every note in it.
	DeleteNotebook(ctx context.Context, id string) error
	ReorderNotebooks(ctx context.Context, orderedIDs []string) error

	// Notes returns the notes of a notebook, or all notes when notebookID is
	// empty.
	Notes(ctx context.Context, notebookID string) ([]notebook.Note, error)
	Note(ctx context.Context, id string) (*notebook.Note, error)
	CreateNote(ctx context.Context, notebookID, title string) (*notebook.Note, error)
	UpdateNote(ctx context.Context, id string, upd NoteUpdate) (*notebook.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ReorderNotes(ctx context.Context, notebookID string, orderedIDs []string) error
	// MoveNote moves a note to the end of another notebook.
	MoveNote(ctx context.Context, noteID, targetNotebookID string) (*notebook.Note, error)

	AddAttachment(ctx context.Context, noteID string, in AttachmentInput) (*notebook.Attachment, error)
	DeleteAttachment(ctx context.Context, noteID, attachmentID string) error

	Close() error
}

// NotebookUpdate holds the notebook fields to change. Nil fields are left
// alone.
type NotebookUpdate struct {
	Name  *string `json:"name,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// NoteUpdate holds the note fields to change. Nil fields are left alone.
type NoteUpdate struct {
	Title       *string                `json:"title,omitempty"`
	Content     *string                `json:"content,omitempty"`
	Columns     *int                   `json:"columns,omitempty"`
	Order       *int                   `json:"order,omitempty"`
	Attachments *[]notebook.Attachment `json:"attachments,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Columns == nil && u.Order == nil && u.Attachments == nil
}

// apply copies the set fields onto n.
func (u NoteUpdate) apply(n *notebook.Note) {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.Columns != nil {
		n.Columns = notebook.NormalizeColumns(*u.Columns)
	}
	if u.Order != nil {
		n.Order = *u.Order
	}
	if u.Attachments != nil {
		n.Attachments = append([]notebook.Attachment(nil), (*u.Attachments)...)
	}
}

// AttachmentInput is a file ready to be attached to a note.
type AttachmentInput struct {
	Name string
	Type string
	// Data is the file encoded as a data URL.
	Data     string
	Size     int64
	Checksum string
}

// Config selects and configures a storage backend.
type Config struct {
	Backend string // "sqlite" or "rest"
	Driver  string // database/sql driver for the sqlite backend
	Path    string
	URL     string
	Timeout time.Duration
}

// Open creates the storage backend described by cfg.
func Open(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return NewSQLiteStore(cfg.Driver, cfg.Path)
	case "rest":
		return NewRESTStore(cfg.URL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func findAttachmentByChecksum(atts []notebook.Attachment, checksum string) *notebook.Attachment {
	if checksum == "" {
		return nil
	}
	for i := range atts {
		if checksumOf(atts[i].Data, atts[i].Checksum) == checksum {
			a := atts[i]
			return &a
		}
	}
	return nil
}
