// Package notebook holds the persistent note model: notebooks, notes and
// their attachments, plus the helpers that read structure out of note text.
package notebook

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// ID prefixes for each entity type.
const (
	NotebookIDPrefix   = "nb-"
	NoteIDPrefix       = "nt-"
	AttachmentIDPrefix = "at-"
)

// Notebook groups notes.
type Notebook struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Attachment is a file stored inline with a note as a data URL.
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Data      string    `json:"data"`
	Size      int64     `json:"size,omitempty"`
	Checksum  string    `json:"checksum,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Note is a single document inside a notebook.
type Note struct {
	ID          string       `json:"id"`
	NotebookID  string       `json:"notebookId"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	Columns     int          `json:"columns"`
	Order       int          `json:"order"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TwoColumn reports whether the note is edited as two side-by-side columns.
func (n Note) TwoColumn() bool {
	return n.Columns == 2
}

// NormalizeColumns maps any column count other than 2 to 1.
func NormalizeColumns(columns int) int {
	if columns == 2 {
		return 2
	}
	return 1
}

// NewID creates an ID with the given prefix and 8 hex chars.
func NewID(prefix string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate ID: %w", err)
	}
	return prefix + hex.EncodeToString(b), nil
}

// SortNotebooks orders notebooks by their order field, oldest first on ties.
func SortNotebooks(nbs []Notebook) {
	sort.SliceStable(nbs, func(i, j int) bool {
		if nbs[i].Order != nbs[j].Order {
			return nbs[i].Order < nbs[j].Order
		}
		return nbs[i].CreatedAt.Before(nbs[j].CreatedAt)
	})
}

// SortNotes orders notes by their order field, oldest first on ties.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Order != notes[j].Order {
			return notes[i].Order < notes[j].Order
		}
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
}

// NotesIn returns the notes of one notebook in display order.
func NotesIn(notes []Note, notebookID string) []Note {
	var out []Note
	for _, n := range notes {
		if n.NotebookID == notebookID {
			out = append(out, n)
		}
	}
	SortNotes(out)
	return out
}

// NextOrder returns the order value for an item appended after orders.
// Orders start at 1.
func NextOrder(orders []int) int {
	highest := 0
	for _, o := range orders {
		if o > highest {
			highest = o
		}
	}
	return highest + 1
}
