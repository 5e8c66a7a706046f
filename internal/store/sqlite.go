package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/marcus/twonote/internal/notebook"
)

// Supported database/sql drivers.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

// ActionType represents the type of mutation recorded in the action log.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// Action is one entry of the action log.
type Action struct {
	ID         string
	SessionID  string
	Type       ActionType
	EntityType string
	EntityID   string
	Previous   string
	New        string
	Timestamp  time.Time
}

// MaxActionLogEntries is how many action log rows are kept; older rows are
// pruned as new ones are written.
const MaxActionLogEntries = 1000

// SQLiteStore implements Storage on a local SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	sessionID  string
	maxActions int
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStore opens (creating if needed) the database at path using the
// given driver. An empty driver selects the cgo driver. Use ":memory:" for a
// throwaway database.
func NewSQLiteStore(driver, path string) (*SQLiteStore, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	dsn, err := sqliteDSN(driver, path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	sessionID := os.Getenv("TWONOTE_SESSION_ID")
	if sessionID == "" {
		sessionID = "twonote"
	}

	s := &SQLiteStore{db: db, sessionID: sessionID, maxActions: MaxActionLogEntries}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func sqliteDSN(driver, path string) (string, error) {
	switch driver {
	case DriverCGO:
		return path + "?_busy_timeout=5000&_journal_mode=WAL", nil
	case DriverPureGo:
		return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS notebooks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    ord INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    notebook_id TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    column_count INTEGER NOT NULL DEFAULT 1,
    ord INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_notebook ON notes(notebook_id, ord);
CREATE TABLE IF NOT EXISTS attachments (
    id TEXT PRIMARY KEY,
    note_id TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    data TEXT NOT NULL,
    size INTEGER NOT NULL DEFAULT 0,
    checksum TEXT NOT NULL DEFAULT '',
    seq INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attachments_note ON attachments(note_id, seq);
CREATE TABLE IF NOT EXISTS action_log (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    action_type TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    previous_data TEXT NOT NULL DEFAULT '',
    new_data TEXT NOT NULL DEFAULT '',
    timestamp TEXT NOT NULL
);
`
	_, err := s.db.Exec(schema)
	return err
}

// now returns the current time at the precision timestamps are stored with.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// withTx runs fn in a transaction, committing on success.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// --- notebooks ---

// Notebooks returns all notebooks in display order.
func (s *SQLiteStore) Notebooks(ctx context.Context) ([]notebook.Notebook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, ord, created_at, updated_at
		FROM notebooks ORDER BY ord, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query notebooks: %w", err)
	}
	defer rows.Close()

	var out []notebook.Notebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, nb)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotebook(r rowScanner) (notebook.Notebook, error) {
	var nb notebook.Notebook
	var createdAt, updatedAt string
	if err := r.Scan(&nb.ID, &nb.Name, &nb.Order, &createdAt, &updatedAt); err != nil {
		return nb, fmt.Errorf("scan notebook: %w", err)
	}
	nb.CreatedAt = parseTime(createdAt)
	nb.UpdatedAt = parseTime(updatedAt)
	return nb, nil
}

func (s *SQLiteStore) getNotebook(ctx context.Context, q execer, id string) (*notebook.Notebook, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, ord, created_at, updated_at FROM notebooks WHERE id = ?`, id)
	nb, err := scanNotebook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("notebook", id)
	}
	if err != nil {
		return nil, err
	}
	return &nb, nil
}

// CreateNotebook appends a new notebook.
func (s *SQLiteStore) CreateNotebook(ctx context.Context, name string) (*notebook.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("notebook name is required")
	}
	id, err := notebook.NewID(notebook.NotebookIDPrefix)
	if err != nil {
		return nil, err
	}

	ts := now()
	nb := &notebook.Notebook{ID: id, Name: name, CreatedAt: ts, UpdatedAt: ts}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(ord), 0) + 1 FROM notebooks`).Scan(&nb.Order); err != nil {
			return fmt.Errorf("next notebook order: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notebooks (id, name, ord, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			nb.ID, nb.Name, nb.Order, formatTime(ts), formatTime(ts)); err != nil {
			return fmt.Errorf("insert notebook: %w", err)
		}
		return s.logAction(ctx, tx, ActionCreate, "notebooks", nb.ID, nil, nb)
	})
	if err != nil {
		return nil, err
	}
	return nb, nil
}

// UpdateNotebook renames or reorders a notebook.
func (s *SQLiteStore) UpdateNotebook(ctx context.Context, id string, upd NotebookUpdate) (*notebook.Notebook, error) {
	var out *notebook.Notebook
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.getNotebook(ctx, tx, id)
		if err != nil {
			return err
		}
		nb := *prev
		if upd.Name != nil {
			nb.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Order != nil {
			nb.Order = *upd.Order
		}
		nb.UpdatedAt = now()

		if _, err := tx.ExecContext(ctx, `
			UPDATE notebooks SET name = ?, ord = ?, updated_at = ? WHERE id = ?`,
			nb.Name, nb.Order, formatTime(nb.UpdatedAt), id); err != nil {
			return fmt.Errorf("update notebook: %w", err)
		}
		out = &nb
		return s.logAction(ctx, tx, ActionUpdate, "notebooks", id, prev, &nb)
	})
	return out, err
}

// DeleteNotebook removes a notebook, its notes and their attachments.
func (s *SQLiteStore) DeleteNotebook(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.getNotebook(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM attachments WHERE note_id IN (SELECT id FROM notes WHERE notebook_id = ?)`, id); err != nil {
			return fmt.Errorf("delete attachments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE notebook_id = ?`, id); err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notebooks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete notebook: %w", err)
		}
		return s.logAction(ctx, tx, ActionDelete, "notebooks", id, prev, nil)
	})
}

// ReorderNotebooks assigns orders 1..n following orderedIDs. Unknown IDs are
// ignored.
func (s *SQLiteStore) ReorderNotebooks(ctx context.Context, orderedIDs []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.ExecContext(ctx, `UPDATE notebooks SET ord = ? WHERE id = ?`, i+1, id); err != nil {
				return fmt.Errorf("reorder notebook %s: %w", id, err)
			}
		}
		return nil
	})
}

// --- notes ---

const noteColumns = `id, notebook_id, title, content, column_count, ord, created_at, updated_at`

func scanNote(r rowScanner) (notebook.Note, error) {
	var n notebook.Note
	var createdAt, updatedAt string
	if err := r.Scan(&n.ID, &n.NotebookID, &n.Title, &n.Content, &n.Columns, &n.Order, &createdAt, &updatedAt); err != nil {
		return n, fmt.Errorf("scan note: %w", err)
	}
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	n.Columns = notebook.NormalizeColumns(n.Columns)
	n.Attachments = []notebook.Attachment{}
	return n, nil
}

// Notes returns the notes of a notebook, or every note when notebookID is
// empty, in display order with their attachments.
func (s *SQLiteStore) Notes(ctx context.Context, notebookID string) ([]notebook.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes`
	var args []any
	if notebookID != "" {
		query += ` WHERE notebook_id = ?`
		args = append(args, notebookID)
	}
	query += ` ORDER BY notebook_id, ord, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	var notes []notebook.Note
	index := make(map[string]int)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[n.ID] = len(notes)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("query notes: %w", err)
	}
	rows.Close()

	atts, err := s.attachmentsFor(ctx, s.db, notebookID)
	if err != nil {
		return nil, err
	}
	for noteID, list := range atts {
		if i, ok := index[noteID]; ok {
			notes[i].Attachments = list
		}
	}
	return notes, nil
}

// attachmentsFor loads attachments grouped by note, limited to one notebook
// unless notebookID is empty.
func (s *SQLiteStore) attachmentsFor(ctx context.Context, q execer, notebookID string) (map[string][]notebook.Attachment, error) {
	query := `SELECT a.id, a.note_id, a.name, a.type, a.data, a.size, a.checksum, a.created_at
		FROM attachments a`
	var args []any
	if notebookID != "" {
		query += ` JOIN notes n ON n.id = a.note_id WHERE n.notebook_id = ?`
		args = append(args, notebookID)
	}
	query += ` ORDER BY a.note_id, a.seq`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]notebook.Attachment)
	for rows.Next() {
		var a notebook.Attachment
		var noteID, createdAt string
		if err := rows.Scan(&a.ID, &noteID, &a.Name, &a.Type, &a.Data, &a.Size, &a.Checksum, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		out[noteID] = append(out[noteID], a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) getNote(ctx context.Context, q execer, id string) (*notebook.Note, error) {
	n, err := scanNote(q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("note", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, name, type, data, size, checksum, created_at
		FROM attachments WHERE note_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a notebook.Attachment
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Data, &a.Size, &a.Checksum, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		n.Attachments = append(n.Attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	return &n, nil
}

// Note returns a single note with its attachments.
func (s *SQLiteStore) Note(ctx context.Context, id string) (*notebook.Note, error) {
	return s.getNote(ctx, s.db, id)
}

// CreateNote appends an empty note to a notebook.
func (s *SQLiteStore) CreateNote(ctx context.Context, notebookID, title string) (*notebook.Note, error) {
	id, err := notebook.NewID(notebook.NoteIDPrefix)
	if err != nil {
		return nil, err
	}

	ts := now()
	n := &notebook.Note{
		ID:          id,
		NotebookID:  notebookID,
		Title:       title,
		Attachments: []notebook.Attachment{},
		Columns:     1,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getNotebook(ctx, tx, notebookID); err != nil {
			return err
		}
		order, err := nextNoteOrder(ctx, tx, notebookID)
		if err != nil {
			return err
		}
		n.Order = order
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notes (`+noteColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.NotebookID, n.Title, n.Content, n.Columns, n.Order,
			formatTime(ts), formatTime(ts)); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		return s.logAction(ctx, tx, ActionCreate, "notes", n.ID, nil, noteSummary(n))
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func nextNoteOrder(ctx context.Context, q execer, notebookID string) (int, error) {
	var next int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ord), 0) + 1 FROM notes WHERE notebook_id = ?`, notebookID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next note order: %w", err)
	}
	return next, nil
}

// UpdateNote applies upd to a note and bumps its updated time.
func (s *SQLiteStore) UpdateNote(ctx context.Context, id string, upd NoteUpdate) (*notebook.Note, error) {
	var out *notebook.Note
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		n := *prev
		upd.apply(&n)
		n.UpdatedAt = now()

		if _, err := tx.ExecContext(ctx, `
			UPDATE notes SET title = ?, content = ?, column_count = ?, ord = ?, updated_at = ?
			WHERE id = ?`,
			n.Title, n.Content, n.Columns, n.Order, formatTime(n.UpdatedAt), id); err != nil {
			return fmt.Errorf("update note: %w", err)
		}
		if upd.Attachments != nil {
			if err := replaceAttachments(ctx, tx, id, n.Attachments); err != nil {
				return err
			}
		}
		out = &n
		return s.logAction(ctx, tx, ActionUpdate, "notes", id, noteSummary(prev), noteSummary(&n))
	})
	return out, err
}

func replaceAttachments(ctx context.Context, tx *sql.Tx, noteID string, atts []notebook.Attachment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("clear attachments: %w", err)
	}
	for i, a := range atts {
		if a.ID == "" {
			id, err := notebook.NewID(notebook.AttachmentIDPrefix)
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now()
		}
		if err := insertAttachment(ctx, tx, noteID, i, a); err != nil {
			return err
		}
	}
	return nil
}

func insertAttachment(ctx context.Context, q execer, noteID string, seq int, a notebook.Attachment) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO attachments (id, note_id, name, type, data, size, checksum, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, noteID, a.Name, a.Type, a.Data, a.Size, a.Checksum, seq, formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// DeleteNote removes a note and its attachments.
func (s *SQLiteStore) DeleteNote(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE note_id = ?`, id); err != nil {
			return fmt.Errorf("delete attachments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		return s.logAction(ctx, tx, ActionDelete, "notes", id, noteSummary(prev), nil)
	})
}

// ReorderNotes assigns orders 1..n to the notes of one notebook following
// orderedIDs. Notes of other notebooks are ignored.
func (s *SQLiteStore) ReorderNotes(ctx context.Context, notebookID string, orderedIDs []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.ExecContext(ctx,
				`UPDATE notes SET ord = ? WHERE id = ? AND notebook_id = ?`, i+1, id, notebookID); err != nil {
				return fmt.Errorf("reorder note %s: %w", id, err)
			}
		}
		return nil
	})
}

// MoveNote moves a note to the end of another notebook.
func (s *SQLiteStore) MoveNote(ctx context.Context, noteID, targetNotebookID string) (*notebook.Note, error) {
	var out *notebook.Note
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.getNote(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if _, err := s.getNotebook(ctx, tx, targetNotebookID); err != nil {
			return err
		}
		n := *prev
		n.NotebookID = targetNotebookID
		if n.Order, err = nextNoteOrder(ctx, tx, targetNotebookID); err != nil {
			return err
		}
		n.UpdatedAt = now()

		if _, err := tx.ExecContext(ctx, `
			UPDATE notes SET notebook_id = ?, ord = ?, updated_at = ? WHERE id = ?`,
			n.NotebookID, n.Order, formatTime(n.UpdatedAt), noteID); err != nil {
			return fmt.Errorf("move note: %w", err)
		}
		out = &n
		return s.logAction(ctx, tx, ActionUpdate, "notes", noteID, noteSummary(prev), noteSummary(&n))
	})
	return out, err
}

// --- attachments ---

// AddAttachment stores a file on a note. A file whose checksum matches an
// existing attachment of the note is not stored twice; the existing
// attachment is returned instead.
func (s *SQLiteStore) AddAttachment(ctx context.Context, noteID string, in AttachmentInput) (*notebook.Attachment, error) {
	var out *notebook.Attachment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		n, err := s.getNote(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if existing := findAttachmentByChecksum(n.Attachments, in.Checksum); existing != nil {
			out = existing
			return nil
		}

		id, err := notebook.NewID(notebook.AttachmentIDPrefix)
		if err != nil {
			return err
		}
		a := notebook.Attachment{
			ID:        id,
			Name:      in.Name,
			Type:      in.Type,
			Data:      in.Data,
			Size:      in.Size,
			Checksum:  in.Checksum,
			CreatedAt: now(),
		}
		if err := insertAttachment(ctx, tx, noteID, len(n.Attachments), a); err != nil {
			return err
		}
		if err := touchNote(ctx, tx, noteID); err != nil {
			return err
		}
		out = &a
		return s.logAction(ctx, tx, ActionCreate, "attachments", a.ID, nil, attachmentSummary(noteID, a))
	})
	return out, err
}

// DeleteAttachment removes one attachment from a note.
func (s *SQLiteStore) DeleteAttachment(ctx context.Context, noteID, attachmentID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM attachments WHERE id = ? AND note_id = ?`, attachmentID, noteID)
		if err != nil {
			return fmt.Errorf("delete attachment: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("attachment", attachmentID)
		}
		if err := touchNote(ctx, tx, noteID); err != nil {
			return err
		}
		return s.logAction(ctx, tx, ActionDelete, "attachments", attachmentID, map[string]string{"noteId": noteID}, nil)
	})
}

func touchNote(ctx context.Context, q execer, noteID string) error {
	if _, err := q.ExecContext(ctx, `UPDATE notes SET updated_at = ? WHERE id = ?`, formatTime(now()), noteID); err != nil {
		return fmt.Errorf("touch note: %w", err)
	}
	return nil
}

// noteSummary records a note's shape in the action log without its content
// or attachment payloads, which autosave would otherwise copy on every edit.
func noteSummary(n *notebook.Note) map[string]any {
	return map[string]any{
		"notebookId":  n.NotebookID,
		"title":       n.Title,
		"contentLen":  len([]rune(n.Content)),
		"columns":     n.Columns,
		"order":       n.Order,
		"attachments": len(n.Attachments),
	}
}

// attachmentSummary keeps attachment payloads out of the action log.
func attachmentSummary(noteID string, a notebook.Attachment) map[string]any {
	return map[string]any{
		"noteId":   noteID,
		"id":       a.ID,
		"name":     a.Name,
		"type":     a.Type,
		"size":     a.Size,
		"checksum": a.Checksum,
	}
}

// --- action log ---

// logAction writes an entry to the action_log table.
func (s *SQLiteStore) logAction(ctx context.Context, q execer, actionType ActionType, entityType, entityID string, prev, new any) error {
	var prevData, newData string

	if prev != nil {
		b, err := json.Marshal(prev)
		if err != nil {
			return fmt.Errorf("marshal previous data: %w", err)
		}
		prevData = string(b)
	}
	if new != nil {
		b, err := json.Marshal(new)
		if err != nil {
			return fmt.Errorf("marshal new data: %w", err)
		}
		newData = string(b)
	}

	actionID, err := notebook.NewID("al-")
	if err != nil {
		return fmt.Errorf("generate action ID: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO action_log (id, session_id, action_type, entity_type, entity_id, previous_data, new_data, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		actionID, s.sessionID, string(actionType), entityType, entityID, prevData, newData, formatTime(now()))
	if err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return s.pruneActions(ctx, q)
}

// pruneActions drops all but the newest maxActions rows.
func (s *SQLiteStore) pruneActions(ctx context.Context, q execer) error {
	if s.maxActions <= 0 {
		return nil
	}
	if _, err := q.ExecContext(ctx, `
		DELETE FROM action_log WHERE rowid <= (
			SELECT rowid FROM action_log ORDER BY rowid DESC LIMIT 1 OFFSET ?)`,
		s.maxActions); err != nil {
		return fmt.Errorf("prune action log: %w", err)
	}
	return nil
}

// RecentActions returns up to limit action log entries, newest first.
func (s *SQLiteStore) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, action_type, entity_type, entity_id, previous_data, new_data, timestamp
		FROM action_log ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query action log: %w", err)
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		var actionType, ts string
		if err := rows.Scan(&a.ID, &a.SessionID, &actionType, &a.EntityType, &a.EntityID, &a.Previous, &a.New, &ts); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Type = ActionType(actionType)
		a.Timestamp = parseTime(ts)
		out = append(out, a)
	}
	return out, rows.Err()
}
