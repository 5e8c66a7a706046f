package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Preview modes for the note pane.
const (
	PreviewOff   = "off"   // editor only
	PreviewSplit = "split" // editor and rendered preview side by side
	PreviewOnly  = "only"  // rendered preview only
)

// maxRememberedCursors bounds the per-note cursor map.
const maxRememberedCursors = 200

// State holds persistent user preferences.
type State struct {
	LastNotebookID string `json:"lastNotebookId,omitempty"`
	LastNoteID     string `json:"lastNoteId,omitempty"`

	// Sidebar width in columns (0 = use default)
	SidebarWidth int `json:"sidebarWidth,omitempty"`

	PreviewMode string `json:"previewMode"` // "off", "split" or "only"

	// Cursor offsets per note ID, restored when a note is reopened.
	Cursors map[string]int `json:"cursors,omitempty"`
	// CursorOrder lists note IDs in Cursors, oldest first.
	CursorOrder []string `json:"cursorOrder,omitempty"`
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", "twonote"))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	path = filepath.Join(dir, "state.json")
	return Load()
}

func defaults() *State {
	return &State{PreviewMode: PreviewOff}
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, current); err != nil {
		return err
	}
	if !validPreviewMode(current.PreviewMode) {
		current.PreviewMode = PreviewOff
	}
	return nil
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil || path == "" {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// update applies fn under the write lock and persists the result.
func update(fn func(s *State)) error {
	mu.Lock()
	if current == nil {
		current = defaults()
	}
	fn(current)
	mu.Unlock()
	return Save()
}

// GetLastOpened returns the notebook and note open when the app last quit.
func GetLastOpened() (notebookID, noteID string) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return "", ""
	}
	return current.LastNotebookID, current.LastNoteID
}

// SetLastOpened remembers the open notebook and note.
func SetLastOpened(notebookID, noteID string) error {
	return update(func(s *State) {
		s.LastNotebookID = notebookID
		s.LastNoteID = noteID
	})
}

// GetSidebarWidth returns the saved sidebar width.
// Returns 0 if no preference is saved (use default).
func GetSidebarWidth() int {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return 0
	}
	return current.SidebarWidth
}

// SetSidebarWidth saves the sidebar width.
func SetSidebarWidth(width int) error {
	return update(func(s *State) { s.SidebarWidth = width })
}

// GetPreviewMode returns the saved preview mode.
func GetPreviewMode() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return PreviewOff
	}
	return current.PreviewMode
}

// SetPreviewMode saves the preview mode. Unknown modes are stored as off.
func SetPreviewMode(mode string) error {
	if !validPreviewMode(mode) {
		mode = PreviewOff
	}
	return update(func(s *State) { s.PreviewMode = mode })
}

// NextPreviewMode cycles off -> split -> only -> off.
func NextPreviewMode(mode string) string {
	switch mode {
	case PreviewOff:
		return PreviewSplit
	case PreviewSplit:
		return PreviewOnly
	default:
		return PreviewOff
	}
}

func validPreviewMode(mode string) bool {
	return mode == PreviewOff || mode == PreviewSplit || mode == PreviewOnly
}

// GetCursor returns the remembered cursor offset for a note.
func GetCursor(noteID string) (int, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil || current.Cursors == nil {
		return 0, false
	}
	off, ok := current.Cursors[noteID]
	return off, ok
}

// SetCursor remembers the cursor offset for a note, evicting the oldest
// entries past maxRememberedCursors.
func SetCursor(noteID string, offset int) error {
	return update(func(s *State) {
		if s.Cursors == nil {
			s.Cursors = make(map[string]int)
		}
		if _, ok := s.Cursors[noteID]; ok {
			s.CursorOrder = removeID(s.CursorOrder, noteID)
		}
		s.Cursors[noteID] = offset
		s.CursorOrder = append(s.CursorOrder, noteID)
		for len(s.CursorOrder) > maxRememberedCursors {
			delete(s.Cursors, s.CursorOrder[0])
			s.CursorOrder = s.CursorOrder[1:]
		}
	})
}

// ForgetNote drops everything remembered about a deleted note.
func ForgetNote(noteID string) error {
	return update(func(s *State) {
		delete(s.Cursors, noteID)
		s.CursorOrder = removeID(s.CursorOrder, noteID)
		if s.LastNoteID == noteID {
			s.LastNoteID = ""
		}
	})
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
