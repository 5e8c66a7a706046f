package notes

import (
	"github.com/marcus/twonote/internal/autosave"
	"github.com/marcus/twonote/internal/notebook"
)

// DataLoadedMsg carries every notebook and note from the store.
type DataLoadedMsg struct {
	Notebooks []notebook.Notebook
	Notes     []notebook.Note
	Err       error
	Epoch     uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m DataLoadedMsg) GetEpoch() uint64 { return m.Epoch }

// NoteSavedMsg reports an autosave result. EditGen is the editor generation
// the snapshot was taken at.
type NoteSavedMsg struct {
	Result     autosave.Result
	Generation uint64
	EditGen    uint64
	Epoch      uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m NoteSavedMsg) GetEpoch() uint64 { return m.Epoch }

// NoteCreatedMsg is sent after a note was created.
type NoteCreatedMsg struct {
	Note  *notebook.Note
	Err   error
	Epoch uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m NoteCreatedMsg) GetEpoch() uint64 { return m.Epoch }

// NotebookCreatedMsg is sent after a notebook was created.
type NotebookCreatedMsg struct {
	Notebook *notebook.Notebook
	Err      error
	Epoch    uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m NotebookCreatedMsg) GetEpoch() uint64 { return m.Epoch }

// MutationDoneMsg is sent after a rename, delete, reorder, move or
// attachment change. Toast is shown on success.
type MutationDoneMsg struct {
	Op    string
	Toast string
	Err   error
	Epoch uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m MutationDoneMsg) GetEpoch() uint64 { return m.Epoch }

// AutoSaveTickMsg fires after the autosave delay. Only the tick matching the
// latest ID saves.
type AutoSaveTickMsg struct {
	ID int
}
