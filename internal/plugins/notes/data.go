package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/store"
)

// storeTimeout bounds a single store call made from the UI.
const storeTimeout = 30 * time.Second

// loadAll returns a command that loads every notebook and note.
func (p *Plugin) loadAll() tea.Cmd {
	if p.ctx == nil || p.ctx.Store == nil {
		return nil
	}
	st := p.ctx.Store
	epoch := p.ctx.Epoch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		nbs, err := st.Notebooks(ctx)
		if err != nil {
			return DataLoadedMsg{Err: err, Epoch: epoch}
		}
		notes, err := st.Notes(ctx, "")
		return DataLoadedMsg{Notebooks: nbs, Notes: notes, Err: err, Epoch: epoch}
	}
}

// mutate runs fn against the store and reports the outcome as a
// MutationDoneMsg.
func (p *Plugin) mutate(op, toast string, fn func(ctx context.Context, st store.Storage) error) tea.Cmd {
	if p.ctx == nil || p.ctx.Store == nil {
		return nil
	}
	st := p.ctx.Store
	epoch := p.ctx.Epoch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := fn(ctx, st)
		return MutationDoneMsg{Op: op, Toast: toast, Err: err, Epoch: epoch}
	}
}

// targetNotebook returns the notebook new notes go to: the selected
// notebook in the sidebar, else the open note's notebook, else the first.
func (p *Plugin) targetNotebook() *notebook.Notebook {
	if row, ok := p.selectedRow(); ok {
		return p.findNotebook(row.notebookID())
	}
	if p.note != nil {
		return p.findNotebook(p.note.NotebookID)
	}
	if len(p.notebooks) > 0 {
		return &p.notebooks[0]
	}
	return nil
}

// createNote creates an untitled note in the target notebook.
func (p *Plugin) createNote() tea.Cmd {
	nb := p.targetNotebook()
	if nb == nil {
		return msg.ShowToast("Create a notebook first", toastDuration)
	}
	if p.ctx == nil || p.ctx.Store == nil {
		return nil
	}
	st, nbID, epoch := p.ctx.Store, nb.ID, p.ctx.Epoch
	return tea.Batch(p.saveNote(), func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		n, err := st.CreateNote(ctx, nbID, notebook.UntitledTitle)
		return NoteCreatedMsg{Note: n, Err: err, Epoch: epoch}
	})
}

// promptNewNotebook asks for a notebook name.
func (p *Plugin) promptNewNotebook() tea.Cmd {
	return prompt("New notebook", "Notebook name", "", func(name string) tea.Cmd {
		if p.ctx == nil || p.ctx.Store == nil {
			return nil
		}
		st, epoch := p.ctx.Store, p.ctx.Epoch
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			nb, err := st.CreateNotebook(ctx, name)
			return NotebookCreatedMsg{Notebook: nb, Err: err, Epoch: epoch}
		}
	})
}

// promptRenameNote asks for a new title for the selected or open note.
func (p *Plugin) promptRenameNote() tea.Cmd {
	n := p.contextNote()
	if n == nil {
		return nil
	}
	id := n.ID
	return prompt("Rename note", "Title", n.Title, func(title string) tea.Cmd {
		if p.note != nil && p.note.ID == id {
			p.note.Title = title
		}
		return p.mutate("Rename", "Renamed", func(ctx context.Context, st store.Storage) error {
			_, err := st.UpdateNote(ctx, id, store.NoteUpdate{Title: &title})
			return err
		})
	})
}

// promptRenameNotebook asks for a new name for the selected notebook.
func (p *Plugin) promptRenameNotebook() tea.Cmd {
	nb := p.targetNotebook()
	if nb == nil {
		return nil
	}
	id := nb.ID
	return prompt("Rename notebook", "Name", nb.Name, func(name string) tea.Cmd {
		return p.mutate("Rename", "Renamed", func(ctx context.Context, st store.Storage) error {
			_, err := st.UpdateNotebook(ctx, id, store.NotebookUpdate{Name: &name})
			return err
		})
	})
}

// renameSelected renames whatever the sidebar cursor is on.
func (p *Plugin) renameSelected() tea.Cmd {
	row, ok := p.selectedRow()
	if !ok {
		return nil
	}
	if row.note != nil {
		return p.promptRenameNote()
	}
	return p.promptRenameNotebook()
}

// confirmDeleteNote asks before deleting the selected or open note.
func (p *Plugin) confirmDeleteNote() tea.Cmd {
	n := p.contextNote()
	if n == nil {
		return nil
	}
	id, title := n.ID, notebook.DisplayTitle(*n)
	return confirm("Delete note?", fmt.Sprintf("%q will be deleted permanently.", title), func() tea.Cmd {
		if p.note != nil && p.note.ID == id {
			p.closeNote()
		}
		return p.mutate("Delete", "Deleted "+title, func(ctx context.Context, st store.Storage) error {
			return st.DeleteNote(ctx, id)
		})
	})
}

// confirmDeleteNotebook asks before deleting a notebook and its notes.
func (p *Plugin) confirmDeleteNotebook() tea.Cmd {
	nb := p.targetNotebook()
	if nb == nil {
		return nil
	}
	id, name := nb.ID, nb.Name
	count := len(notebook.NotesIn(p.notes, id))
	body := fmt.Sprintf("%q and its %d note(s) will be deleted permanently.", name, count)
	return confirm("Delete notebook?", body, func() tea.Cmd {
		if p.note != nil && p.note.NotebookID == id {
			p.closeNote()
		}
		return p.mutate("Delete", "Deleted "+name, func(ctx context.Context, st store.Storage) error {
			return st.DeleteNotebook(ctx, id)
		})
	})
}

// deleteSelected deletes whatever the sidebar cursor is on.
func (p *Plugin) deleteSelected() tea.Cmd {
	row, ok := p.selectedRow()
	if !ok {
		return nil
	}
	if row.note != nil {
		return p.confirmDeleteNote()
	}
	return p.confirmDeleteNotebook()
}

// moveSelected moves the selected notebook or note one place up or down
// among its siblings and persists the new order.
func (p *Plugin) moveSelected(delta int) tea.Cmd {
	row, ok := p.selectedRow()
	if !ok {
		return nil
	}
	if row.note != nil {
		siblings := notebook.NotesIn(p.notes, row.note.NotebookID)
		ids := make([]string, len(siblings))
		for i, n := range siblings {
			ids[i] = n.ID
		}
		ids, moved := swapID(ids, row.note.ID, delta)
		if !moved {
			return nil
		}
		for i, id := range ids {
			if n := p.findNote(id); n != nil {
				n.Order = i + 1
			}
		}
		p.rebuildRows()
		p.selectNote(row.note.ID)
		nbID := row.note.NotebookID
		return p.mutate("Reorder", "", func(ctx context.Context, st store.Storage) error {
			return st.ReorderNotes(ctx, nbID, ids)
		})
	}

	ids := make([]string, len(p.notebooks))
	for i, nb := range p.notebooks {
		ids[i] = nb.ID
	}
	id := row.notebook.ID
	ids, moved := swapID(ids, id, delta)
	if !moved {
		return nil
	}
	for i, nbID := range ids {
		if nb := p.findNotebook(nbID); nb != nil {
			nb.Order = i + 1
		}
	}
	notebook.SortNotebooks(p.notebooks)
	p.rebuildRows()
	p.selectNotebook(id)
	return p.mutate("Reorder", "", func(ctx context.Context, st store.Storage) error {
		return st.ReorderNotebooks(ctx, ids)
	})
}

// swapID moves id by delta places within ids.
func swapID(ids []string, id string, delta int) ([]string, bool) {
	for i, v := range ids {
		if v != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(ids) {
			return ids, false
		}
		ids[i], ids[j] = ids[j], ids[i]
		return ids, true
	}
	return ids, false
}

// promptMoveNote asks for the notebook to move the selected note to.
func (p *Plugin) promptMoveNote() tea.Cmd {
	n := p.contextNote()
	if n == nil {
		return nil
	}
	id := n.ID
	var names []string
	for _, nb := range p.notebooks {
		if nb.ID != n.NotebookID {
			names = append(names, nb.Name)
		}
	}
	if len(names) == 0 {
		return msg.ShowToast("No other notebook", toastDuration)
	}
	title := "Move to notebook (" + strings.Join(names, ", ") + ")"
	return prompt(title, "Notebook name", "", func(name string) tea.Cmd {
		target := p.notebookByName(name)
		if target == nil {
			return msg.ShowToast("No notebook named "+name, toastDuration)
		}
		targetID := target.ID
		p.collapsed[targetID] = false
		if p.note != nil && p.note.ID == id {
			p.note.NotebookID = targetID
		}
		return p.mutate("Move", "Moved to "+target.Name, func(ctx context.Context, st store.Storage) error {
			_, err := st.MoveNote(ctx, id, targetID)
			return err
		})
	})
}

// notebookByName finds a notebook by case-insensitive name.
func (p *Plugin) notebookByName(name string) *notebook.Notebook {
	name = strings.TrimSpace(name)
	for i := range p.notebooks {
		if strings.EqualFold(p.notebooks[i].Name, name) {
			return &p.notebooks[i]
		}
	}
	return nil
}

// contextNote is the note a note command applies to: the sidebar selection
// when the sidebar is focused, else the open note.
func (p *Plugin) contextNote() *notebook.Note {
	if p.active == paneSidebar {
		if row, ok := p.selectedRow(); ok && row.note != nil {
			return p.findNote(row.note.ID)
		}
	}
	return p.note
}

func prompt(title, placeholder, value string, onSubmit func(string) tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		return msg.PromptMsg{
			Title:       title,
			Placeholder: placeholder,
			Value:       value,
			OnSubmit: func(v string) tea.Cmd {
				v = strings.TrimSpace(v)
				if v == "" {
					return nil
				}
				return onSubmit(v)
			},
		}
	}
}

func confirm(title, body string, onConfirm func() tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		return msg.ConfirmMsg{
			Title:     title,
			Body:      body,
			Danger:    true,
			OnConfirm: onConfirm,
		}
	}
}
