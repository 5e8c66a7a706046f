// Package notes is the notebook sidebar, note editor, preview and task list.
package notes

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/plugin"
	"github.com/marcus/twonote/internal/state"
	"github.com/marcus/twonote/internal/styles"
)

const (
	pluginID   = "notes"
	pluginName = "Notes"

	defaultSidebarWidth = 30
	minSidebarWidth     = 20
	maxSidebarWidth     = 60
	sidebarStep         = 4
	dividerWidth        = 1

	toastDuration = 2 * time.Second
)

// pane identifies which part of the plugin has focus.
type pane int

const (
	paneSidebar pane = iota
	paneEditor
	paneTasks
)

// Plugin implements the notes view.
type Plugin struct {
	ctx     *plugin.Context
	focused bool

	width, height int

	notebooks []notebook.Notebook
	notes     []notebook.Note
	loaded    bool

	active pane

	// sidebar
	rows         []sidebarRow
	cursor       int
	scroll       int
	collapsed    map[string]bool
	sidebarWidth int

	// editor
	note       *notebook.Note
	columns    [2]textarea.Model
	column     int
	mark       int
	dirty      bool
	editGen    uint64
	autoSaveID int

	// preview
	previewMode   string
	previewScroll int
	renderer      *glamour.TermRenderer
	rendererWidth int
	rendererTheme string

	// tasks
	tasks      []notebook.PendingTask
	taskCursor int
	taskScroll int

	// pendingOpen is opened once the next load completes.
	pendingOpen string
}

// New creates a new notes plugin.
func New() *Plugin {
	return &Plugin{
		collapsed:   make(map[string]bool),
		mark:        -1,
		previewMode: state.PreviewOff,
	}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return pluginName }

// Init prepares the editor widgets. Data is loaded in Start.
func (p *Plugin) Init(ctx *plugin.Context) error {
	p.ctx = ctx
	for i := range p.columns {
		p.columns[i] = newTextarea(ctx)
	}
	p.sidebarWidth = state.GetSidebarWidth()
	if p.sidebarWidth == 0 {
		p.sidebarWidth = defaultSidebarWidth
	}
	p.previewMode = state.GetPreviewMode()
	_, p.pendingOpen = state.GetLastOpened()
	return nil
}

func newTextarea(ctx *plugin.Context) textarea.Model {
	ta := textarea.New()
	ta.ShowLineNumbers = ctx != nil && ctx.Config != nil && ctx.Config.Editor.ShowLineNumbers
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Prompt = ""
	ta.Placeholder = "Start typing..."
	styleTextarea(&ta)
	// Formatting commands own these keys.
	ta.KeyMap.CapitalizeWordForward = key.NewBinding(key.WithDisabled())
	ta.KeyMap.CharacterBackward = key.NewBinding(key.WithKeys("left"))
	ta.KeyMap.WordBackward = key.NewBinding(key.WithKeys("ctrl+left"))
	ta.KeyMap.WordForward = key.NewBinding(key.WithKeys("ctrl+right"))
	ta.KeyMap.DeleteWordForward = key.NewBinding(key.WithKeys("alt+delete"))
	return ta
}

// styleTextarea applies the current theme to ta.
func styleTextarea(ta *textarea.Model) {
	ta.FocusedStyle = textarea.Style{
		Base:        lipgloss.NewStyle(),
		CursorLine:  lipgloss.NewStyle(),
		LineNumber:  styles.LineNumber,
		Placeholder: styles.Subtle,
		Text:        styles.Body,
	}
	ta.BlurredStyle = ta.FocusedStyle
}

// Start loads notebooks and notes.
func (p *Plugin) Start() tea.Cmd {
	return p.loadAll()
}

// Stop queues unsaved edits and remembers the open note and cursor.
func (p *Plugin) Stop() {
	p.flushPending()
	p.rememberCursor()
	if p.note != nil {
		if err := state.SetLastOpened(p.note.NotebookID, p.note.ID); err != nil {
			p.logger().Debug("notes: save state failed", "error", err)
		}
	}
}

// IsFocused returns whether the plugin is focused.
func (p *Plugin) IsFocused() bool { return p.focused }

// SetFocused sets the focus state.
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// FocusContext returns the keymap context of the focused pane.
func (p *Plugin) FocusContext() string {
	switch p.active {
	case paneTasks:
		return keymap.ContextTasks
	case paneEditor:
		if p.note == nil {
			return keymap.ContextSidebar
		}
		if p.previewMode == state.PreviewOnly {
			return keymap.ContextPreview
		}
		return keymap.ContextEditor
	}
	return keymap.ContextSidebar
}

// ConsumesTextInput reports whether printable keys are typed into the editor.
func (p *Plugin) ConsumesTextInput() bool {
	return p.FocusContext() == keymap.ContextEditor
}

// Update handles messages.
func (p *Plugin) Update(m tea.Msg) (plugin.Plugin, tea.Cmd) {
	switch m := m.(type) {
	case DataLoadedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		if m.Err != nil {
			p.logger().Error("notes: load failed", "error", m.Err)
			return p, msg.ShowError("Load failed", m.Err)
		}
		p.applyData(m.Notebooks, m.Notes)
		return p, nil

	case NoteSavedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		return p, p.handleSaved(m)

	case NoteCreatedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		if m.Err != nil {
			p.logger().Error("notes: create note failed", "error", m.Err)
			return p, msg.ShowError("Create note failed", m.Err)
		}
		p.logger().Debug("notes: created", "id", m.Note.ID)
		p.pendingOpen = m.Note.ID
		p.collapsed[m.Note.NotebookID] = false
		return p, p.loadAll()

	case NotebookCreatedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		if m.Err != nil {
			p.logger().Error("notes: create notebook failed", "error", m.Err)
			return p, msg.ShowError("Create notebook failed", m.Err)
		}
		p.logger().Debug("notes: notebook created", "id", m.Notebook.ID)
		p.selectNotebook(m.Notebook.ID)
		return p, tea.Batch(p.loadAll(), msg.ShowToast("Created "+m.Notebook.Name, toastDuration))

	case MutationDoneMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		if m.Err != nil {
			p.logger().Error("notes: "+m.Op+" failed", "error", m.Err)
			return p, tea.Batch(msg.ShowError(m.Op+" failed", m.Err), p.loadAll())
		}
		cmds := []tea.Cmd{p.loadAll()}
		if m.Toast != "" {
			cmds = append(cmds, msg.ShowToast(m.Toast, toastDuration))
		}
		return p, tea.Batch(cmds...)

	case AutoSaveTickMsg:
		if m.ID == p.autoSaveID && p.dirty {
			return p, p.saveNote()
		}
		return p, nil

	case plugin.ThemeChangedMsg:
		for i := range p.columns {
			styleTextarea(&p.columns[i])
		}
		return p, nil

	case plugin.StoreChangedMsg:
		p.closeNote()
		p.loaded = false
		return p, p.loadAll()

	case tea.KeyMsg:
		return p, p.handleKey(m)
	}

	// cursor blink and paste results
	if p.note != nil && p.FocusContext() == keymap.ContextEditor {
		var cmd tea.Cmd
		ta := p.activeTextarea()
		*ta, cmd = ta.Update(m)
		return p, cmd
	}
	return p, nil
}

// handleKey handles keys the keymap did not claim.
func (p *Plugin) handleKey(k tea.KeyMsg) tea.Cmd {
	if p.FocusContext() == keymap.ContextEditor {
		return p.handleEditorKey(k)
	}
	return nil
}

// applyData replaces the loaded data and restores selection.
func (p *Plugin) applyData(nbs []notebook.Notebook, notes []notebook.Note) {
	notebook.SortNotebooks(nbs)
	p.notebooks = nbs
	p.notes = notes
	p.loaded = true

	if p.note != nil {
		if fresh := p.findNote(p.note.ID); fresh == nil {
			p.closeNote()
		} else {
			// keep the buffer, refresh metadata
			content := p.note.Content
			cols := p.note.Columns
			*p.note = *fresh
			if p.dirty {
				p.note.Content = content
				p.note.Columns = cols
			}
		}
	}
	p.rebuildRows()
	p.refreshTasks()

	if id := p.pendingOpen; id != "" {
		p.pendingOpen = ""
		if n := p.findNote(id); n != nil {
			p.selectNote(id)
			p.openNote(*n)
		}
	}
}

func (p *Plugin) findNote(id string) *notebook.Note {
	for i := range p.notes {
		if p.notes[i].ID == id {
			return &p.notes[i]
		}
	}
	return nil
}

func (p *Plugin) findNotebook(id string) *notebook.Notebook {
	for i := range p.notebooks {
		if p.notebooks[i].ID == id {
			return &p.notebooks[i]
		}
	}
	return nil
}

// Notebooks returns the loaded notebooks in display order.
func (p *Plugin) Notebooks() []notebook.Notebook { return p.notebooks }

// Notes returns every loaded note.
func (p *Plugin) Notes() []notebook.Note { return p.notes }

// OpenNoteByID opens a note, e.g. from quick open.
func (p *Plugin) OpenNoteByID(id string) tea.Cmd {
	n := p.findNote(id)
	if n == nil {
		return msg.ShowToast("Note not found", toastDuration)
	}
	save := p.saveNote()
	p.collapsed[n.NotebookID] = false
	p.rebuildRows()
	p.selectNote(id)
	p.openNote(*n)
	return tea.Batch(save, p.focusEditor())
}

// Dirty reports whether the open note has unsaved edits.
func (p *Plugin) Dirty() bool { return p.dirty }

func (p *Plugin) logger() *slog.Logger {
	if p.ctx != nil && p.ctx.Logger != nil {
		return p.ctx.Logger
	}
	return slog.Default()
}
