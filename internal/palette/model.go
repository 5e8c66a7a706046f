// Package palette implements the command palette and quick-open overlay.
package palette

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CommandSelectedMsg is sent when the user runs a command from the palette.
type CommandSelectedMsg struct {
	CommandID string
	Context   string
}

// NoteSelectedMsg is sent when the user picks a note in quick-open mode.
type NoteSelectedMsg struct {
	NoteID string
}

// ClosedMsg is sent when the palette is dismissed without a selection.
type ClosedMsg struct{}

// Model is the palette overlay.
type Model struct {
	textInput textinput.Model

	// entries for the active context, and for all contexts
	contextEntries []PaletteEntry
	allEntries     []PaletteEntry
	filtered       []PaletteEntry

	cursor     int
	offset     int
	maxVisible int
	width      int
	height     int

	activeContext   string
	showAllContexts bool
	quickOpen       bool
}

// New creates a closed palette.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Type a command..."
	ti.Prompt = ""
	ti.CharLimit = 100
	return Model{textInput: ti, maxVisible: 12}
}

// SetSize sets the screen size the palette is centered in.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// input, mode line, divider, box padding and borders
	m.maxVisible = max(3, min(16, height-12))
}

// Open shows command entries. contextEntries lists the commands of the
// active context plus global ones; allEntries adds every other context and
// is shown after tab.
func (m *Model) Open(activeContext string, contextEntries, allEntries []PaletteEntry) tea.Cmd {
	m.activeContext = activeContext
	m.contextEntries = contextEntries
	m.allEntries = allEntries
	m.quickOpen = false
	m.showAllContexts = false
	m.textInput.Placeholder = "Type a command..."
	return m.reset()
}

// OpenQuick shows note entries for quick open.
func (m *Model) OpenQuick(notes []PaletteEntry) tea.Cmd {
	m.activeContext = "notes"
	m.contextEntries = notes
	m.allEntries = notes
	m.quickOpen = true
	m.showAllContexts = false
	m.textInput.Placeholder = "Jump to note..."
	return m.reset()
}

func (m *Model) reset() tea.Cmd {
	m.textInput.SetValue("")
	m.cursor = 0
	m.offset = 0
	m.refilter()
	return m.textInput.Focus()
}

// QuickOpen reports whether the palette lists notes.
func (m Model) QuickOpen() bool {
	return m.quickOpen
}

// Query returns the current search text.
func (m Model) Query() string {
	return m.textInput.Value()
}

// Filtered returns the entries currently listed.
func (m Model) Filtered() []PaletteEntry {
	return m.filtered
}

// Selected returns the entry under the cursor.
func (m Model) Selected() (PaletteEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return PaletteEntry{}, false
	}
	return m.filtered[m.cursor], true
}

func (m *Model) refilter() {
	source := m.contextEntries
	if m.showAllContexts {
		source = m.allEntries
	}
	m.filtered = FilterEntries(source, m.textInput.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxVisible {
		m.offset = m.cursor - m.maxVisible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) move(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.filtered)-1, m.cursor+delta))
	m.ensureVisible()
}

// Update handles input while the palette is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "esc", "ctrl+c":
		m.textInput.Blur()
		return m, func() tea.Msg { return ClosedMsg{} }

	case "enter":
		e, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.textInput.Blur()
		if e.NoteID != "" {
			return m, func() tea.Msg { return NoteSelectedMsg{NoteID: e.NoteID} }
		}
		return m, func() tea.Msg { return CommandSelectedMsg{CommandID: e.CommandID, Context: e.Context} }

	case "up", "ctrl+k":
		m.move(-1)
		return m, nil
	case "down", "ctrl+j":
		m.move(1)
		return m, nil
	case "pgup":
		m.move(-m.maxVisible)
		return m, nil
	case "pgdown":
		m.move(m.maxVisible)
		return m, nil

	case "tab":
		if !m.quickOpen {
			m.showAllContexts = !m.showAllContexts
			m.cursor = 0
			m.offset = 0
			m.refilter()
		}
		return m, nil
	}

	prev := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() != prev {
		m.cursor = 0
		m.offset = 0
		m.refilter()
	}
	return m, cmd
}
