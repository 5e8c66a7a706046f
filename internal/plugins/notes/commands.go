package notes

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/formatting"
	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/plugin"
	"github.com/marcus/twonote/internal/state"
)

// Commands returns the commands of every notes context. Commands without a
// Context are global.
func (p *Plugin) Commands() []plugin.Command {
	return []plugin.Command{
		// global
		{ID: "save-note", Name: "Save", Description: "Save the open note now", Category: plugin.CategoryNotes, Priority: 2},
		{ID: "new-note", Name: "New note", Description: "Create a note in the selected notebook", Category: plugin.CategoryNotes, Priority: 3},
		{ID: "new-notebook", Name: "New notebook", Description: "Create a notebook", Category: plugin.CategoryNotes},
		{ID: "rename-note", Name: "Rename note", Description: "Rename the selected or open note", Category: plugin.CategoryNotes},
		{ID: "rename-notebook", Name: "Rename notebook", Description: "Rename the selected notebook", Category: plugin.CategoryNotes},
		{ID: "delete-note", Name: "Delete note", Description: "Delete the selected or open note", Category: plugin.CategoryNotes},
		{ID: "delete-notebook", Name: "Delete notebook", Description: "Delete the selected notebook and its notes", Category: plugin.CategoryNotes},
		{ID: "next-note", Name: "Next note", Description: "Open the next note", Category: plugin.CategoryNavigation},
		{ID: "prev-note", Name: "Previous note", Description: "Open the previous note", Category: plugin.CategoryNavigation},
		{ID: "close-note", Name: "Close note", Description: "Save and close the open note", Category: plugin.CategoryNotes},
		{ID: "toggle-preview", Name: "Preview", Description: "Cycle preview: off, split, only", Category: plugin.CategoryView, Priority: 4},
		{ID: "show-tasks", Name: "Tasks", Description: "Show pending tasks across notes", Category: plugin.CategoryView, Priority: 4},
		{ID: "add-attachment", Name: "Attach", Description: "Attach a file to the open note", Category: plugin.CategoryNotes},
		{ID: "remove-attachment", Name: "Detach", Description: "Remove an attachment from the open note", Category: plugin.CategoryNotes},
		{ID: "yank-note", Name: "Copy", Description: "Copy the note content to the clipboard", Category: plugin.CategoryNotes},
		{ID: "sidebar-wider", Name: "Wider sidebar", Description: "Widen the sidebar", Category: plugin.CategoryView},
		{ID: "sidebar-narrower", Name: "Narrower sidebar", Description: "Narrow the sidebar", Category: plugin.CategoryView},

		// sidebar
		{ID: "cursor-down", Name: "Down", Description: "Move the selection down", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar, Priority: 5},
		{ID: "cursor-up", Name: "Up", Description: "Move the selection up", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar, Priority: 5},
		{ID: "cursor-top", Name: "Top", Description: "Select the first row", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar},
		{ID: "cursor-bottom", Name: "Bottom", Description: "Select the last row", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar},
		{ID: "open", Name: "Open", Description: "Open the note or fold the notebook", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar, Priority: 1},
		{ID: "focus-editor", Name: "Editor", Description: "Focus the open note", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar, Priority: 2},
		{ID: "new-note", Name: "New", Description: "Create a note in the selected notebook", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar, Priority: 1},
		{ID: "new-notebook", Name: "Notebook", Description: "Create a notebook", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar, Priority: 3},
		{ID: "rename", Name: "Rename", Description: "Rename the selected note or notebook", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar, Priority: 2},
		{ID: "delete", Name: "Delete", Description: "Delete the selected note or notebook", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar, Priority: 2},
		{ID: "move-down", Name: "Move down", Description: "Move the selected item down", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar},
		{ID: "move-up", Name: "Move up", Description: "Move the selected item up", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar},
		{ID: "move-note", Name: "Move to", Description: "Move the selected note to another notebook", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar},
		{ID: "yank-note", Name: "Copy", Description: "Copy the note content to the clipboard", Category: plugin.CategoryNotes, Context: keymap.ContextSidebar},
		{ID: "show-tasks", Name: "Tasks", Description: "Show pending tasks across notes", Category: plugin.CategoryView, Context: keymap.ContextSidebar, Priority: 3},
		{ID: "quick-open", Name: "Find", Description: "Quick open a note by title", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar, Priority: 2},
		{ID: "quit", Name: "Quit", Description: "Quit twonote", Category: plugin.CategorySystem, Context: keymap.ContextSidebar, Priority: 9},

		// editor
		{ID: "focus-sidebar", Name: "Sidebar", Description: "Return to the sidebar", Category: plugin.CategoryNavigation, Context: keymap.ContextEditor, Priority: 1},
		{ID: "toggle-bullet", Name: "Bullet", Description: "Toggle bullets on the selected lines", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 2},
		{ID: "toggle-numbering", Name: "Number", Description: "Toggle numbering on the selected lines", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 3},
		{ID: "toggle-strikethrough", Name: "Strike", Description: "Toggle strikethrough on the selection", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 4},
		{ID: "toggle-bold", Name: "Bold", Description: "Toggle bold on the selection", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 4},
		{ID: "toggle-star", Name: "Star", Description: "Toggle the star on the current line", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 3},
		{ID: "toggle-task", Name: "Task", Description: "Cycle the task checkbox on the current line", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 2},
		{ID: "indent", Name: "Indent", Description: "Indent the selected lines", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 5},
		{ID: "deindent", Name: "Outdent", Description: "Outdent the selected lines", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 5},
		{ID: "move-line-up", Name: "Line up", Description: "Move the current line up", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 6},
		{ID: "move-line-down", Name: "Line down", Description: "Move the current line down", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 6},
		{ID: "set-mark", Name: "Mark", Description: "Set or clear the selection mark", Category: plugin.CategoryFormat, Context: keymap.ContextEditor, Priority: 5},
		{ID: "toggle-columns", Name: "Columns", Description: "Switch between one and two columns", Category: plugin.CategoryView, Context: keymap.ContextEditor, Priority: 7},
		{ID: "focus-left-column", Name: "Left column", Description: "Focus the left column", Category: plugin.CategoryNavigation, Context: keymap.ContextEditor},
		{ID: "focus-right-column", Name: "Right column", Description: "Focus the right column", Category: plugin.CategoryNavigation, Context: keymap.ContextEditor},

		// preview
		{ID: "focus-sidebar", Name: "Sidebar", Description: "Return to the sidebar", Category: plugin.CategoryNavigation, Context: keymap.ContextPreview, Priority: 1},
		{ID: "scroll-down", Name: "Down", Description: "Scroll the preview down", Category: plugin.CategoryNavigation, Context: keymap.ContextPreview, Priority: 2},
		{ID: "scroll-up", Name: "Up", Description: "Scroll the preview up", Category: plugin.CategoryNavigation, Context: keymap.ContextPreview, Priority: 2},
		{ID: "focus-editor", Name: "Edit", Description: "Close the preview and edit", Category: plugin.CategoryNavigation, Context: keymap.ContextPreview, Priority: 1},

		// tasks
		{ID: "cursor-down", Name: "Down", Description: "Select the next task", Category: plugin.CategoryNavigation, Context: keymap.ContextTasks, Priority: 4},
		{ID: "cursor-up", Name: "Up", Description: "Select the previous task", Category: plugin.CategoryNavigation, Context: keymap.ContextTasks, Priority: 4},
		{ID: "open", Name: "Go to", Description: "Open the note at the task", Category: plugin.CategoryNavigation, Context: keymap.ContextTasks, Priority: 1},
		{ID: "complete-task", Name: "Done", Description: "Mark the selected task done", Category: plugin.CategoryNotes, Context: keymap.ContextTasks, Priority: 1},
		{ID: "show-tasks", Name: "Close", Description: "Close the task list", Category: plugin.CategoryView, Context: keymap.ContextTasks, Priority: 2},
	}
}

// RunCommand runs the command id resolved in context.
func (p *Plugin) RunCommand(id, context string) tea.Cmd {
	switch context {
	case keymap.ContextSidebar:
		if cmd, ok := p.runSidebarCommand(id); ok {
			return cmd
		}
	case keymap.ContextEditor:
		var focus tea.Cmd
		if p.note != nil && p.FocusContext() != keymap.ContextEditor {
			focus = p.editorFocus()
		}
		if cmd, ok := p.runEditorCommand(id); ok {
			return tea.Batch(focus, cmd)
		}
	case keymap.ContextPreview:
		if cmd, ok := p.runPreviewCommand(id); ok {
			return cmd
		}
	case keymap.ContextTasks:
		if cmd, ok := p.runTasksCommand(id); ok {
			return cmd
		}
	}
	if cmd, ok := p.runGlobalCommand(id); ok {
		return cmd
	}

	// An editor command run while another pane has focus applies to the
	// open note.
	if p.note == nil {
		return nil
	}
	focus := p.editorFocus()
	if cmd, ok := p.runEditorCommand(id); ok {
		return tea.Batch(focus, cmd)
	}
	p.logger().Debug("notes: unknown command", "id", id, "context", context)
	return focus
}

// editorFocus leaves the sidebar, task list or full preview for the editor.
func (p *Plugin) editorFocus() tea.Cmd {
	if p.previewMode == state.PreviewOnly {
		p.previewMode = state.PreviewOff
		p.updateTextareaDimensions()
	}
	return p.focusEditor()
}

func (p *Plugin) runGlobalCommand(id string) (tea.Cmd, bool) {
	switch id {
	case "save-note":
		return p.saveNow(), true
	case "new-note":
		return p.createNote(), true
	case "new-notebook":
		return p.promptNewNotebook(), true
	case "rename-note":
		return p.promptRenameNote(), true
	case "rename-notebook":
		return p.promptRenameNotebook(), true
	case "delete-note":
		return p.confirmDeleteNote(), true
	case "delete-notebook":
		return p.confirmDeleteNotebook(), true
	case "next-note", "prev-note":
		delta := 1
		if id == "prev-note" {
			delta = -1
		}
		save := p.saveNote()
		if !p.stepNote(delta) {
			return save, true
		}
		return tea.Batch(save, p.focusEditor()), true
	case "close-note":
		if p.note == nil {
			return nil, true
		}
		save := p.saveNote()
		p.closeNote()
		p.active = paneSidebar
		return save, true
	case "toggle-preview":
		if p.note == nil {
			return msg.ShowToast("Open a note first", toastDuration), true
		}
		p.cyclePreview()
		if p.previewMode == state.PreviewOnly {
			p.activeTextarea().Blur()
			p.active = paneEditor
			return nil, true
		}
		return p.focusEditor(), true
	case "show-tasks":
		return p.toggleTasks(), true
	case "add-attachment":
		return p.promptAddAttachment(), true
	case "remove-attachment":
		return p.promptRemoveAttachment(), true
	case "yank-note":
		return p.yankNote(), true
	case "sidebar-wider":
		p.resizeSidebar(sidebarStep)
		return nil, true
	case "sidebar-narrower":
		p.resizeSidebar(-sidebarStep)
		return nil, true
	}
	return nil, false
}

func (p *Plugin) runSidebarCommand(id string) (tea.Cmd, bool) {
	switch id {
	case "cursor-down":
		p.moveCursor(1)
	case "cursor-up":
		p.moveCursor(-1)
	case "cursor-top":
		p.cursor = 0
	case "cursor-bottom":
		p.cursor = max(0, len(p.rows)-1)
	case "open":
		save := p.saveNote()
		if p.activateRow() {
			return tea.Batch(save, p.focusEditor()), true
		}
		return save, true
	case "focus-editor":
		if p.note == nil {
			return msg.ShowToast("No note open", toastDuration), true
		}
		return p.focusEditor(), true
	case "rename":
		return p.renameSelected(), true
	case "delete":
		return p.deleteSelected(), true
	case "move-down":
		return p.moveSelected(1), true
	case "move-up":
		return p.moveSelected(-1), true
	case "move-note":
		return p.promptMoveNote(), true
	case "quick-open":
		return func() tea.Msg { return msg.OpenPaletteMsg{QuickOpen: true} }, true
	case "quit":
		return func() tea.Msg { return msg.QuitMsg{} }, true
	default:
		return nil, false
	}
	return nil, true
}

func (p *Plugin) runEditorCommand(id string) (tea.Cmd, bool) {
	switch id {
	case "focus-sidebar":
		p.activeTextarea().Blur()
		p.mark = -1
		p.active = paneSidebar
		if p.note != nil {
			p.selectNote(p.note.ID)
		}
		return p.saveNote(), true
	case "toggle-bullet":
		return p.rangeTransform(formatting.ToggleBullet), true
	case "toggle-numbering":
		return p.rangeTransform(formatting.ToggleNumbering), true
	case "toggle-strikethrough":
		return p.rangeTransform(formatting.ToggleStrikethrough), true
	case "toggle-bold":
		return p.rangeTransform(formatting.ToggleBold), true
	case "indent":
		return p.rangeTransform(formatting.IndentLines), true
	case "deindent":
		return p.rangeTransform(formatting.DeindentLines), true
	case "toggle-star":
		return p.cursorTransform(formatting.ToggleStar), true
	case "toggle-task":
		return p.cursorTransform(formatting.ToggleTask), true
	case "move-line-up":
		return p.moveLine(formatting.Up), true
	case "move-line-down":
		return p.moveLine(formatting.Down), true
	case "set-mark":
		return p.toggleMark(), true
	case "toggle-columns":
		return p.toggleColumns(), true
	case "focus-left-column":
		return p.focusColumn(0), true
	case "focus-right-column":
		return p.focusColumn(1), true
	}
	return nil, false
}

func (p *Plugin) runPreviewCommand(id string) (tea.Cmd, bool) {
	switch id {
	case "focus-sidebar":
		p.active = paneSidebar
		return nil, true
	case "scroll-down":
		p.scrollPreview(1)
		return nil, true
	case "scroll-up":
		p.scrollPreview(-1)
		return nil, true
	case "focus-editor":
		p.previewMode = state.PreviewOff
		p.updateTextareaDimensions()
		return p.focusEditor(), true
	}
	return nil, false
}

func (p *Plugin) runTasksCommand(id string) (tea.Cmd, bool) {
	switch id {
	case "cursor-down":
		p.moveTaskCursor(1)
		return nil, true
	case "cursor-up":
		p.moveTaskCursor(-1)
		return nil, true
	case "open":
		return p.openTask(), true
	case "complete-task":
		return p.completeTask(), true
	}
	return nil, false
}

// yankNote copies the selected or open note to the system clipboard.
func (p *Plugin) yankNote() tea.Cmd {
	n := p.contextNote()
	if n == nil {
		return nil
	}
	content := n.Content
	if p.note != nil && p.note.ID == n.ID {
		content = p.content()
	}
	if err := clipboard.WriteAll(content); err != nil {
		return msg.ShowError("Copy failed", err)
	}
	return msg.ShowToast("Copied note content", toastDuration)
}
