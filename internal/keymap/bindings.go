package keymap

// Focus contexts.
const (
	ContextSidebar = "notes-sidebar"
	ContextEditor  = "notes-editor"
	ContextPreview = "notes-preview"
	ContextTasks   = "notes-tasks"
)

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "ctrl+c", Command: "quit", Context: "global"},
		{Key: "ctrl+q", Command: "quit", Context: "global"},
		{Key: "ctrl+p", Command: "toggle-palette", Context: "global"},
		{Key: "f1", Command: "toggle-help", Context: "global"},
		{Key: "ctrl+s", Command: "save-note", Context: "global"},
		{Key: "alt+n", Command: "new-note", Context: "global"},
		{Key: "alt+N", Command: "new-notebook", Context: "global"},
		{Key: "alt+r", Command: "rename-note", Context: "global"},
		{Key: "alt+R", Command: "rename-notebook", Context: "global"},
		{Key: "alt+d", Command: "delete-note", Context: "global"},
		{Key: "alt+D", Command: "delete-notebook", Context: "global"},
		{Key: "alt+]", Command: "next-note", Context: "global"},
		{Key: "alt+[", Command: "prev-note", Context: "global"},
		{Key: "alt+w", Command: "close-note", Context: "global"},
		{Key: "alt+p", Command: "toggle-preview", Context: "global"},
		{Key: "alt+t", Command: "show-tasks", Context: "global"},
		{Key: "alt+a", Command: "add-attachment", Context: "global"},
		{Key: "alt+y", Command: "yank-note", Context: "global"},
		{Key: "ctrl+h", Command: "toggle-footer", Context: "global"},
		{Key: "f2", Command: "cycle-theme", Context: "global"},

		// Sidebar (notebooks and notes)
		{Key: "j", Command: "cursor-down", Context: ContextSidebar},
		{Key: "down", Command: "cursor-down", Context: ContextSidebar},
		{Key: "k", Command: "cursor-up", Context: ContextSidebar},
		{Key: "up", Command: "cursor-up", Context: ContextSidebar},
		{Key: "g g", Command: "cursor-top", Context: ContextSidebar},
		{Key: "G", Command: "cursor-bottom", Context: ContextSidebar},
		{Key: "enter", Command: "open", Context: ContextSidebar},
		{Key: "tab", Command: "focus-editor", Context: ContextSidebar},
		{Key: "n", Command: "new-note", Context: ContextSidebar},
		{Key: "N", Command: "new-notebook", Context: ContextSidebar},
		{Key: "r", Command: "rename", Context: ContextSidebar},
		{Key: "d", Command: "delete", Context: ContextSidebar},
		{Key: "J", Command: "move-down", Context: ContextSidebar},
		{Key: "K", Command: "move-up", Context: ContextSidebar},
		{Key: "m", Command: "move-note", Context: ContextSidebar},
		{Key: "y", Command: "yank-note", Context: ContextSidebar},
		{Key: "t", Command: "show-tasks", Context: ContextSidebar},
		{Key: "/", Command: "quick-open", Context: ContextSidebar},
		{Key: "q", Command: "quit", Context: ContextSidebar},

		// Editor
		{Key: "esc", Command: "focus-sidebar", Context: ContextEditor},
		{Key: "ctrl+b", Command: "toggle-bullet", Context: ContextEditor},
		{Key: "alt+b", Command: "toggle-numbering", Context: ContextEditor},
		{Key: "alt+x", Command: "toggle-strikethrough", Context: ContextEditor},
		{Key: "ctrl+_", Command: "toggle-strikethrough", Context: ContextEditor},
		{Key: "alt+o", Command: "toggle-bold", Context: ContextEditor},
		{Key: "alt+1", Command: "toggle-star", Context: ContextEditor},
		{Key: "alt+2", Command: "toggle-task", Context: ContextEditor},
		{Key: "tab", Command: "indent", Context: ContextEditor},
		{Key: "shift+tab", Command: "deindent", Context: ContextEditor},
		{Key: "alt+up", Command: "move-line-up", Context: ContextEditor},
		{Key: "alt+down", Command: "move-line-down", Context: ContextEditor},
		{Key: "ctrl+@", Command: "set-mark", Context: ContextEditor},
		{Key: "alt+c", Command: "toggle-columns", Context: ContextEditor},
		{Key: "alt+left", Command: "focus-left-column", Context: ContextEditor},
		{Key: "alt+right", Command: "focus-right-column", Context: ContextEditor},

		// Preview
		{Key: "esc", Command: "focus-sidebar", Context: ContextPreview},
		{Key: "j", Command: "scroll-down", Context: ContextPreview},
		{Key: "down", Command: "scroll-down", Context: ContextPreview},
		{Key: "k", Command: "scroll-up", Context: ContextPreview},
		{Key: "up", Command: "scroll-up", Context: ContextPreview},
		{Key: "e", Command: "focus-editor", Context: ContextPreview},

		// Pending tasks list
		{Key: "j", Command: "cursor-down", Context: ContextTasks},
		{Key: "down", Command: "cursor-down", Context: ContextTasks},
		{Key: "k", Command: "cursor-up", Context: ContextTasks},
		{Key: "up", Command: "cursor-up", Context: ContextTasks},
		{Key: "enter", Command: "open", Context: ContextTasks},
		{Key: "x", Command: "complete-task", Context: ContextTasks},
		{Key: "esc", Command: "show-tasks", Context: ContextTasks},
	}
}
