package plugin

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/twonote/internal/autosave"
	"github.com/marcus/twonote/internal/config"
	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/store"
)

// Plugin defines the interface for the app's panes.
type Plugin interface {
	ID() string
	Name() string
	Init(ctx *Context) error
	Start() tea.Cmd
	Stop()
	Update(msg tea.Msg) (Plugin, tea.Cmd)
	View(width, height int) string
	IsFocused() bool
	SetFocused(bool)
	Commands() []Command
	FocusContext() string
}

// TextInputConsumer is an optional capability for plugins that need
// alphanumeric key input to be forwarded as typed text instead of being
// intercepted by app-level shortcuts.
type TextInputConsumer interface {
	ConsumesTextInput() bool
}

// CommandRunner is implemented by plugins whose commands are dispatched by
// ID from key bindings and the command palette. context is the keymap
// context the command was resolved in.
type CommandRunner interface {
	RunCommand(id, context string) tea.Cmd
}

// Category represents a logical grouping of commands for the command palette.
type Category string

const (
	CategoryNavigation Category = "Navigation"
	CategoryNotes      Category = "Notes"
	CategoryFormat     Category = "Format"
	CategoryView       Category = "View"
	CategorySystem     Category = "System"
)

// Command represents a keybinding command exposed by a plugin.
type Command struct {
	ID          string         // Unique identifier (e.g., "toggle-bullet")
	Name        string         // Short name for footer (e.g., "Bullet")
	Description string         // Full description for palette
	Category    Category       // Logical grouping for palette display
	Handler     func() tea.Cmd // Action to execute (optional)
	Context     string         // Activation context
	Priority    int            // Footer display priority: 1=highest, 0=default (treated as 99)
}

// Context is shared with every plugin on Init.
type Context struct {
	Store  store.Storage
	Saver  *autosave.Queue
	Config *config.Config
	Keymap *keymap.Registry
	Logger *slog.Logger

	// Epoch changes whenever Store is replaced, so results of requests made
	// against the previous store can be recognized and dropped.
	Epoch uint64
}

// EpochMessage is implemented by async messages that need staleness detection.
type EpochMessage interface {
	GetEpoch() uint64
}

// IsStale returns true if the message's epoch doesn't match the current context epoch.
//
//	if plugin.IsStale(p.ctx, msg) { return p, nil }
func IsStale(ctx *Context, msg EpochMessage) bool {
	return ctx != nil && msg.GetEpoch() != ctx.Epoch
}

// PluginFocusedMsg is sent to a plugin when it becomes the active plugin.
type PluginFocusedMsg struct{}

// StoreChangedMsg tells plugins the storage backend was replaced and their
// data should be reloaded.
type StoreChangedMsg struct{}

// ThemeChangedMsg tells plugins the styles were rebuilt for a new theme.
type ThemeChangedMsg struct{}

// Registry holds the registered plugins in display order.
type Registry struct {
	ctx     *Context
	plugins []Plugin
}

// NewRegistry creates a registry that initializes plugins with ctx.
func NewRegistry(ctx *Context) *Registry {
	return &Registry{ctx: ctx}
}

// Context returns the shared plugin context.
func (r *Registry) Context() *Context {
	return r.ctx
}

// Register initializes p and adds it. A plugin whose Init fails is logged
// and skipped.
func (r *Registry) Register(p Plugin) error {
	if err := p.Init(r.ctx); err != nil {
		if r.ctx != nil && r.ctx.Logger != nil {
			r.ctx.Logger.Warn("plugin init failed", "plugin", p.ID(), "error", err)
		}
		return err
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// Plugins returns the registered plugins. The slice is shared so callers
// can store updated plugin values in place.
func (r *Registry) Plugins() []Plugin {
	return r.plugins
}

// Start starts every plugin and batches their commands.
func (r *Registry) Start() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range r.plugins {
		if cmd := p.Start(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Stop stops every plugin.
func (r *Registry) Stop() {
	for _, p := range r.plugins {
		p.Stop()
	}
}
