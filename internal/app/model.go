package app

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/twonote/internal/config"
	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/palette"
	"github.com/marcus/twonote/internal/plugin"
	"github.com/marcus/twonote/internal/ui"
)

// flushTimeout bounds how long quitting waits for pending saves.
const flushTimeout = 10 * time.Second

// ModalKind identifies an app-level modal with explicit priority ordering.
// Lower values = higher priority (checked first for rendering and input routing).
type ModalKind int

const (
	ModalNone    ModalKind = iota // No modal open
	ModalDialog                   // Confirm or prompt dialog (highest priority)
	ModalPalette                  // Command palette / quick open
	ModalHelp                     // Help overlay
)

// activeModal returns the highest-priority open modal.
func (m *Model) activeModal() ModalKind {
	switch {
	case m.dialog != nil:
		return ModalDialog
	case m.showPalette:
		return ModalPalette
	case m.showHelp:
		return ModalHelp
	default:
		return ModalNone
	}
}

// noteSource is implemented by plugins that can list and open notes for
// quick open.
type noteSource interface {
	Notes() []notebook.Note
	Notebooks() []notebook.Notebook
	OpenNoteByID(id string) tea.Cmd
}

// Options configures the application model.
type Options struct {
	Config     *config.Config
	ConfigPath string // watched for changes when set
	Version    string
	Backend    string // shown in the header
}

// Model is the root Bubble Tea model for twonote.
type Model struct {
	cfg  *config.Config
	opts Options

	// Plugin management
	registry     *plugin.Registry
	activePlugin int

	// Keymap
	keymap        *keymap.Registry
	activeContext string

	// UI state
	width, height int
	ready         bool
	showHelp      bool
	showFooter    bool
	showPalette   bool
	palette       palette.Model
	clock         time.Time

	// Dialog and the action run when it is accepted.
	dialog   *ui.Dialog
	onAccept func(value string) tea.Cmd

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool

	// Config reload
	reloads   <-chan config.ReloadEvent
	stopWatch context.CancelFunc
}

// New creates a new application model.
func New(reg *plugin.Registry, km *keymap.Registry, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	registerAppCommands(km)

	m := Model{
		cfg:           cfg,
		opts:          opts,
		registry:      reg,
		keymap:        km,
		activeContext: keymap.GlobalContext,
		showFooter:    cfg.UI.ShowFooter,
		palette:       palette.New(),
		clock:         time.Now(),
	}

	if opts.ConfigPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := config.Watch(ctx, opts.ConfigPath)
		if err != nil {
			cancel()
			m.logger().Warn("config watch disabled", "path", opts.ConfigPath, "error", err)
		} else {
			m.reloads = ch
			m.stopWatch = cancel
		}
	}
	if p := m.ActivePlugin(); p != nil {
		p.SetFocused(true)
	}
	m.updateContext()
	return m
}

// Init initializes the model and returns initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.registry.Start(),
		listenConfig(m.reloads),
	)
}

// ActivePlugin returns the focused plugin, or nil.
func (m Model) ActivePlugin() plugin.Plugin {
	plugins := m.registry.Plugins()
	if m.activePlugin < 0 || m.activePlugin >= len(plugins) {
		return nil
	}
	return plugins[m.activePlugin]
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(text string, duration time.Duration, isError bool) {
	if duration <= 0 {
		duration = 2 * time.Second
	}
	m.statusMsg = text
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = isError
}

// ClearToast clears an expired status message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

func (m *Model) logger() *slog.Logger {
	if ctx := m.registry.Context(); ctx != nil && ctx.Logger != nil {
		return ctx.Logger
	}
	return slog.Default()
}

// quit stops the plugins, which queue their unsaved edits, and exits once
// the autosave queue has drained.
func (m *Model) quit() tea.Cmd {
	m.registry.Stop()
	if m.stopWatch != nil {
		m.stopWatch()
	}
	ctx := m.registry.Context()
	logger := m.logger()
	return func() tea.Msg {
		if ctx != nil && ctx.Saver != nil {
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			defer cancel()
			if err := ctx.Saver.Flush(flushCtx); err != nil {
				logger.Error("flush on quit failed", "error", err)
			}
		}
		return tea.Quit()
	}
}
