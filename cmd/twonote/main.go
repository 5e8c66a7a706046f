package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/twonote/internal/app"
	"github.com/marcus/twonote/internal/autosave"
	"github.com/marcus/twonote/internal/config"
	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/plugin"
	"github.com/marcus/twonote/internal/plugins/notes"
	"github.com/marcus/twonote/internal/state"
	"github.com/marcus/twonote/internal/store"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "twonote",
	Short: "Plain-text notes with structural editing",
	Long: `twonote is a terminal note app. Notes live in notebooks, support one or
two columns, and are edited with list, task and star shortcuts.

Examples:
  twonote                          # open the editor
  twonote backup                   # write twonote-backup-YYYY-MM-DD.json
  twonote restore backup.json      # import a backup
  twonote log -n 20                # recent changes`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	RunE:              runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "twonote version %s\n", effectiveVersion(Version))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func openStore(cfg *config.Config) (store.Storage, error) {
	return store.Open(store.Config{
		Backend: cfg.Storage.Backend,
		Driver:  cfg.Storage.Driver,
		Path:    cfg.Storage.Path,
		URL:     cfg.Storage.URL,
		Timeout: cfg.Storage.Timeout,
	})
}

// newLogger writes to w at info level, or debug with --debug.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openLogFile opens the log written while the TUI owns the terminal.
func openLogFile() (*os.File, error) {
	dir := filepath.Dir(config.ConfigPath())
	if configPath != "" {
		dir = filepath.Dir(configPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "twonote.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOut := io.Discard
	if f, err := openLogFile(); err == nil {
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut)
	slog.SetDefault(logger)

	// State is optional; defaults are used when it cannot be read.
	if err := state.Init(); err != nil {
		logger.Warn("state load failed", "error", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	for key, cmdID := range cfg.Keymap.Overrides {
		km.SetUserOverride(key, cmdID)
	}

	pluginCtx := &plugin.Context{
		Store:  st,
		Saver:  autosave.New(st.UpdateNote, logger),
		Config: cfg,
		Keymap: km,
		Logger: logger,
	}
	registry := plugin.NewRegistry(pluginCtx)
	if err := registry.Register(notes.New()); err != nil {
		return fmt.Errorf("start notes: %w", err)
	}

	watchPath := configPath
	if watchPath == "" {
		watchPath = config.ConfigPath()
	}
	model := app.New(registry, km, app.Options{
		Config:     cfg,
		ConfigPath: watchPath,
		Version:    effectiveVersion(Version),
		Backend:    cfg.Storage.Backend,
	})
	logger.Info("starting", "backend", cfg.Storage.Backend, "version", effectiveVersion(Version))

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return "devel"
	}
	ver := "devel+" + revision
	if len(ver) > 20 {
		ver = ver[:20]
	}
	if dirty {
		ver += "+dirty"
	}
	return ver
}
