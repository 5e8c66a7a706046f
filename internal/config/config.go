package config

import "time"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendREST   = "rest"
)

// Config is the root configuration structure.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Editor  EditorConfig  `json:"editor"`
	Keymap  KeymapConfig  `json:"keymap"`
	UI      UIConfig      `json:"ui"`
}

// StorageConfig selects where notes are kept.
type StorageConfig struct {
	Backend string        `json:"backend"` // "sqlite" or "rest"
	Driver  string        `json:"driver"`  // "sqlite3" (cgo) or "sqlite" (pure Go)
	Path    string        `json:"path"`    // database file, supports ~ expansion
	URL     string        `json:"url"`     // base URL of the REST API
	Timeout time.Duration `json:"timeout"` // REST request timeout
}

// EditorConfig configures the note editor.
type EditorConfig struct {
	// AutosaveDelay is how long the editor waits after the last keystroke
	// before saving. Default: 1s.
	AutosaveDelay time.Duration `json:"autosaveDelay"`
	// IndentWidth only affects how tabs are displayed; indentation inserted
	// by the editor is always four spaces.
	IndentWidth     int  `json:"indentWidth"`
	ShowLineNumbers bool `json:"showLineNumbers"`
}

// KeymapConfig holds key binding overrides, key -> command ID.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter bool   `json:"showFooter"`
	Theme      string `json:"theme"` // "dark" or "light"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Driver:  "sqlite",
			Path:    "~/.local/share/twonote/notes.db",
			Timeout: 15 * time.Second,
		},
		Editor: EditorConfig{
			AutosaveDelay:   time.Second,
			IndentWidth:     4,
			ShowLineNumbers: false,
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter: true,
			Theme:      "dark",
		},
	}
}

// Validate checks the configuration for errors, resetting out-of-range
// values to their defaults.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendREST:
	default:
		return &ValidationError{Field: "storage.backend", Value: c.Storage.Backend}
	}
	switch c.Storage.Driver {
	case "sqlite", "sqlite3":
	default:
		return &ValidationError{Field: "storage.driver", Value: c.Storage.Driver}
	}
	if c.Storage.Backend == BackendREST && c.Storage.URL == "" {
		return &ValidationError{Field: "storage.url", Value: ""}
	}
	if c.Storage.Timeout <= 0 {
		c.Storage.Timeout = 15 * time.Second
	}
	if c.Editor.AutosaveDelay <= 0 {
		c.Editor.AutosaveDelay = time.Second
	}
	if c.Editor.IndentWidth <= 0 || c.Editor.IndentWidth > 8 {
		c.Editor.IndentWidth = 4
	}
	return nil
}

// ValidationError reports an invalid config value.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return "config: invalid " + e.Field + " " + `"` + e.Value + `"`
}
