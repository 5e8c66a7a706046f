package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/twonote"
	configFile = "config.json"
)

// testConfigPath overrides ConfigPath in tests.
var testConfigPath string

// rawConfig is the JSON-unmarshaling intermediary.
type rawConfig struct {
	Storage rawStorageConfig `json:"storage"`
	Editor  rawEditorConfig  `json:"editor"`
	Keymap  KeymapConfig     `json:"keymap"`
	UI      rawUIConfig      `json:"ui"`
}

type rawStorageConfig struct {
	Backend string `json:"backend"`
	Driver  string `json:"driver"`
	Path    string `json:"path"`
	URL     string `json:"url"`
	Timeout string `json:"timeout"`
}

type rawEditorConfig struct {
	AutosaveDelay   string `json:"autosaveDelay"`
	IndentWidth     *int   `json:"indentWidth"`
	ShowLineNumbers *bool  `json:"showLineNumbers"`
}

type rawUIConfig struct {
	ShowFooter *bool  `json:"showFooter"`
	Theme      string `json:"theme"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/twonote/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
		if path == "" {
			cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
			return cfg, nil // Return defaults on error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
			return cfg, nil // Return defaults if no config file
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	mergeConfig(cfg, &raw)
	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Storage
	if raw.Storage.Backend != "" {
		cfg.Storage.Backend = raw.Storage.Backend
	}
	if raw.Storage.Driver != "" {
		cfg.Storage.Driver = raw.Storage.Driver
	}
	if raw.Storage.Path != "" {
		cfg.Storage.Path = raw.Storage.Path
	}
	if raw.Storage.URL != "" {
		cfg.Storage.URL = raw.Storage.URL
	}
	if raw.Storage.Timeout != "" {
		cfg.Storage.Timeout = parseDuration("storage.timeout", raw.Storage.Timeout, cfg.Storage.Timeout)
	}

	// Editor
	if raw.Editor.AutosaveDelay != "" {
		cfg.Editor.AutosaveDelay = parseDuration("editor.autosaveDelay", raw.Editor.AutosaveDelay, cfg.Editor.AutosaveDelay)
	}
	if raw.Editor.IndentWidth != nil {
		cfg.Editor.IndentWidth = *raw.Editor.IndentWidth
	}
	if raw.Editor.ShowLineNumbers != nil {
		cfg.Editor.ShowLineNumbers = *raw.Editor.ShowLineNumbers
	}

	// Keymap
	for k, v := range raw.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.Theme != "" {
		cfg.UI.Theme = raw.UI.Theme
	}
}

func parseDuration(field, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("config: invalid duration", "field", field, "value", value, "error", err)
		return fallback
	}
	return d
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if testConfigPath != "" {
		return testConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// SetTestConfigPath points ConfigPath at path. For tests only.
func SetTestConfigPath(path string) {
	testConfigPath = path
}

// ResetTestConfigPath restores the default ConfigPath.
func ResetTestConfigPath() {
	testConfigPath = ""
}
