package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Storage saveStorageConfig `json:"storage"`
	Editor  saveEditorConfig  `json:"editor"`
	Keymap  KeymapConfig      `json:"keymap"`
	UI      UIConfig          `json:"ui"`
}

type saveStorageConfig struct {
	Backend string `json:"backend,omitempty"`
	Driver  string `json:"driver,omitempty"`
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

type saveEditorConfig struct {
	AutosaveDelay   string `json:"autosaveDelay,omitempty"`
	IndentWidth     int    `json:"indentWidth,omitempty"`
	ShowLineNumbers bool   `json:"showLineNumbers"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Storage: saveStorageConfig{
			Backend: cfg.Storage.Backend,
			Driver:  cfg.Storage.Driver,
			Path:    cfg.Storage.Path,
			URL:     cfg.Storage.URL,
			Timeout: cfg.Storage.Timeout.String(),
		},
		Editor: saveEditorConfig{
			AutosaveDelay:   cfg.Editor.AutosaveDelay.String(),
			IndentWidth:     cfg.Editor.IndentWidth,
			ShowLineNumbers: cfg.Editor.ShowLineNumbers,
		},
		Keymap: cfg.Keymap,
		UI:     cfg.UI,
	}
}

// Save writes the config to ~/.config/twonote/config.json. Top-level keys
// in the existing file that Config does not manage are kept.
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, keeping unknown top-level keys.
func SaveTo(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("save config: no config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	merged := make(map[string]json.RawMessage)
	if existing, err := os.ReadFile(path); err == nil {
		// An unreadable file is replaced rather than blocking the save.
		_ = json.Unmarshal(existing, &merged)
		if merged == nil {
			merged = make(map[string]json.RawMessage)
		}
	}

	managed, err := json.Marshal(toSaveConfig(cfg))
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(managed, &fields); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(theme string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.UI.Theme = theme
	return Save(cfg)
}

// SaveKeyOverride binds key to commandID in the user's overrides and saves.
// An empty commandID removes the override.
func SaveKeyOverride(key, commandID string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if commandID == "" {
		delete(cfg.Keymap.Overrides, key)
	} else {
		cfg.Keymap.Overrides[key] = commandID
	}
	return Save(cfg)
}
