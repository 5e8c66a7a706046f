package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSave_PreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	// A key Save does not manage, written by hand or by a newer version.
	initial := []byte(`{
  "templates": [{"name": "Daily", "body": "[ ] "}],
  "customKey": "should survive",
  "ui": {"theme": "light"}
}`)
	if err := os.WriteFile(path, initial, 0644); err != nil {
		t.Fatal(err)
	}

	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	cfg := Default()
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal saved config: %v", err)
	}

	if _, ok := raw["templates"]; !ok {
		t.Error("Save() deleted 'templates' key from config.json")
	}
	if string(raw["customKey"]) != `"should survive"` {
		t.Errorf("customKey = %s", raw["customKey"])
	}
	for _, key := range []string{"storage", "editor", "keymap", "ui"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Save() did not write %q", key)
		}
	}

	var ui UIConfig
	if err := json.Unmarshal(raw["ui"], &ui); err != nil {
		t.Fatal(err)
	}
	if ui.Theme != "dark" {
		t.Errorf("managed keys should be overwritten, got theme %q", ui.Theme)
	}
}

func TestSave_WorksWithNoExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	if err := Save(Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Storage.Driver = "sqlite3"
	cfg.Storage.Path = "/tmp/notes.db"
	cfg.Editor.AutosaveDelay = 3 * time.Second
	cfg.Editor.ShowLineNumbers = true
	cfg.Keymap.Overrides["alt+t"] = "toggle-task"
	cfg.UI.ShowFooter = false

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if got.Storage.Driver != "sqlite3" || got.Storage.Path != "/tmp/notes.db" {
		t.Errorf("storage = %+v", got.Storage)
	}
	if got.Editor.AutosaveDelay != 3*time.Second || !got.Editor.ShowLineNumbers {
		t.Errorf("editor = %+v", got.Editor)
	}
	if got.Keymap.Overrides["alt+t"] != "toggle-task" {
		t.Errorf("overrides = %v", got.Keymap.Overrides)
	}
	if got.UI.ShowFooter {
		t.Error("showFooter=false should survive a round trip")
	}
}

func TestSaveKeyOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	if err := SaveKeyOverride("ctrl+t", "toggle-task"); err != nil {
		t.Fatalf("SaveKeyOverride: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Keymap.Overrides["ctrl+t"] != "toggle-task" {
		t.Errorf("overrides = %v", cfg.Keymap.Overrides)
	}

	if err := SaveKeyOverride("ctrl+t", ""); err != nil {
		t.Fatal(err)
	}
	cfg, _ = Load()
	if _, ok := cfg.Keymap.Overrides["ctrl+t"]; ok {
		t.Error("empty command should remove the override")
	}
}
