package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("got backend %q, want 'sqlite'", cfg.Storage.Backend)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("got driver %q, want the pure Go driver", cfg.Storage.Driver)
	}
	if cfg.Editor.AutosaveDelay != time.Second {
		t.Errorf("got autosave delay %v, want 1s", cfg.Editor.AutosaveDelay)
	}
	if cfg.Editor.IndentWidth != 4 {
		t.Errorf("got indent width %d, want 4", cfg.Editor.IndentWidth)
	}
	if !cfg.UI.ShowFooter {
		t.Error("footer should be shown by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.json")
	if err != nil {
		t.Errorf("should not error on missing file: %v", err)
	}
	if cfg == nil {
		t.Fatal("should return default config")
	}
	if strings.HasPrefix(cfg.Storage.Path, "~") {
		t.Errorf("default path should be expanded, got %q", cfg.Storage.Path)
	}
}

func TestLoadFrom_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{
		"storage": {
			"backend": "rest",
			"url": "http://localhost:3000/api",
			"timeout": "5s"
		},
		"editor": {
			"autosaveDelay": "250ms",
			"showLineNumbers": true
		},
		"keymap": {
			"overrides": {"ctrl+t": "toggle-task"}
		},
		"ui": {
			"showFooter": false
		}
	}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Storage.Backend != BackendREST || cfg.Storage.URL != "http://localhost:3000/api" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Timeout != 5*time.Second {
		t.Errorf("got timeout %v, want 5s", cfg.Storage.Timeout)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("unset driver should keep the default, got %q", cfg.Storage.Driver)
	}
	if cfg.Editor.AutosaveDelay != 250*time.Millisecond {
		t.Errorf("got autosave delay %v, want 250ms", cfg.Editor.AutosaveDelay)
	}
	if !cfg.Editor.ShowLineNumbers {
		t.Error("line numbers should be enabled")
	}
	if cfg.Editor.IndentWidth != 4 {
		t.Errorf("unset indent width should keep the default, got %d", cfg.Editor.IndentWidth)
	}
	if cfg.Keymap.Overrides["ctrl+t"] != "toggle-task" {
		t.Errorf("overrides = %v", cfg.Keymap.Overrides)
	}
	if cfg.UI.ShowFooter {
		t.Error("footer should be hidden")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("got theme %q, want default 'dark'", cfg.UI.Theme)
	}
}

func TestLoadFrom_InvalidDurationKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"editor": {"autosaveDelay": "soon"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Editor.AutosaveDelay != time.Second {
		t.Errorf("got %v, want default 1s", cfg.Editor.AutosaveDelay)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{invalid json}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("should error on invalid JSON")
	}
}

func TestLoadFrom_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unknown backend", `{"storage": {"backend": "s3"}}`, "storage.backend"},
		{"unknown driver", `{"storage": {"driver": "postgres"}}`, "storage.driver"},
		{"rest without url", `{"storage": {"backend": "rest"}}`, "storage.url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFrom(path)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("got %v, want validation error on %s", err, tt.field)
			}
		})
	}
}

func TestValidate_ResetsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Editor.AutosaveDelay = -time.Second
	cfg.Editor.IndentWidth = 0
	cfg.Storage.Timeout = 0
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.AutosaveDelay != time.Second || cfg.Editor.IndentWidth != 4 || cfg.Storage.Timeout != 15*time.Second {
		t.Errorf("got %+v %+v", cfg.Editor, cfg.Storage)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~user/x", "~user/x"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.expected {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
