package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Unrelated files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"ui": {"theme": "light"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Err != nil {
			t.Fatalf("reload error: %v", ev.Err)
		}
		if ev.Config.UI.Theme != "light" {
			t.Errorf("got theme %q, want light", ev.Config.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(time.Second):
		t.Error("events channel should close after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	if _, err := Watch(context.Background(), "/nonexistent/dir/config.json"); err == nil {
		t.Error("watching a missing directory should fail")
	}
}
