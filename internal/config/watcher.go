package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the bursts of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// ReloadEvent carries a freshly loaded config, or the error that prevented
// loading it.
type ReloadEvent struct {
	Config *Config
	Err    error
}

// Watch reloads the config file at path whenever it changes and sends the
// result on the returned channel. The channel is closed when ctx ends.
//
// The parent directory is watched rather than the file so that editors that
// save by renaming a temp file over it are still seen.
func Watch(ctx context.Context, path string) (<-chan ReloadEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config: %w", err)
	}

	events := make(chan ReloadEvent, 1)
	fire := make(chan struct{}, 1)
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		defer close(events)

		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(reloadDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})

			case <-fire:
				cfg, err := LoadFrom(path)
				ev := ReloadEvent{Config: cfg, Err: err}
				// Keep only the newest result if the reader is behind.
				select {
				case <-events:
				default:
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Log error but continue watching
			}
		}
	}()

	return events, nil
}
