package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a configuration file for changes and triggers
// reloads, debounced to prevent reload storms from editors that write in
// multiple events. The typical use is applying retention changes to a
// running store:
//
//	watcher, _ := config.NewFileWatcher(path, nil)
//	go watcher.Watch(ctx, func(cfg *config.Config) error {
//	    store.Sweeper().UpdateConfig(*cfg.EngineConfig().Retention)
//	    return nil
//	})
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	debounce time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewFileWatcher creates a watcher for the configuration file at path.
func NewFileWatcher(path string, logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default().With("component", "config.watcher")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory: editors often replace the file, which would
	// drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(path), err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger,
		path:     path,
		debounce: 100 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, reloading the configuration and invoking onReload each
// time the file changes, until the context is cancelled or Stop is
// called. A failed reload is logged and skipped; the previous
// configuration stays in effect.
func (fw *FileWatcher) Watch(ctx context.Context, onReload func(*Config) error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
	}()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(event) {
				continue
			}
			// Debounce: restart the timer on every event burst
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(fw.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			fw.reload(onReload)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Error("watch error", "error", err)

		case <-ctx.Done():
			return ctx.Err()

		case <-fw.stopCh:
			return nil
		}
	}
}

// reload loads the changed file and hands it to the callback.
func (fw *FileWatcher) reload(onReload func(*Config) error) {
	cfg, err := LoadConfigWithEnvOverrides(fw.path)
	if err != nil {
		fw.logger.Error("configuration reload failed, keeping previous configuration",
			"path", fw.path,
			"error", err,
		)
		return
	}

	if err := onReload(cfg); err != nil {
		fw.logger.Error("configuration reload callback failed", "error", err)
		return
	}

	fw.logger.Info("configuration reloaded", "path", fw.path)
}

// relevant reports whether the event concerns the watched file.
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(fw.path) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}

// Stop stops the watcher and releases its resources.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	select {
	case <-fw.stopCh:
	default:
		close(fw.stopCh)
	}

	return fw.watcher.Close()
}
