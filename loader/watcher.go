package loader

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	cfgpred "github.com/cfgpred/cfgpred-go"
)

// ReloadFunc receives the freshly loaded flag environment after the watched
// file changes.
type ReloadFunc func(env cfgpred.FlagEnv)

// WatcherConfig configures a flags file watcher.
type WatcherConfig struct {
	Path     string        `yaml:"path" json:"path"`
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// Watcher monitors one flags file and delivers reloaded environments to a
// callback. Editors often replace files instead of writing in place, so the
// watch is placed on the parent directory and events are filtered by name.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   ReloadFunc

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the given flags file. The file must exist
// and parse at construction time; the initial environment is delivered
// synchronously before Start.
func NewWatcher(config WatcherConfig, reload ReloadFunc) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("flags file path is required")
	}
	if reload == nil {
		return nil, fmt.Errorf("reload callback is required")
	}
	if config.Debounce == 0 {
		config.Debounce = 250 * time.Millisecond
	}

	if _, err := os.Stat(config.Path); err != nil {
		return nil, fmt.Errorf("flags file not accessible: %w", err)
	}

	env, err := LoadFile(config.Path)
	if err != nil {
		return nil, err
	}
	reload(env)

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     config.Path,
		debounce: config.Debounce,
		reload:   reload,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching in the background.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	w.watcher = watcher

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	go w.watch()

	log.Printf("Flags watcher started for %s", w.path)
	return nil
}

// Stop cancels the watch loop and closes the underlying watcher.
func (w *Watcher) Stop() error {
	w.cancel()
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			return fmt.Errorf("closing file watcher: %w", err)
		}
	}
	return nil
}

func (w *Watcher) watch() {
	var timer *time.Timer
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce bursts of events into one reload.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reloadFile)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Flags watcher error: %v", err)
		}
	}
}

func (w *Watcher) reloadFile() {
	env, err := LoadFile(w.path)
	if err != nil {
		log.Printf("Flags reload failed for %s: %v", w.path, err)
		return
	}
	w.reload(env)
}
