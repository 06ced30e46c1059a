package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a configuration file and reloads it on change.
// An invalid file keeps the previous configuration in place.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onChange func(*Config)

	mu      sync.RWMutex
	current *Config
	close   chan struct{}
	once    sync.Once
}

// NewWatcher loads the file once and prepares a watcher for it.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	cfg, err := Load(absPath)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:    absPath,
		logger:  logger,
		current: cfg,
		close:   make(chan struct{}),
	}, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Watch starts monitoring the config file. onChange is called with each
// successfully reloaded configuration.
func (w *Watcher) Watch(onChange func(*Config)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = fw
	w.onChange = onChange

	go w.watchLoop()

	// Watch the directory: editors save atomically via rename, which drops
	// a watch on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.watcher.Close()
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.close:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Error("Config reload failed, keeping previous configuration", "path", w.path, "error", err)
				continue
			}

			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()

			w.logger.Info("Configuration reloaded", "path", w.path)
			if w.onChange != nil {
				w.onChange(cfg)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", "error", err)
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.close) })
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
