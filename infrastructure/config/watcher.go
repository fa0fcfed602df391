package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// Watcher reloads the config file when it changes and notifies callbacks
// with the new configuration. Environment variables are re-read too; flags
// are not.
type Watcher struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
	debounce  time.Duration
}

// NewWatcher starts watching initial.Path. It returns an error if the config
// was not loaded from a file.
func NewWatcher(initial *Config, logger *zap.Logger) (*Watcher, error) {
	return newWatcher(initial, logger, debounceDelay)
}

func newWatcher(initial *Config, logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	if initial.Path == "" {
		return nil, fmt.Errorf("no config file to watch")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors replace files on save, so watch the directory.
	if err := fsWatcher.Add(filepath.Dir(initial.Path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", initial.Path, err)
	}

	w := &Watcher{
		config:   initial,
		logger:   logger,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		debounce: debounce,
	}
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled", zap.String("file", initial.Path))
	return w, nil
}

// OnChange registers a callback run after every successful reload
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Current returns the most recently loaded configuration
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop ends the watch loop
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) watchLoop() {
	defer w.watcher.Close()

	target := filepath.Clean(w.Current().Path)
	var timer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	next, err := Load(w.Current().Path, nil)
	if err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}
	if err := next.Validate(); err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.config
	w.config = next
	callbacks := append([]func(*Config)(nil), w.callbacks...)
	w.mu.Unlock()

	if old.Log.Level != next.Log.Level {
		w.logger.Info("Log level changed",
			zap.String("from", old.Log.Level),
			zap.String("to", next.Log.Level),
		)
	}

	for _, cb := range callbacks {
		cb(next)
	}
}
