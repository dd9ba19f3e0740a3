package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads the catalog file whenever it changes on disk. Every reload
// produces a new immutable *Catalog; existing snapshots are never modified.
type Watcher struct {
	path         string
	config       WatcherConfig
	fsWatcher    *fsnotify.Watcher
	cancelFunc   context.CancelFunc
	done         chan struct{}
	runningMutex sync.Mutex
	running      bool
}

// WatcherConfig configures the catalog watcher
type WatcherConfig struct {
	// Debounce duration to collapse the bursts editors write
	DebounceDuration time.Duration

	// OnReload receives each successfully loaded snapshot
	OnReload func(*Catalog)

	// OnError receives load and watch errors
	OnError func(error)

	Logger zerolog.Logger
}

// DefaultWatcherConfig returns sensible defaults for the watcher
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		DebounceDuration: 300 * time.Millisecond,
		Logger:           zerolog.Nop(),
	}
}

// NewWatcher creates a watcher for the catalog file at path
func NewWatcher(path string, config WatcherConfig) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	if config.DebounceDuration <= 0 {
		config.DebounceDuration = DefaultWatcherConfig().DebounceDuration
	}

	return &Watcher{
		path:      abs,
		config:    config,
		fsWatcher: fsWatcher,
	}, nil
}

// Start begins watching. The parent directory is watched so that editors
// replacing the file by rename are still observed.
func (w *Watcher) Start(ctx context.Context) error {
	w.runningMutex.Lock()
	defer w.runningMutex.Unlock()

	if w.running {
		return fmt.Errorf("watcher is already running")
	}

	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.watch(watchCtx)

	w.config.Logger.Debug().Str("path", w.path).Msg("watching catalog")
	return nil
}

// Stop stops the watcher and waits for the event loop to exit
func (w *Watcher) Stop() error {
	w.runningMutex.Lock()
	defer w.runningMutex.Unlock()

	if !w.running {
		return nil
	}

	w.cancelFunc()
	err := w.fsWatcher.Close()
	<-w.done
	w.running = false

	return err
}

// Wait blocks until ctx is done, then stops the watcher.
func (w *Watcher) Wait(ctx context.Context) error {
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var timerChan <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isCatalogEvent(event) {
				continue
			}

			// Start or reset debounce timer
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.config.DebounceDuration)
			timerChan = timer.C

		case <-timerChan:
			timerChan = nil
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.reportError(fmt.Errorf("watcher error: %w", err))

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isCatalogEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (w *Watcher) reload() {
	cat, err := LoadFile(w.path)
	if err != nil {
		w.reportError(fmt.Errorf("failed to reload catalog: %w", err))
		return
	}

	w.config.Logger.Info().Int("products", cat.Len()).Msg("catalog reloaded")
	if w.config.OnReload != nil {
		w.config.OnReload(cat)
	}
}

func (w *Watcher) reportError(err error) {
	w.config.Logger.Warn().Err(err).Msg("catalog watcher")
	if w.config.OnError != nil {
		w.config.OnError(err)
	}
}
