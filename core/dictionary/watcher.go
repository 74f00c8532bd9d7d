package dictionary

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultDebounce is the interval to wait before reloading after a burst of
// file events. Editors typically emit several writes per save.
const DefaultDebounce = 200 * time.Millisecond

// ErrWatcherClosed indicates Start was called on a closed watcher.
var ErrWatcherClosed = errors.New("dictionary watcher is closed")

// WatcherConfig configures the dictionary source watcher.
type WatcherConfig struct {
	// Debounce is the quiet interval before a reload fires.
	Debounce time.Duration

	// ExcludePatterns are glob patterns for sibling files to ignore
	// (export artifacts, editor temp files).
	ExcludePatterns []string

	// Logger receives reload outcomes. Defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher reloads a Store when its backing file changes on disk. The reload
// runs the store's mutation callbacks, so search caches and indexes follow
// automatically.
type Watcher struct {
	store    *Store
	config   WatcherConfig
	watcher  *fsnotify.Watcher
	excludes []glob.Glob
	logger   *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a watcher for the store's backing file.
func NewWatcher(store *Store, config WatcherConfig) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	excludes := make([]glob.Glob, 0, len(config.ExcludePatterns))
	for _, pattern := range config.ExcludePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Join(errors.New("invalid exclude pattern"), err)
		}
		excludes = append(excludes, g)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		store:    store,
		config:   config,
		watcher:  fw,
		excludes: excludes,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It watches the containing directory because many
// editors replace files by rename, which drops a watch on the file itself.
func (w *Watcher) Start() error {
	select {
	case <-w.done:
		return ErrWatcherClosed
	default:
	}

	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	target := filepath.Clean(w.store.Path())

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || w.excluded(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dictionary watcher error", "error", err)
		}
	}
}

func (w *Watcher) excluded(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludes {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, func() {
		if err := w.store.Reload(); err != nil {
			w.logger.Warn("dictionary reload failed", "path", w.store.Path(), "error", err)
			return
		}
		w.logger.Info("dictionary reloaded", "path", w.store.Path())
	})
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
