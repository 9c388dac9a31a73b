package config

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads the config file into a Store when it changes.
//
// The parent directory is watched rather than the file itself, so editors
// that save by renaming a temporary file are picked up too.
type Watcher struct {
	loader *Loader
	store  *Store
	log    zerolog.Logger

	fsw  *fsnotify.Watcher
	name string

	mu       sync.Mutex
	closed   bool
	onReload func(Config)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger for reload results.
func WithWatchLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// OnReload registers a callback invoked after each successful reload.
func OnReload(fn func(Config)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher starts watching the loader's file.
func NewWatcher(loader *Loader, store *Store, opts ...WatcherOption) (*Watcher, error) {
	if loader.Path() == "" {
		return nil, errors.New("config watcher needs a file path")
	}

	abs, err := filepath.Abs(loader.Path())
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		loader: loader,
		store:  store,
		log:    zerolog.Nop(),
		fsw:    fsw,
		name:   abs,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if w.relevant(ev) {
				w.reload()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// relevant reports whether ev touches the watched file's content.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.name {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// reload loads the file and swaps the store. Read and parse failures keep
// the previous configuration; invalid values fall back to their defaults.
func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		if !errors.Is(err, ErrInvalidValue) {
			w.log.Warn().Err(err).Str("file", w.name).Msg("config reload failed, keeping previous settings")
			return
		}
		w.log.Warn().Err(err).Str("file", w.name).Msg("config reloaded with invalid values")
	}

	w.store.Set(cfg)
	w.log.Info().
		Str("file", w.name).
		Dur("duration", cfg.Duration).
		Int("background", cfg.Background).
		Int("foreground", cfg.Foreground).
		Msg("config reloaded")

	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
