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

const defaultDebounce = 150 * time.Millisecond

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger
	// OnReload receives every successfully reloaded configuration.
	OnReload func(*LoadResult)
}

// Watcher reloads the configuration when the config file or any of its
// includes change on disk. Invalid edits are logged and the previous
// configuration stays in effect.
type Watcher struct {
	cfg WatcherConfig

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
	fsw   *fsnotify.Watcher
}

// NewWatcher creates a watcher for path. files are the currently loaded
// files, typically LoadResult.Files.
func NewWatcher(cfg WatcherConfig, files []string) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		cfg:   cfg,
		files: map[string]struct{}{},
		dirs:  map[string]struct{}{},
		fsw:   fsw,
	}
	if err := w.track(append([]string{cfg.Path}, files...)); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// track watches the parent directory of every file so that editors which
// replace files by rename are still noticed.
func (w *Watcher) track(files []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	return nil
}

func (w *Watcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.cfg.Debounce, func() {
				if ctx.Err() == nil {
					w.reload()
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	res, err := LoadFromPath(w.cfg.Path)
	if err != nil {
		w.cfg.Logger.Warn("config reload failed; keeping previous config", "error", err)
		return
	}
	if err := w.track(res.Files); err != nil {
		w.cfg.Logger.Warn("failed to watch included config files", "error", err)
	}
	w.cfg.Logger.Info("config reloaded", "path", w.cfg.Path, "files", len(res.Files))
	if w.cfg.OnReload != nil {
		w.cfg.OnReload(res)
	}
}
