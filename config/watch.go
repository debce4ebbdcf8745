package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// A Watcher reloads a configuration file whenever it changes on disk.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch parses the file at path and calls apply with each successful
// reload, including the initial one. A reload that fails to parse is
// logged and skipped, so the previous configuration stays in effect.
// The parent directory is watched rather than the file itself, so
// atomic rename-style rewrites keep triggering reloads.
func Watch(path string, apply func(*Config)) (*Watcher, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	apply(c)

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w := &Watcher{fs: fs, done: make(chan struct{})}
	go w.run(path, apply)
	return w, nil
}

func (w *Watcher) run(path string, apply func(*Config)) {
	base := filepath.Base(path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			c, err := Load(path)
			if err != nil {
				slog.Warn("config reload failed", "path", path, "error", err)
				continue
			}
			slog.Info("configuration reloaded", "path", path)
			apply(c)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "path", path, "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
