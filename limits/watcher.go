package limits

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a limit table in sync with a config file on disk.
// The active table is swapped atomically on each successful reload, so
// concurrent readers always see a complete table; a file that fails to parse
// leaves the previous table in place.
type Watcher struct {
	path    string
	current atomic.Pointer[Table]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch loads the limits file at path and starts watching it for changes.
// The caller must Close the watcher when done.
func Watch(path string) (*Watcher, error) {
	table, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create limits watcher: %w", err)
	}

	// Watch the directory; editors often replace the file rather than write it.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch limits dir: %w", err)
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		done:    make(chan struct{}),
	}
	w.current.Store(table)

	go w.run()
	return w, nil
}

// Table returns the currently active table.
func (w *Watcher) Table() *Table {
	return w.current.Load()
}

// Limit looks up a limit in the currently active table.
func (w *Watcher) Limit(provider, model string) int {
	return w.Table().Limit(provider, model)
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	base := filepath.Base(w.path)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			table, err := LoadFile(w.path)
			if err != nil {
				slog.Warn("limits reload failed, keeping previous table",
					slog.String("path", w.path),
					slog.Any("error", err))
				continue
			}
			w.current.Store(table)
			slog.Debug("limits reloaded", slog.String("path", w.path))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("limits watcher error", slog.Any("error", err))
		}
	}
}
