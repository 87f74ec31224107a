// Package watch monitors the data directory for external edits to the
// workbook (another session, or a user opening it in Excel) and notifies
// the app so its cached merged view is not served stale.
package watch

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type Watcher struct {
	path     string // workbook file to watch
	onChange func()
}

func New(path string, onChange func()) *Watcher {
	return &Watcher{path: path, onChange: onChange}
}

func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if filepath.Base(evt.Name) != filepath.Base(w.path) {
					continue
				}
				log.Printf("watch: %s changed (%s)", w.path, evt.Op)
				w.onChange()
			case err := <-watcher.Errors:
				log.Printf("watch: error: %v", err)
			}
		}
	}()
	return watcher.Add(filepath.Dir(w.path))
}
