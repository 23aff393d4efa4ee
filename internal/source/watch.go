package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a data directory and reports when a dataset CSV is
// replaced, so edits go live without a restart.
type Watcher struct {
	dir      string
	log      *zap.Logger
	onChange func(file string)
}

func NewWatcher(dir string, log *zap.Logger, onChange func(file string)) *Watcher {
	return &Watcher{dir: dir, log: log, onChange: onChange}
}

// Start begins watching until ctx is cancelled.
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
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					if strings.EqualFold(filepath.Ext(evt.Name), ".csv") {
						w.log.Info("dataset file changed", zap.String("file", evt.Name))
						w.onChange(filepath.Base(evt.Name))
					}
				}
			case err := <-watcher.Errors:
				w.log.Warn("watcher error", zap.Error(err))
			}
		}
	}()
	return watcher.Add(w.dir)
}
