package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 150 * time.Millisecond

// watchFile runs fn once, then again after every change to path, until ctx
// is done. The parent directory is watched so files replaced by rename
// (as most editors save) keep being tracked. Errors from fn are reported
// to onError and do not stop the watch.
func watchFile(ctx context.Context, path string, logger *log.Logger, fn func() error, onError func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	if err := fn(); err != nil {
		onError(err)
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debug("snapshot changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-timer.C:
			if err := fn(); err != nil {
				onError(err)
			}
		}
	}
}
