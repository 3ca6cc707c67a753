package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch re-imports path through q whenever the file is written or
// recreated, until ctx is done. Bursts of events within debounce collapse
// into one request. The file's directory is watched rather than the file so
// that editors replacing it by rename are seen.
func Watch(ctx context.Context, path string, q *Queue, debounce time.Duration) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	log := q.loader.log.With(zap.String("asset", path))
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			log.Debug("asset changed", zap.Stringer("op", e.Op))
			timer.Reset(debounce)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			q.loader.assets.Forget(abs)
			id, err := q.Request(path)
			if err != nil {
				return err
			}
			log.Info("reimport scheduled", zap.String("job", id))
		}
	}
}
