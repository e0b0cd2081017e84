package dashboard

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch invalidates cached tables whenever the output tree changes, so a
// re-parse shows up in the dashboard without a restart. It blocks until
// ctx is done or the watcher fails.
func Watch(ctx context.Context, store *Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(store.Root()); err != nil {
		return fmt.Errorf("watching %s: %w", store.Root(), err)
	}
	runs, err := store.Runs()
	if err != nil {
		return err
	}
	for _, run := range runs {
		if err := watcher.Add(filepath.Join(store.Root(), run)); err != nil {
			logrus.Warnf("watching run %s: %v", run, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				// a new run directory needs its own watch; Add on a plain
				// file is harmless
				_ = watcher.Add(ev.Name)
			}
			if run := runOf(store.Root(), ev.Name); run != "" {
				store.Invalidate(run)
			} else {
				store.InvalidateAll()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("watch error: %v", err)
		}
	}
}

// runOf maps a changed path to the run (first path element under root) it
// belongs to, or "" if it is not under root.
func runOf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) == 0 || parts[0] == "." {
		return ""
	}
	return parts[0]
}
