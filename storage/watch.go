package storage

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch calls onChange whenever the file at path is written, created or
// renamed into place. The parent directory is watched because saves
// replace the file instead of writing it in place. Watch returns once the
// watcher is running; it stops when ctx is cancelled.
//
// onChange runs on the watcher goroutine, so callers that own a Store
// should hand the event back to their own loop instead of reloading here.
func Watch(ctx context.Context, path string, log zerolog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					log.Debug().Str("op", ev.Op.String()).Msg("commands file changed")
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("commands watcher error")
			}
		}
	}()
	return nil
}
