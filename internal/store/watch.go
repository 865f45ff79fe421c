package store

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"fabric-desk/internal/apperr"
)

// Watch calls onChange with the full entry list each time the store file is
// created, written, renamed or removed, by this process or any other. The
// callback only fires when the entries actually differ from the last
// delivered snapshot. Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func([]Entry)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperr.IO("could not start file watcher", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and os.WriteFile may replace the file.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return apperr.IO("could not watch "+dir, err)
	}
	s.logger.Debug("watching store", zap.String("path", s.path))

	var last []Entry
	delivered := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != FileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			entries, err := s.List("")
			if err != nil {
				s.logger.Warn("could not reload store after change", zap.Error(err))
				continue
			}
			if delivered && slices.Equal(entries, last) {
				continue
			}
			last, delivered = entries, true
			onChange(entries)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("store watcher error", zap.Error(err))
		}
	}
}
