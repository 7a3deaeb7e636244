package vocab

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the vocabulary file when it changes on disk. The callback
// receives the freshly compiled vocabulary; callers swap it in between
// redaction runs, never during one.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewWatcher starts watching the vocabulary file's directory. Watching the
// directory rather than the file survives editors that replace on save.
func NewWatcher(path string, logger *zap.Logger, callback func(*Vocabulary)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch vocabulary directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		logger:  logger,
	}

	go w.run(callback)

	logger.Info("Vocabulary watcher started", zap.String("path", path))
	return w, nil
}

func (w *Watcher) run(callback func(*Vocabulary)) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}

			v, err := LoadFile(w.path)
			if err != nil {
				// Keep serving the previous vocabulary on a bad edit.
				w.logger.Error("Vocabulary reload failed", zap.Error(err))
				continue
			}

			singles, compounds, patterns := v.Counts()
			w.logger.Info("Vocabulary reloaded",
				zap.String("version", v.Version()),
				zap.Int("single_terms", singles),
				zap.Int("compound_terms", compounds),
				zap.Int("identifier_patterns", patterns),
			)
			callback(v)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Vocabulary watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
