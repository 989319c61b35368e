package ml

import (
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher notices when artifact files change on disk after the bundle
// was loaded. It never reloads; a restart picks up new artifacts.
type ArtifactWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]string // path -> artifact name
	changed atomic.Bool
	logger  *zap.Logger
	done    chan struct{}
}

func NewArtifactWatcher(paths ArtifactPaths, logger *zap.Logger) (*ArtifactWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]string)
	dirs := make(map[string]bool)
	for name, path := range paths.Files() {
		clean := filepath.Clean(path)
		files[clean] = name
		dirs[filepath.Dir(clean)] = true
	}
	// Watch directories rather than files so atomic renames are seen.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	aw := &ArtifactWatcher{
		watcher: w,
		files:   files,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go aw.run()
	return aw, nil
}

func (aw *ArtifactWatcher) run() {
	defer close(aw.done)
	for {
		select {
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			name, tracked := aw.files[filepath.Clean(event.Name)]
			if !tracked || event.Op == fsnotify.Chmod {
				continue
			}
			aw.changed.Store(true)
			aw.logger.Warn("model artifact changed on disk; restart to load it",
				zap.String("artifact", name),
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			aw.logger.Error("artifact watcher error", zap.Error(err))
		}
	}
}

// Changed reports whether any artifact changed since startup.
func (aw *ArtifactWatcher) Changed() bool {
	if aw == nil {
		return false
	}
	return aw.changed.Load()
}

func (aw *ArtifactWatcher) Close() error {
	err := aw.watcher.Close()
	<-aw.done
	return err
}
