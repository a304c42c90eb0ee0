package poet

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadFunc rebuilds prompts after documents change
type ReloadFunc func(ctx context.Context) error

// Watcher calls a ReloadFunc when .md documents under a directory change.
// Bursts of events are debounced into one reload.
type Watcher struct {
	dir            string
	watcher        *fsnotify.Watcher
	reload         ReloadFunc
	logger         *zap.Logger
	mu             sync.Mutex
	reloadMu       sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// NewWatcher watches dir and every directory below it
func NewWatcher(dir string, reload ReloadFunc, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, NewSourceError(ErrMsgWatchFailed, dir, err)
	}

	w := &Watcher{
		dir:            dir,
		watcher:        fw,
		reload:         reload,
		logger:         logger,
		debouncePeriod: DefaultWatchDebounce,
	}
	if err := w.addTree(dir); err != nil {
		_ = fw.Close()
		return nil, NewSourceError(ErrMsgWatchFailed, dir, err)
	}
	return w, nil
}

// SetDebounce changes the quiet period before a reload
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debouncePeriod = d
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Run processes events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info(LogMsgWatchStart, zap.String(LogFieldPath, w.dir))
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(LogMsgWatchError, zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn(LogMsgWatchError, zap.Error(err))
			}
			// a moved-in directory may already hold documents
			w.scheduleReload(ctx)
			return
		}
	}
	if filepath.Ext(event.Name) != DocumentExtension {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug(LogMsgWatchEvent,
		zap.String(LogFieldPath, event.Name),
		zap.String(LogFieldEvent, event.Op.String()),
	)
	w.scheduleReload(ctx)
}

func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() { w.runReload(ctx) })
}

// runReload calls the ReloadFunc. Reloads never overlap, so a slow reload
// cannot finish after one that started later.
func (w *Watcher) runReload(ctx context.Context) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.reload(ctx); err != nil {
		w.logger.Error(LogMsgReloadFailed, zap.Error(err))
		return
	}
	w.logger.Info(LogMsgReloaded, zap.String(LogFieldPath, w.dir))
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}
