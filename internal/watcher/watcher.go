// Package watcher observes the skills file on disk and drives reload +
// cache invalidation when it changes.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a single skills file and invokes a callback after
// a quiet period, coalescing editor write bursts into one reload.
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	path         string
	debounceTime time.Duration
	callback     func()

	timerMu  sync.Mutex
	debounce *time.Timer
	stopOnce sync.Once
	cancel   context.CancelFunc
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher for the given file.
// The parent directory is watched, not the file itself, so atomic
// replace-by-rename (the common editor save strategy) is still seen.
func NewFileWatcher(path string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher:      w,
		path:         filepath.Clean(path),
		debounceTime: 500 * time.Millisecond,
		doneCh:       make(chan struct{}),
	}, nil
}

// Start begins watching. callback fires after the debounce window each
// time the skills file is written, created, renamed, or removed.
func (fw *FileWatcher) Start(ctx context.Context, callback func()) {
	fw.callback = callback
	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.watch(ctx)
}

// Stop shuts the watcher down. Idempotent.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) watch(ctx context.Context) {
	defer close(fw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			fw.scheduleCallback()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// scheduleCallback resets the debounce timer.
func (fw *FileWatcher) scheduleCallback() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounce != nil {
		fw.debounce.Stop()
	}
	fw.debounce = time.AfterFunc(fw.debounceTime, fw.callback)
}
