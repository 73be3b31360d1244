// Package watch reports changes to a single file on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
)

// DefaultDelay is how long a file must be quiet before a change is reported.
const DefaultDelay = 150 * time.Millisecond

// Watcher reports when a file has been written or replaced. Bursts of events
// within the delay collapse into one change.
type Watcher struct {
	fs      *fsnotify.Watcher
	path    string
	delay   time.Duration
	changes chan string
	done    chan struct{}
}

// New watches path. The parent directory is watched so that editors which
// save by renaming a temporary file are still seen.
func New(path string, delay time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", abs, err)
	}

	w := &Watcher{
		fs:      fw,
		path:    abs,
		delay:   delay,
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}
	go w.loop()

	logger.Debug("watching file", zap.String("path", abs))
	return w, nil
}

// Changes delivers the watched path after each settled change. The channel
// is closed by Close.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.changes)

	var settle <-chan time.Time
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				settle = time.After(w.delay)
			}

		case <-settle:
			settle = nil
			select {
			case w.changes <- w.path:
			default: // a change is already pending
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.String("path", w.path), zap.Error(err))
		}
	}
}
