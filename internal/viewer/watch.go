package viewer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/logger"
)

// DefaultReloadDelay is how long a file must stay quiet before a reload.
// Editors often write a file in several steps.
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher reports when a model file or a material library next to it
// changes on disk. Bursts of events are coalesced into one notification.
type Watcher struct {
	fs      *fsnotify.Watcher
	target  string
	delay   time.Duration
	changed chan struct{}
	stopped chan struct{}
}

// NewWatcher watches the directory containing path.
func NewWatcher(path string, delay time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fs:      fsw,
		target:  abs,
		delay:   delay,
		changed: make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changed delivers one value per settled burst of changes.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Path returns the watched model file.
func (w *Watcher) Path() string {
	return w.target
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.stopped
	return err
}

func (w *Watcher) loop() {
	defer close(w.stopped)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.String("path", w.target), zap.Error(err))

		case <-fire:
			fire = nil
			select {
			case w.changed <- struct{}{}:
			default:
			}
		}
	}
}

// relevant reports whether ev touches the model or a material library.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if name == w.target {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ".mtl")
}
