package viewer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

const testDelay = 50 * time.Millisecond

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path, testDelay)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, dir
}

func expectChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func expectQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changed():
		t.Fatal("unexpected change notification")
	case <-time.After(4 * testDelay):
	}
}

func TestWatcherCoalescesWrites(t *testing.T) {
	w, _ := newTestWatcher(t)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(w.Path(), []byte("v 1 1 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	expectChange(t, w)
	expectQuiet(t, w)
}

func TestWatcherMaterialLibrary(t *testing.T) {
	w, dir := newTestWatcher(t)

	if err := os.WriteFile(filepath.Join(dir, "model.mtl"), []byte("newmtl a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expectChange(t, w)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	w, dir := newTestWatcher(t)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	expectQuiet(t, w)
}

func TestWatcherRelevant(t *testing.T) {
	w := &Watcher{target: filepath.Join("/models", "ship.obj")}

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write target", fsnotify.Event{Name: "/models/ship.obj", Op: fsnotify.Write}, true},
		{"create target", fsnotify.Event{Name: "/models/ship.obj", Op: fsnotify.Create}, true},
		{"rename into place", fsnotify.Event{Name: "/models/ship.obj", Op: fsnotify.Rename}, true},
		{"chmod target", fsnotify.Event{Name: "/models/ship.obj", Op: fsnotify.Chmod}, false},
		{"remove target", fsnotify.Event{Name: "/models/ship.obj", Op: fsnotify.Remove}, false},
		{"material library", fsnotify.Event{Name: "/models/ship.MTL", Op: fsnotify.Write}, true},
		{"other model", fsnotify.Event{Name: "/models/boat.obj", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}
