package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestWatcher_Write(t *testing.T) {
	path := createTestFile(t, "mesh.obj")

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	// Several writes settle into one change.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("v 1 1 1\n"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	select {
	case got := <-w.Changes():
		if got != w.Path() {
			t.Errorf("expected %s, got %s", w.Path(), got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case got := <-w.Changes():
		t.Errorf("burst reported twice: %s", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_Replace(t *testing.T) {
	path := createTestFile(t, "mesh.obj")

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	tmp := filepath.Join(filepath.Dir(path), "mesh.obj.tmp")
	if err := os.WriteFile(tmp, []byte("v 2 2 2\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("replacement not reported")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	path := createTestFile(t, "mesh.obj")

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	other := filepath.Join(filepath.Dir(path), "other.obj")
	if err := os.WriteFile(other, []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case got := <-w.Changes():
		t.Errorf("unexpected change %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_Close(t *testing.T) {
	path := createTestFile(t, "mesh.obj")

	w, err := New(path, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if w.delay != DefaultDelay {
		t.Errorf("expected default delay, got %v", w.delay)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("changes channel should be closed")
	}

	if _, err := New(filepath.Join(t.TempDir(), "missing", "mesh.obj"), 0); err == nil {
		t.Error("expected error for missing directory")
	}
}
