package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "backlog.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed state file: %v", err)
	}

	w, err := New(path, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(w.Stop)
	w.Start()
	return w, path
}

func waitForChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestNotifiesOnWrite(t *testing.T) {
	w, path := newWatcher(t)

	if err := os.WriteFile(path, []byte(`{"goals":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitForChange(t, w)
}

func TestNotifiesOnAtomicRename(t *testing.T) {
	w, path := newWatcher(t)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(`{"goals":[]}`), 0o644); err != nil {
		t.Fatalf("write tmp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
	waitForChange(t, w)
}

func TestIgnoresOtherFiles(t *testing.T) {
	w, path := newWatcher(t)

	other := filepath.Join(filepath.Dir(path), "unrelated.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-w.Changes():
		t.Fatal("notified for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

// A burst of writes within the debounce window coalesces to a single
// pending notification.
func TestCoalescesBursts(t *testing.T) {
	w, path := newWatcher(t)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`{"goals":[]}`), 0o644); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	waitForChange(t, w)

	// Let any straggler debounce fire, then confirm at most one more
	// notification is buffered in total.
	time.Sleep(3 * debounceWindow)
	select {
	case <-w.Changes():
	default:
	}
	select {
	case <-w.Changes():
		t.Fatal("more than two notifications for one burst")
	default:
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w, _ := newWatcher(t)
	w.Stop()
	w.Stop()
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent", "state.json"), nil); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}
