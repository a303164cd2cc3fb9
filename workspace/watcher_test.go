package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type event struct {
	name    string
	removed bool
}

func TestWatcherPoll(t *testing.T) {
	root := t.TempDir()
	var events []event
	fw := NewWatcher(root, time.Hour, []string{".venv"}, func(path string, removed bool) {
		events = append(events, event{filepath.Base(path), removed})
	})

	path := filepath.Join(root, "a.py")
	writeFile(t, path, "x = 1\n")
	writeFile(t, filepath.Join(root, ".venv", "site.py"), "y = 2\n")
	writeFile(t, filepath.Join(root, "README"), "z\n")

	fw.Poll()
	if len(events) != 1 || events[0] != (event{"a.py", false}) {
		t.Fatalf("first poll = %v, want a.py", events)
	}

	events = nil
	fw.Poll()
	if len(events) != 0 {
		t.Errorf("unchanged poll = %v, want nothing", events)
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	fw.Poll()
	if len(events) != 1 || events[0] != (event{"a.py", false}) {
		t.Errorf("poll after modification = %v, want a.py", events)
	}

	events = nil
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	fw.Poll()
	if len(events) != 1 || events[0] != (event{"a.py", true}) {
		t.Errorf("poll after removal = %v, want a.py removed", events)
	}
}

func TestWorkspaceWatch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.py")
	writeFile(t, path, "def f():\n    return 1\n")

	ws := New(root)
	fw := ws.Watch(time.Hour)
	fw.Poll()
	if doc := ws.GetFile(path); doc == nil || doc.Tree == nil {
		t.Fatalf("m.py not annotated after poll: %+v", doc)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	fw.Poll()
	if ws.GetFile(path) != nil {
		t.Errorf("m.py still present after removal")
	}
}
