package workspace

import (
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/dhamidi/srcspan/project"
)

// Change is called by a Watcher for every new, modified or removed file.
type Change func(path string, removed bool)

// Watcher polls a directory tree for changed Python files.
type Watcher struct {
	root     string
	interval time.Duration
	exclude  []string
	onChange Change
	stopCh   chan struct{}
	modTimes map[string]time.Time
}

func NewWatcher(root string, interval time.Duration, exclude []string, onChange Change) *Watcher {
	return &Watcher{
		root:     root,
		interval: interval,
		exclude:  exclude,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		modTimes: make(map[string]time.Time),
	}
}

// Watch returns a watcher that keeps w up to date.
func (w *Workspace) Watch(interval time.Duration) *Watcher {
	return NewWatcher(w.rootDir, interval, w.exclude, func(path string, removed bool) {
		if removed {
			w.RemoveFile(path)
			return
		}
		if err := w.ScanFile(path); err != nil {
			log().Warningf("rescan %s: %s", path, err)
		}
	})
}

func (fw *Watcher) Start() {
	go fw.run()
}

func (fw *Watcher) Stop() {
	close(fw.stopCh)
}

func (fw *Watcher) run() {
	ticker := time.NewTicker(fw.interval)
	defer ticker.Stop()

	fw.Poll()

	for {
		select {
		case <-fw.stopCh:
			return
		case <-ticker.C:
			fw.Poll()
		}
	}
}

// Poll compares the tree with the previous poll and reports the
// differences. The first poll reports every file.
func (fw *Watcher) Poll() {
	current := make(map[string]bool)

	filepath.WalkDir(fw.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != fw.root && slices.Contains(fw.exclude, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !project.IsSource(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		current[path] = true
		lastMod, known := fw.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			fw.modTimes[path] = info.ModTime()
			fw.onChange(path, false)
		}
		return nil
	})

	for path := range fw.modTimes {
		if !current[path] {
			delete(fw.modTimes, path)
			fw.onChange(path, true)
		}
	}
}
