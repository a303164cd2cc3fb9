// Package workspace keeps annotated Python documents for long-running
// front ends: a polling watcher, batch checking and a language server.
package workspace

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/srcspan/project"
	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/python/stdast"
	"github.com/dhamidi/srcspan/python/treesitter"
	"github.com/dhamidi/srcspan/span"
)

func log() commonlog.Logger {
	return commonlog.GetLogger("srcspan.workspace")
}

// Annotate parses src with the named dialect, "python" or "treesitter".
func Annotate(ctx context.Context, dialect, path, src string) (*span.Tree, error) {
	switch dialect {
	case "python", "":
		return stdast.Parse(src, parser.WithFile(path))
	case "treesitter":
		return treesitter.Parse(ctx, src, treesitter.WithFile(path))
	}
	return nil, fmt.Errorf("unknown dialect %q", dialect)
}

type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	dialect string
	exclude []string
	docs    map[string]*Document
}

// Document is the latest state of one file. Tree is nil when Err is set.
type Document struct {
	Path    string
	Content []byte
	Tree    *span.Tree
	Err     error
}

type Option func(*Workspace)

func WithDialect(name string) Option {
	return func(w *Workspace) {
		w.dialect = name
	}
}

// WithExclude skips directories with these base names in ScanAll.
func WithExclude(names []string) Option {
	return func(w *Workspace) {
		w.exclude = names
	}
}

func New(rootDir string, opts ...Option) *Workspace {
	w := &Workspace{
		rootDir: rootDir,
		dialect: "python",
		docs:    make(map[string]*Document),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) Exclude() []string {
	return w.exclude
}

// ScanAll annotates every Python file below the root.
func (w *Workspace) ScanAll() error {
	proj, err := project.LoadFrom(w.rootDir, w.exclude)
	if err != nil {
		return err
	}
	for _, path := range proj.Files {
		if err := w.ScanFile(path); err != nil {
			log().Warningf("scan %s: %s", path, err)
		}
	}
	log().Infof("scanned %d files in %d packages", len(proj.Files), len(proj.Packages))
	return nil
}

func (w *Workspace) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return w.UpdateFile(path, content)
}

// UpdateFile replaces the document at path. Parse and annotation errors
// are kept on the document, not returned.
func (w *Workspace) UpdateFile(path string, content []byte) error {
	tree, err := Annotate(context.Background(), w.dialect, path, string(content))
	if err != nil {
		log().Debugf("%s: %s", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs[path] = &Document{
		Path:    path,
		Content: content,
		Tree:    tree,
		Err:     err,
	}
	return nil
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.docs, path)
}

func (w *Workspace) GetFile(path string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[path]
}

// Files returns the paths of all documents, sorted.
func (w *Workspace) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.docs))
	for path := range w.docs {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}
