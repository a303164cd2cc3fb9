package span

import (
	"github.com/dhamidi/srcspan/linenum"
	"github.com/dhamidi/srcspan/token"
)

// Node is a node of a tree the annotator does not own. Nodes must be
// comparable, typically pointers, since they key the annotation side table.
type Node any

// Dialect describes one family of trees to the annotator.
type Dialect interface {
	Name() string

	// Kind names the node's kind. Fixups are selected by it.
	Kind(n Node) string

	// Anchor returns the position the tree records for the node, if any.
	// Columns are counted in Columns().
	Anchor(n Node) (line, col int, ok bool)

	// Children returns the children in source order, markers included.
	Children(n Node) []Node

	// IsMarker reports nodes that cover no source text, such as load/store
	// context tags and operator symbols.
	IsMarker(n Node) bool

	IsStmt(n Node) bool
	IsExpr(n Node) bool

	Columns() linenum.Unit
	Fixups() *Fixups
}

// FirstFixup adjusts the first token computed for a node.
type FirstFixup func(t *Tree, n Node, first *token.Token) (*token.Token, error)

// LastFixup adjusts the last token computed for a node.
type LastFixup func(t *Tree, n Node, first, last *token.Token) (*token.Token, error)

// Fixups holds per-kind adjustments keyed by Dialect.Kind.
type Fixups struct {
	First map[string]FirstFixup
	Last  map[string]LastFixup
}

func (f *Fixups) first(kind string) FirstFixup {
	if f == nil {
		return nil
	}
	return f.First[kind]
}

func (f *Fixups) last(kind string) LastFixup {
	if f == nil {
		return nil
	}
	return f.Last[kind]
}
