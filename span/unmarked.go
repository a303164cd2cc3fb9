package span

import (
	"errors"
	"fmt"

	"github.com/dhamidi/srcspan/linenum"
	"github.com/dhamidi/srcspan/token"
)

// ErrNoExtent is returned for dialects whose trees do not record where
// nodes end.
var ErrNoExtent = errors.New("dialect records no node extents")

// Extent is implemented by dialects whose trees record the full range of
// a node, not just its anchor. Columns are counted in the dialect's
// Columns().
type Extent interface {
	Extent(n Node) (start, end token.Pos, ok bool)
}

// SupportsUnmarked reports whether the text of d's nodes can be found
// without annotating the tree.
func SupportsUnmarked(d Dialect) bool {
	_, ok := d.(Extent)
	return ok
}

// Unmarked locates the text of nodes from the ranges their tree records.
// It needs no tokens and no annotation pass.
type Unmarked struct {
	lines   *linenum.Index
	dialect Dialect
	extent  Extent
	root    Node
}

func NewUnmarked(text string, d Dialect, root Node) (*Unmarked, error) {
	ext, ok := d.(Extent)
	if !ok {
		return nil, fmt.Errorf("%s: %w", d.Name(), ErrNoExtent)
	}
	return &Unmarked{lines: linenum.New(text), dialect: d, extent: ext, root: root}, nil
}

// TextRange returns the byte offsets of the text of n. The root covers
// the whole text and nodes without a recorded range yield (0, 0).
//
// The range ends where the last statement inside n ends, so trailing
// semicolons and comments of a block are left out as they are by
// Tree.TextRange. When that statement starts on a later line than n, the
// range starts at the beginning of n's first line to keep its
// indentation.
func (u *Unmarked) TextRange(n Node) (int, int) {
	if n == u.root {
		return 0, len(u.lines.Text())
	}
	start, end, ok := u.extent.Extent(n)
	if !ok {
		return 0, 0
	}
	if last := u.lastStmt(n); last != n {
		lastStart, lastEnd, ok := u.extent.Extent(last)
		if ok {
			end = lastEnd
			if lastStart.Line != start.Line {
				return u.lines.LineStart(start.Line), u.offset(end)
			}
		}
	}
	return u.offset(start), u.offset(end)
}

// Text returns the text of n.
func (u *Unmarked) Text(n Node) string {
	start, end := u.TextRange(n)
	return u.lines.Text()[start:end]
}

func (u *Unmarked) offset(p token.Pos) int {
	return u.lines.LineToOffsetUnit(p.Line, p.Col, u.dialect.Columns())
}

// lastStmt descends through the last statement of n, and through clauses
// such as exception handlers that hold statements, to the innermost last
// statement. A node without statements is its own last statement.
func (u *Unmarked) lastStmt(n Node) Node {
	for {
		var next Node
		kids := u.dialect.Children(n)
		for i := len(kids) - 1; i >= 0; i-- {
			if u.holdsStmt(kids[i]) {
				next = kids[i]
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

func (u *Unmarked) holdsStmt(n Node) bool {
	if u.dialect.IsStmt(n) {
		return true
	}
	if u.dialect.IsExpr(n) || u.dialect.IsMarker(n) {
		return false
	}
	for _, c := range u.dialect.Children(n) {
		if u.holdsStmt(c) {
			return true
		}
	}
	return false
}
