package span

import (
	"fmt"
	"iter"

	"github.com/dhamidi/srcspan/token"
)

type mark struct {
	first int
	last  int
}

// Tree is the result of Annotate: a side table from the nodes of a tree to
// their token boundaries. It is read-only.
type Tree struct {
	code        *Code
	dialect     Dialect
	root        Node
	marks       map[Node]*mark
	children    map[Node][]Node
	order       []Node
	unsupported []Unsupported
	scanAll     bool
}

func (t *Tree) Root() Node {
	return t.root
}

func (t *Tree) Code() *Code {
	return t.code
}

func (t *Tree) Dialect() Dialect {
	return t.dialect
}

// Marked reports whether n received token boundaries. Markers never do.
func (t *Tree) Marked(n Node) bool {
	m, ok := t.marks[n]
	return ok && m.last >= 0
}

// FirstToken returns nil for nodes without a first token.
func (t *Tree) FirstToken(n Node) *token.Token {
	m, ok := t.marks[n]
	if !ok {
		return nil
	}
	return t.code.Token(m.first)
}

// LastToken returns nil for nodes without a last token, including, while a
// fixup runs, the node being fixed.
func (t *Tree) LastToken(n Node) *token.Token {
	m, ok := t.marks[n]
	if !ok || m.last < 0 {
		return nil
	}
	return t.code.Token(m.last)
}

// Children returns the children of n that cover source text.
func (t *Tree) Children(n Node) []Node {
	return t.childrenOf(n)
}

// Nodes returns every annotated node in pre-order.
func (t *Tree) Nodes() []Node {
	return t.order
}

func (t *Tree) Unsupported() []Unsupported {
	return t.unsupported
}

// Walk calls fn for every annotated node in pre-order with its depth below
// the root. Returning false skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	type item struct {
		node  Node
		depth int
	}
	stack := []item{{t.root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.depth) {
			continue
		}
		kids := t.childrenOf(it.node)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, item{kids[i], it.depth + 1})
		}
	}
}

// Tokens yields the tokens of n.
func (t *Tree) Tokens(n Node, includeNonCoding bool) iter.Seq[*token.Token] {
	if !t.Marked(n) {
		return func(func(*token.Token) bool) {}
	}
	return t.code.TokenRange(t.FirstToken(n), t.LastToken(n), includeNonCoding)
}

// TextRange returns the byte offsets of the source text of n. A node that
// spans several logical lines starts at the beginning of its first line,
// so that its text keeps its indentation. Unmarked nodes yield (0, 0).
func (t *Tree) TextRange(n Node) (int, int) {
	if !t.Marked(n) {
		return 0, 0
	}
	first, last := t.FirstToken(n), t.LastToken(n)
	start := first.StartOffset
	if t.code.hasNewline(first.Index, last.Index) {
		start = t.code.lines.LineStart(first.Start.Line)
	}
	return start, last.EndOffset
}

// Text returns the source text of n.
func (t *Tree) Text(n Node) string {
	start, end := t.TextRange(n)
	return t.code.text[start:end]
}

// ParsableText returns the text of n in a form that parses on its own: an
// expression continued over several lines without enclosing brackets is
// wrapped in parentheses.
func (t *Tree) ParsableText(n Node) string {
	text := t.Text(n)
	if !t.Marked(n) || !t.dialect.IsExpr(n) {
		return text
	}
	first, last := t.FirstToken(n), t.LastToken(n)
	if !t.code.hasNL(first.Index, last.Index) {
		return text
	}
	if token.IsOpener(first) && t.code.Brackets().Match(first.Index) == last.Index {
		return text
	}
	return "(" + text + ")"
}

// NodesAt returns the nodes whose text contains offset, outermost first.
func (t *Tree) NodesAt(offset int) []Node {
	var chain []Node
	n := t.root
	for n != nil {
		start, end := t.TextRange(n)
		if offset < start || offset >= end {
			break
		}
		chain = append(chain, n)
		var next Node
		for _, c := range t.childrenOf(n) {
			if cs, ce := t.TextRange(c); cs <= offset && offset < ce {
				next = c
				break
			}
		}
		n = next
	}
	return chain
}

// Check verifies that every node's range is well formed and contains the
// ranges of its children.
func (t *Tree) Check() error {
	for _, n := range t.order {
		m := t.marks[n]
		if m.last < m.first {
			return fmt.Errorf("%s: last token %s precedes first token %s",
				t.dialect.Kind(n), t.code.Token(m.last), t.code.Token(m.first))
		}
		for _, c := range t.childrenOf(n) {
			cm := t.marks[c]
			if cm.first < m.first || cm.last > m.last {
				return fmt.Errorf("%s [%d, %d] is not contained in its parent %s [%d, %d]",
					t.dialect.Kind(c), cm.first, cm.last, t.dialect.Kind(n), m.first, m.last)
			}
		}
	}
	return nil
}
