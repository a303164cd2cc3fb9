package stdast

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/span"
	"github.com/dhamidi/srcspan/token"
)

// MismatchError reports a node whose text does not parse back into the
// same structure.
type MismatchError struct {
	Kind string
	Pos  token.Pos
	Text string
	Want string
	Got  string
	Err  error
}

func (e *MismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s at %s: text %q does not parse: %v", e.Kind, e.Pos, e.Text, e.Err)
	}
	return fmt.Sprintf("%s at %s: text %q parses as %s, want %s", e.Kind, e.Pos, e.Text, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}

var indented = regexp.MustCompile(`^[ \t]+\S`)

// Verify re-parses the text of every statement and expression in t and
// compares the result with the node, ignoring load, store and delete
// contexts. It returns the first mismatch.
func Verify(t *span.Tree) error {
	for _, n := range t.Nodes() {
		pn := node(n)
		if !pn.Kind.IsStmt() && !pn.Kind.IsExpr() || !t.Marked(n) || hasSlice(pn) {
			continue
		}
		text := t.ParsableText(n)
		got, err := reparse(text, pn.Kind.IsExpr())
		if err != nil || got.Dump() != pn.Dump() {
			e := &MismatchError{
				Kind: pn.Kind.String(),
				Pos:  t.FirstToken(n).Start,
				Text: text,
				Want: pn.Dump(),
				Err:  err,
			}
			if got != nil {
				e.Got = got.Dump()
			}
			return e
		}
	}
	return nil
}

// hasSlice reports tuples of slices, which only parse inside brackets.
func hasSlice(n *parser.Node) bool {
	if n.Kind != parser.KindTuple {
		return false
	}
	for _, c := range n.Children {
		if c.Kind == parser.KindSlice {
			return true
		}
	}
	return false
}

// reparse parses a snippet the way its node appears in a module. Indented
// statements go into a function body; other snippets follow a dummy
// statement so that a lone string is not mistaken for a docstring.
func reparse(text string, expr bool) (*parser.Node, error) {
	if trimmed := strings.TrimLeft(text, " \t"); strings.HasPrefix(trimmed, "elif") {
		text = text[:len(text)-len(trimmed)] + trimmed[2:]
	}

	switch {
	case indented.MatchString(text):
		root, _, err := parser.Parse("def dummy():\n" + text)
		if err != nil {
			return nil, err
		}
		return child(root, 0, 1)
	case expr:
		root, _, err := parser.Parse("_\n(" + text + ")")
		if err != nil {
			return nil, err
		}
		return child(root, 1, 0)
	default:
		root, _, err := parser.Parse("_\n" + text)
		if err != nil {
			return nil, err
		}
		return child(root, 1)
	}
}

func child(n *parser.Node, path ...int) (*parser.Node, error) {
	for _, i := range path {
		if i >= len(n.Children) {
			return nil, fmt.Errorf("%s has no child %d", n.Kind, i)
		}
		n = n.Children[i]
	}
	return n, nil
}
