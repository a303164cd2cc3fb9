// Package stdast annotates trees from the parser package with token spans.
package stdast

import (
	"fmt"
	"io"

	"github.com/dhamidi/srcspan/linenum"
	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/span"
	"github.com/dhamidi/srcspan/token"
)

// Dialect presents *parser.Node trees to the span annotator.
type Dialect struct {
	fixups *span.Fixups
}

func New() *Dialect {
	return &Dialect{fixups: fixups()}
}

func fixups() *span.Fixups {
	decorated := span.IncludePrefix("@")
	adjacent := span.AdjacentStrings()
	return &span.Fixups{
		First: map[string]span.FirstFixup{
			"ListComp":         span.ExpectPrev("["),
			"comprehension":    span.FindBackward(token.Name, "for"),
			"FunctionDef":      decorated,
			"AsyncFunctionDef": decorated,
			"ClassDef":         decorated,
		},
		Last: map[string]span.LastFixup{
			"Attribute": span.AttributeSuffix(),
			"Call":      span.ClosingBracket("("),
			"Subscript": span.ClosingBracket("["),
			"Tuple":     span.TrailingComma(),
			"Num":       span.AbsorbSign(),
			"Str":       adjacent,
			"Bytes":     adjacent,
			"JoinedStr": adjacent,
			"alias":     span.DottedName(),
		},
	}
}

func node(n span.Node) *parser.Node {
	return n.(*parser.Node)
}

func (d *Dialect) Name() string {
	return "python"
}

func (d *Dialect) Kind(n span.Node) string {
	return node(n).Kind.String()
}

func (d *Dialect) Anchor(n span.Node) (int, int, bool) {
	pos := node(n).Pos
	if pos == nil {
		return 0, 0, false
	}
	return pos.Line, pos.Col, true
}

func (d *Dialect) Children(n span.Node) []span.Node {
	kids := node(n).Children
	out := make([]span.Node, len(kids))
	for i, c := range kids {
		out[i] = c
	}
	return out
}

func (d *Dialect) IsMarker(n span.Node) bool {
	return node(n).Kind.IsMarker()
}

func (d *Dialect) IsStmt(n span.Node) bool {
	return node(n).Kind.IsStmt()
}

func (d *Dialect) IsExpr(n span.Node) bool {
	return node(n).Kind.IsExpr()
}

// Columns reports UTF-8 byte columns, the unit of parser anchors.
func (d *Dialect) Columns() linenum.Unit {
	return linenum.Bytes
}

func (d *Dialect) Fixups() *span.Fixups {
	return d.fixups
}

// Extent returns the range the parser recorded for n.
func (d *Dialect) Extent(n span.Node) (start, end token.Pos, ok bool) {
	pn := node(n)
	if pn.Pos == nil || pn.End == nil {
		return start, end, false
	}
	from := pn.Pos
	if pn.Start != nil {
		from = pn.Start
	}
	return token.Pos{Line: from.Line, Col: from.Col}, token.Pos{Line: pn.End.Line, Col: pn.End.Col}, true
}

// Unmarked parses src and locates node text from the parser's ranges
// alone, without tokens.
func Unmarked(src string, opts ...parser.Option) (*span.Unmarked, *parser.Node, error) {
	root, _, err := parser.Parse(src, opts...)
	if err != nil {
		return nil, nil, err
	}
	u, err := span.NewUnmarked(src, New(), root)
	if err != nil {
		return nil, nil, err
	}
	return u, root, nil
}

// Parse parses src and annotates the resulting tree.
func Parse(src string, opts ...parser.Option) (*span.Tree, error) {
	root, raw, err := parser.Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return Annotate(src, root, raw)
}

// ParseReader parses a module read from r.
func ParseReader(r io.Reader, opts ...parser.Option) (*span.Tree, error) {
	p := parser.ParseModule(r, opts...)
	root, err := p.Finish()
	if err != nil {
		return nil, err
	}
	return Annotate(p.Source(), root, p.Tokens())
}

// Annotate annotates a tree already parsed from src.
func Annotate(src string, root *parser.Node, raw []token.Raw, opts ...span.Option) (*span.Tree, error) {
	code := span.NewCode(src, raw)
	tree, err := span.Annotate(code, New(), root, opts...)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	return tree, nil
}
