// Package treesitter annotates tree-sitter Python syntax trees with token
// spans. Tree-sitter nodes carry exact start positions, so the only
// correction is the trailing comma of a bare tuple, which no child covers.
// The token sequence still comes from the Python tokenizer.
package treesitter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/srcspan/linenum"
	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/span"
	"github.com/dhamidi/srcspan/token"
)

func log() commonlog.Logger {
	return commonlog.GetLogger("srcspan.treesitter")
}

// markers have no tokens of their own in the tokenizer output.
var markers = map[string]bool{
	"comment":           true,
	"line_continuation": true,
}

var compound = map[string]bool{
	"function_definition":  true,
	"class_definition":     true,
	"decorated_definition": true,
}

var expressions = map[string]bool{
	"identifier":               true,
	"attribute":                true,
	"call":                     true,
	"subscript":                true,
	"binary_operator":          true,
	"boolean_operator":         true,
	"comparison_operator":      true,
	"unary_operator":           true,
	"not_operator":             true,
	"conditional_expression":   true,
	"named_expression":         true,
	"lambda":                   true,
	"await":                    true,
	"yield":                    true,
	"list":                     true,
	"tuple":                    true,
	"set":                      true,
	"dictionary":               true,
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
	"parenthesized_expression": true,
	"expression_list":          true,
	"list_splat":               true,
	"dictionary_splat":         true,
	"string":                   true,
	"concatenated_string":      true,
	"integer":                  true,
	"float":                    true,
	"true":                     true,
	"false":                    true,
	"none":                     true,
	"ellipsis":                 true,
}

// Dialect presents *Node trees to the span annotator.
type Dialect struct {
	fixups *span.Fixups
}

func New() *Dialect {
	comma := span.TrailingComma()
	return &Dialect{fixups: &span.Fixups{
		Last: map[string]span.LastFixup{
			"expression_list": comma,
			"pattern_list":    comma,
		},
	}}
}

func node(n span.Node) *Node {
	return n.(*Node)
}

func (d *Dialect) Name() string {
	return "treesitter"
}

func (d *Dialect) Kind(n span.Node) string {
	return node(n).Type
}

func (d *Dialect) Anchor(n span.Node) (int, int, bool) {
	tn := node(n)
	return tn.Line, tn.Col, true
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
	return markers[node(n).Type]
}

func (d *Dialect) IsStmt(n span.Node) bool {
	typ := node(n).Type
	return strings.HasSuffix(typ, "_statement") || compound[typ]
}

func (d *Dialect) IsExpr(n span.Node) bool {
	return expressions[node(n).Type]
}

func (d *Dialect) Columns() linenum.Unit {
	return linenum.Bytes
}

func (d *Dialect) Fixups() *span.Fixups {
	return d.fixups
}

// Extent returns the byte range tree-sitter reports for n.
func (d *Dialect) Extent(n span.Node) (start, end token.Pos, ok bool) {
	tn := node(n)
	return token.Pos{Line: tn.Line, Col: tn.Col}, token.Pos{Line: tn.EndLine, Col: tn.EndCol}, true
}

// Unmarked parses src with tree-sitter and locates node text from
// tree-sitter's ranges alone.
func Unmarked(ctx context.Context, src string, opts ...Option) (*span.Unmarked, *Node, error) {
	o := options{file: "<unknown>"}
	for _, opt := range opts {
		opt(&o)
	}
	root, err := parseTree(ctx, src, o.file)
	if err != nil {
		return nil, nil, err
	}
	u, err := span.NewUnmarked(src, New(), root)
	if err != nil {
		return nil, nil, err
	}
	return u, root, nil
}

type Option func(*options)

type options struct {
	file string
}

// WithFile names the source in error messages.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// Parse parses src with tree-sitter, tokenizes it and annotates the
// tree. Source with syntax errors is rejected with a *parser.SyntaxError
// at the first error node.
func Parse(ctx context.Context, src string, opts ...Option) (*span.Tree, error) {
	o := options{file: "<unknown>"}
	for _, opt := range opts {
		opt(&o)
	}

	root, err := parseTree(ctx, src, o.file)
	if err != nil {
		return nil, err
	}
	raw, err := parser.NewLexer(src, o.file).Tokenize()
	if err != nil {
		return nil, err
	}
	tree, err := span.Annotate(span.NewCode(src, raw), New(), root)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	return tree, nil
}

// ParseTree parses src with tree-sitter and copies out its named nodes.
func ParseTree(ctx context.Context, src string) (*Node, error) {
	return parseTree(ctx, src, "<unknown>")
}

func parseTree(ctx context.Context, src, file string) (*Node, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(src, file, root)
	}
	out := convert(root)
	log().Debugf("converted tree-sitter tree rooted at %s", out)
	return out, nil
}

func syntaxError(src, file string, root *sitter.Node) error {
	e := &parser.SyntaxError{File: file, Line: 1, Msg: "invalid syntax"}
	if bad := firstError(root); bad != nil {
		start := bad.StartPoint()
		e.Line = int(start.Row) + 1
		e.Col = linenum.New(src).FromUTF8Col(e.Line, int(start.Column))
		if bad.IsMissing() {
			e.Msg = fmt.Sprintf("missing %s", bad.Type())
		}
	}
	return e
}
