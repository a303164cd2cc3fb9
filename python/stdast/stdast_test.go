package stdast

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/span"
)

func annotate(t *testing.T, src string) *span.Tree {
	t.Helper()
	tree, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
	return tree
}

// nth returns the n-th node of the kind in pre-order.
func nth(t *testing.T, tree *span.Tree, kind parser.NodeKind, n int) *parser.Node {
	t.Helper()
	for _, sn := range tree.Nodes() {
		if pn := sn.(*parser.Node); pn.Kind == kind {
			if n == 0 {
				return pn
			}
			n--
		}
	}
	t.Fatalf("no %s node", kind)
	return nil
}

func TestCallAndKeywordSpans(t *testing.T) {
	tree := annotate(t, "f(x=1)\ng(a=(x),b=[y])")

	g := nth(t, tree, parser.KindCall, 1)
	last := tree.LastToken(g)
	if last.Text != ")" || last.Index != tree.Code().Len()-2 {
		t.Errorf("g(...) last token = %s at %d, want the final )", last, last.Index)
	}
	if got := tree.Text(g); got != "g(a=(x),b=[y])" {
		t.Errorf("Text(g) = %q", got)
	}

	b := nth(t, tree, parser.KindKeyword, 2)
	if got := tree.LastToken(b).Text; got != "]" {
		t.Errorf("keyword b last token = %q, want ]", got)
	}
	if got := tree.Text(b); got != "b=[y]" {
		t.Errorf("Text(b) = %q, want b=[y]", got)
	}
	if got := tree.Text(nth(t, tree, parser.KindKeyword, 1)); got != "a=(x)" {
		t.Errorf("Text(a) = %q, want a=(x)", got)
	}
}

func TestMultilineTuple(t *testing.T) {
	tree := annotate(t, "(a,\nb)")
	tuple := nth(t, tree, parser.KindTuple, 0)
	if got := tree.Text(tuple); got != "(a,\nb)" {
		t.Errorf("Text = %q, want %q", got, "(a,\nb)")
	}
	if got := tree.ParsableText(tuple); got != "(a,\nb)" {
		t.Errorf("ParsableText = %q, want it unwrapped", got)
	}
}

func TestDictAndDelete(t *testing.T) {
	tree := annotate(t, "x = {4:5}\ndel x[4]")
	if got := tree.Text(nth(t, tree, parser.KindDict, 0)); got != "{4:5}" {
		t.Errorf("Dict text = %q", got)
	}
	if got := tree.Text(nth(t, tree, parser.KindDelete, 0)); got != "del x[4]" {
		t.Errorf("Delete text = %q", got)
	}
}

func TestDeepConcatenation(t *testing.T) {
	src := strings.Repeat("'x' + ", 1050) + "'y'"
	tree := annotate(t, src)

	outer := nth(t, tree, parser.KindBinOp, 0)
	text := tree.Text(outer)
	if !strings.HasPrefix(text, "'x'") || !strings.HasSuffix(text, "'y'") {
		t.Errorf("outer text starts %q and ends %q", text[:6], text[len(text)-6:])
	}
	if text != src {
		t.Errorf("outer text has length %d, want %d", len(text), len(src))
	}
}

func TestMarkerHasNoText(t *testing.T) {
	tree := annotate(t, "foo = bar\n")
	name := nth(t, tree, parser.KindName, 1)
	load := name.Context()
	if load == nil || load.Kind != parser.KindLoad {
		t.Fatalf("bar has no Load marker")
	}
	if start, end := tree.TextRange(load); start != 0 || end != 0 {
		t.Errorf("TextRange(Load) = (%d, %d), want (0, 0)", start, end)
	}
	if got := tree.Text(load); got != "" {
		t.Errorf("Text(Load) = %q, want empty", got)
	}
	if tree.Marked(load) {
		t.Errorf("Load marker is marked")
	}
}

func TestNodeText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind parser.NodeKind
		n    int
		want string
	}{
		{"parenthesized tuple with trailing comma", "x = (a, b,)\n", parser.KindTuple, 0, "(a, b,)"},
		{"bare tuple with trailing comma", "x = a, b,\n", parser.KindTuple, 0, "a, b,"},
		{"parenthesized element of a bare tuple", "x = (a),\n", parser.KindTuple, 0, "(a),"},
		{"nested tuples outer", "((a,),)\n", parser.KindTuple, 0, "((a,),)"},
		{"nested tuples inner", "((a,),)\n", parser.KindTuple, 1, "(a,)"},
		{"empty tuple", "x = ()\n", parser.KindTuple, 0, "()"},
		{"subscript tuple", "x[1, 2,]\n", parser.KindTuple, 0, "1, 2,"},
		{"semicolons", "a; b = 1; c\n", parser.KindAssign, 0, "b = 1"},
		{"decorated class", "@dec(1)\nclass A: pass\n", parser.KindClassDef, 0, "@dec(1)\nclass A: pass"},
		{"call of a call", "f()()\n", parser.KindCall, 0, "f()()"},
		{"inner call", "f()()\n", parser.KindCall, 1, "f()"},
		{"parenthesized callee", "(f)(x)\n", parser.KindCall, 0, "(f)(x)"},
		{"empty call", "f()\n", parser.KindCall, 0, "f()"},
		{"chained subscripts", "x[1:2][::3]\n", parser.KindSubscript, 0, "x[1:2][::3]"},
		{"slice", "x[1:2][::3]\n", parser.KindSlice, 0, "1:2"},
		{"slice with step only", "x[1:2][::3]\n", parser.KindSlice, 1, "::3"},
		{"attribute of parenthesized value", "(a).b\n", parser.KindAttribute, 0, "(a).b"},
		{"attribute of a call", "a().b\n", parser.KindAttribute, 0, "a().b"},
		{"negative number", "x = -1\n", parser.KindNum, 0, "-1"},
		{"negative number with space", "x = - 1\n", parser.KindNum, 0, "- 1"},
		{"complex number", "x = 1 + 2j\n", parser.KindBinOp, 0, "1 + 2j"},
		{"adjacent strings", "x = ('a'\n     'b')\n", parser.KindStr, 0, "'a'\n     'b'"},
		{"walrus", "if (n := 10) > 5: pass\n", parser.KindNamedExpr, 0, "n := 10"},
		{"dotted import alias", "import a.b as c, d\n", parser.KindAlias, 0, "a.b as c"},
		{"parenthesized import alias", "from x import (y as z)\n", parser.KindImportFrom, 0, "from x import (y as z)"},
		{"list comprehension", "[x for x in y if x]\n", parser.KindListComp, 0, "[x for x in y if x]"},
		{"comprehension clause", "[x for x in y if x]\n", parser.KindComprehension, 0, "for x in y if x"},
		{"sole generator argument", "f(x for x in y)\n", parser.KindGeneratorExp, 0, "(x for x in y)"},
		{"double star argument", "f(**d)\n", parser.KindKeyword, 0, "**d"},
		{"starred argument", "f(*a)\n", parser.KindStarred, 0, "*a"},
		{"lambda without arguments", "f = lambda: 0\n", parser.KindLambda, 0, "lambda: 0"},
		{"elif", "if a:\n    b\nelif c:\n    d\n", parser.KindIf, 1, "elif c:\n    d"},
		{"method keeps indentation", "class A:\n    def f(self):\n        return 1\n", parser.KindFunctionDef, 0, "    def f(self):\n        return 1"},
		{"async function", "async def f():\n    await x\n", parser.KindAsyncFunctionDef, 0, "async def f():\n    await x"},
		{"await", "async def f():\n    await x\n", parser.KindAwait, 0, "await x"},
		{"dict with trailing comma", "{1: 2,}\n", parser.KindDict, 0, "{1: 2,}"},
		{"call with comment", "foo(a,  # c\n    b)\n", parser.KindCall, 0, "foo(a,  # c\n    b)"},
		{"comment without newline at end", "x = 1  # c", parser.KindAssign, 0, "x = 1"},
		{"delete", "del a, b[0]\n", parser.KindDelete, 0, "del a, b[0]"},
		{"compound statement on one line", "if 2: a; b\n", parser.KindIf, 0, "if 2: a; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := annotate(t, tt.src)
			if got := tree.Text(nth(t, tree, tt.kind, tt.n)); got != tt.want {
				t.Errorf("Text(%s #%d) = %q, want %q", tt.kind, tt.n, got, tt.want)
			}
		})
	}
}

func TestParsableTextWrapsContinuedExpressions(t *testing.T) {
	tree := annotate(t, "x = ('a'\n     'b')\ny = (b *\n     3) + c\n")

	if got := tree.ParsableText(nth(t, tree, parser.KindStr, 0)); got != "('a'\n     'b')" {
		t.Errorf("ParsableText(Str) = %q", got)
	}
	if got := tree.ParsableText(nth(t, tree, parser.KindBinOp, 1)); got != "(b *\n     3)" {
		t.Errorf("ParsableText(inner BinOp) = %q", got)
	}
	assign := nth(t, tree, parser.KindAssign, 1)
	if got := tree.ParsableText(assign); got != tree.Text(assign) {
		t.Errorf("statements are never wrapped: %q", got)
	}
}

func TestUnsupportedArguments(t *testing.T) {
	tree := annotate(t, "f = lambda: 0\n")
	unsupported := tree.Unsupported()
	if len(unsupported) != 1 || unsupported[0].Kind != "arguments" {
		t.Fatalf("Unsupported() = %v, want one arguments entry", unsupported)
	}
	args := nth(t, tree, parser.KindArguments, 0)
	if got := tree.Text(args); got != "lambda" {
		t.Errorf("empty arguments text = %q, want the inherited lambda token", got)
	}
}

func TestAnnotateIsIdempotent(t *testing.T) {
	src := sampleProgram
	root, raw, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	indexed, err := Annotate(src, root, raw)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	again, err := Annotate(src, root, raw)
	if err != nil {
		t.Fatalf("Annotate again: %v", err)
	}
	scanned, err := Annotate(src, root, raw, span.WithoutBracketIndex())
	if err != nil {
		t.Fatalf("Annotate without bracket index: %v", err)
	}

	for _, n := range indexed.Nodes() {
		want := [2]int{indexed.FirstToken(n).Index, indexed.LastToken(n).Index}
		for name, other := range map[string]*span.Tree{"again": again, "scanned": scanned} {
			got := [2]int{other.FirstToken(n).Index, other.LastToken(n).Index}
			if got != want {
				t.Errorf("%s: %s spans %v, want %v", name, indexed.Dialect().Kind(n), got, want)
			}
		}
	}
}

func TestConsistencyError(t *testing.T) {
	root, _, err := parser.Parse("f(a)\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, raw, err := parser.Parse("f[a]\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = Annotate("f[a]\n", root, raw)
	var ce *span.ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("Annotate error = %v, want *span.ConsistencyError", err)
	}
	if !strings.Contains(ce.Expected, "(") {
		t.Errorf("expected = %q, want the opening parenthesis", ce.Expected)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("def f(:): pass\n")
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("Parse error = %v, want *parser.SyntaxError", err)
	}
}

func TestParseReader(t *testing.T) {
	tree, err := ParseReader(strings.NewReader("x = 1\n"), parser.WithFile("x.py"))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if got := tree.Text(nth(t, tree, parser.KindAssign, 0)); got != "x = 1" {
		t.Errorf("Assign text = %q", got)
	}
}
