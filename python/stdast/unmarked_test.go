package stdast

import (
	"strings"
	"testing"

	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/span"
)

const unmarkedSource = `
import os.path as osp
from a import (b,
    c,)

x = 1
if x > 0:
  for i, j in range(10):
    print(i); print(j)
else:
  print('negative')

@dec
class W(Base):
    size: int = 0

    @property
    def name(self, *args, key=[k for k in ks], **kw):
        return a[1:2], -3

    async def fetch(self):
        async with lock as held:
            await held.wait()
        try:
            n = (yield)
        except (KeyError, ValueError) as err:
            raise RuntimeError("bad") from err
        finally:
            del n
        return f(x for x in y), lambda: a if b else {**c}
`

func TestUnmarkedMatchesTokens(t *testing.T) {
	tree := annotate(t, unmarkedSource)
	if !span.SupportsUnmarked(tree.Dialect()) {
		t.Fatal("python dialect does not support unmarked text")
	}
	u, err := span.NewUnmarked(unmarkedSource, tree.Dialect(), tree.Root())
	if err != nil {
		t.Fatalf("NewUnmarked: %v", err)
	}

	if start, end := u.TextRange(tree.Root()); start != 0 || end != len(unmarkedSource) {
		t.Errorf("module range = [%d, %d), want the whole source", start, end)
	}
	for _, n := range tree.Nodes()[1:] {
		pn := n.(*parser.Node)
		if pn.Pos == nil {
			if start, end := u.TextRange(n); start != 0 || end != 0 {
				t.Errorf("%s without a position has range [%d, %d)", pn.Kind, start, end)
			}
			continue
		}
		if got, want := u.Text(n), tree.Text(n); got != want {
			t.Errorf("%s at %s: unmarked text %q, want %q", pn.Kind, pn.Pos, got, want)
		}
	}
}

func TestUnmarkedText(t *testing.T) {
	u, root, err := Unmarked(unmarkedSource)
	if err != nil {
		t.Fatalf("Unmarked: %v", err)
	}

	// find returns the n-th node of kind in source order.
	find := func(kind parser.NodeKind, n int) *parser.Node {
		t.Helper()
		stack := []*parser.Node{root}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if node.Kind == kind {
				if n == 0 {
					return node
				}
				n--
			}
			for i := len(node.Children) - 1; i >= 0; i-- {
				stack = append(stack, node.Children[i])
			}
		}
		t.Fatalf("no %s node", kind)
		return nil
	}

	tests := []struct {
		name string
		node *parser.Node
		want string
	}{
		{"indented loop", find(parser.KindFor, 0), "  for i, j in range(10):\n    print(i); print(j)"},
		{"list comprehension", find(parser.KindListComp, 0), "[k for k in ks]"},
		{"generator argument", find(parser.KindGeneratorExp, 0), "(x for x in y)"},
		{"bare tuple", find(parser.KindTuple, 1), "a[1:2], -3"},
		{"negative number", find(parser.KindNum, 6), "-3"},
		{"import", find(parser.KindImportFrom, 0), "from a import (b,\n    c,)"},
		{"yield in parentheses", find(parser.KindAssign, 1), "n = (yield)"},
		{"comprehension has no position", find(parser.KindComprehension, 0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := u.Text(tt.node); got != tt.want {
				t.Errorf("Text(%s) = %q, want %q", tt.node.Kind, got, tt.want)
			}
		})
	}

	def := find(parser.KindFunctionDef, 0)
	text := u.Text(def)
	if !strings.HasPrefix(text, "    @property\n    def name(") || !strings.HasSuffix(text, "return a[1:2], -3") {
		t.Errorf("Text(FunctionDef) = %q, want the decorated, indented definition", text)
	}
}
