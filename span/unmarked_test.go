package span

import (
	"errors"
	"testing"

	"github.com/dhamidi/srcspan/token"
)

type extentDialect struct {
	testDialect
	ends map[*testNode]token.Pos
}

func (d extentDialect) Extent(n Node) (token.Pos, token.Pos, bool) {
	tn := n.(*testNode)
	end, ok := d.ends[tn]
	if tn.pos == nil || !ok {
		return token.Pos{}, token.Pos{}, false
	}
	return *tn.pos, end, true
}

func TestUnmarkedTextRange(t *testing.T) {
	src := "if a:\n    b\n    c  # done\n"
	a, b, c := at("x", 1, 3), at("x", 2, 4), at("x", 3, 4)
	stmtB, stmtC := at("stmt", 2, 4, b), at("stmt", 3, 4, c)
	clause := bare("clause", a)
	ifNode := at("if", 1, 0, clause, stmtB, stmtC)
	root := bare("module", ifNode)

	d := extentDialect{ends: map[*testNode]token.Pos{
		a:      {Line: 1, Col: 4},
		b:      {Line: 2, Col: 5},
		c:      {Line: 3, Col: 5},
		stmtB:  {Line: 2, Col: 5},
		stmtC:  {Line: 3, Col: 5},
		ifNode: {Line: 3, Col: 13},
	}}
	if !SupportsUnmarked(d) {
		t.Fatal("SupportsUnmarked = false for a dialect with extents")
	}
	u, err := NewUnmarked(src, d, root)
	if err != nil {
		t.Fatalf("NewUnmarked: %v", err)
	}

	tests := []struct {
		name string
		node *testNode
		want string
	}{
		{"root is the whole text", root, src},
		{"block ends at its last statement", ifNode, "if a:\n    b\n    c"},
		{"statement", stmtC, "c"},
		{"expression", a, "a"},
		{"no extent", clause, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := u.Text(tt.node); got != tt.want {
				t.Errorf("Text(%s) = %q, want %q", tt.node.kind, got, tt.want)
			}
		})
	}
}

func TestUnmarkedNeedsExtents(t *testing.T) {
	if SupportsUnmarked(testDialect{}) {
		t.Error("SupportsUnmarked = true for a dialect without extents")
	}
	_, err := NewUnmarked("x\n", testDialect{}, bare("module"))
	if !errors.Is(err, ErrNoExtent) {
		t.Errorf("NewUnmarked error = %v, want ErrNoExtent", err)
	}
}
