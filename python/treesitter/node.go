package treesitter

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node is a named node of a tree-sitter syntax tree, copied out of the
// tree so that it outlives the parser. Anonymous nodes such as keywords
// and punctuation are dropped; the annotator finds them in the token
// sequence instead.
type Node struct {
	Type      string
	Line      int // 1-based
	Col       int // UTF-8 bytes
	EndLine   int
	EndCol    int
	StartByte int
	EndByte   int
	Children  []*Node
}

func (n *Node) String() string {
	return fmt.Sprintf("%s@%d:%d", n.Type, n.Line, n.Col)
}

// Dump renders the subtree as Type(child child ...).
func (n *Node) Dump() string {
	var b strings.Builder
	type frame struct {
		n    *Node
		next int
	}
	stack := []frame{{n: n}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == 0 {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "(") {
				b.WriteByte(' ')
			}
			b.WriteString(top.n.Type)
			b.WriteByte('(')
		}
		if top.next < len(top.n.Children) {
			c := top.n.Children[top.next]
			top.next++
			stack = append(stack, frame{n: c})
			continue
		}
		b.WriteByte(')')
		stack = stack[:len(stack)-1]
	}
	return b.String()
}

// convert copies the named nodes below root.
func convert(root *sitter.Node) *Node {
	type frame struct {
		src *sitter.Node
		dst *Node
	}
	out := copyNode(root)
	stack := []frame{{root, out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count := int(f.src.NamedChildCount())
		f.dst.Children = make([]*Node, 0, count)
		for i := 0; i < count; i++ {
			child := f.src.NamedChild(i)
			if child == nil {
				continue
			}
			c := copyNode(child)
			f.dst.Children = append(f.dst.Children, c)
			stack = append(stack, frame{child, c})
		}
	}
	return out
}

func copyNode(n *sitter.Node) *Node {
	start, end := n.StartPoint(), n.EndPoint()
	return &Node{
		Type:      n.Type(),
		Line:      int(start.Row) + 1,
		Col:       int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}

// firstError returns the first ERROR or missing node in document order.
func firstError(root *sitter.Node) *sitter.Node {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type() == "ERROR" || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if c := n.Child(i); c != nil {
				stack = append(stack, c)
			}
		}
	}
	return nil
}
