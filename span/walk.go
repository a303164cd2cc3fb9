package span

import "fmt"

type frame[S, V any] struct {
	node    Node
	in      V
	state   S
	entered bool
}

// walk traverses the tree below root on an explicit stack, so the depth of
// the tree is bounded by memory rather than by the call stack. pre runs
// when a node is entered; the value it returns is handed to each child,
// and the state it returns is handed back to post once every child has
// been completed.
func walk[S, V any](root Node, in V, children func(Node) []Node, pre func(Node, V) (S, V, error), post func(Node, V, S) error) error {
	seen := make(map[Node]bool)
	stack := []frame[S, V]{{node: root, in: in}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.entered {
			f := *top
			stack = stack[:len(stack)-1]
			if err := post(f.node, f.in, f.state); err != nil {
				return err
			}
			continue
		}

		if seen[top.node] {
			return fmt.Errorf("%T node reached twice, the tree is not a tree", top.node)
		}
		seen[top.node] = true
		top.entered = true

		state, out, err := pre(top.node, top.in)
		if err != nil {
			return err
		}
		top.state = state

		kids := children(top.node)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame[S, V]{node: kids[i], in: out})
		}
	}
	return nil
}
