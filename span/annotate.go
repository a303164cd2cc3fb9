package span

import (
	"fmt"
	"iter"

	"github.com/dhamidi/srcspan/token"
)

type Option func(*Tree)

// WithoutBracketIndex makes the last pass scan the tokens of every node
// instead of asking the bracket index whether the node is balanced.
func WithoutBracketIndex() Option {
	return func(t *Tree) {
		t.scanAll = true
	}
}

// Annotate assigns every node below root its first and last token. The
// first pass completes for the whole tree before the last pass starts.
// Any error leaves no usable annotation.
func Annotate(code *Code, d Dialect, root Node, opts ...Option) (*Tree, error) {
	t := &Tree{
		code:     code,
		dialect:  d,
		root:     root,
		marks:    make(map[Node]*mark),
		children: make(map[Node][]Node),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.assignFirst(); err != nil {
		return nil, fmt.Errorf("first tokens: %w", err)
	}
	if err := t.assignLast(); err != nil {
		return nil, fmt.Errorf("last tokens: %w", err)
	}

	log().Debugf("annotated %d %s nodes over %d tokens", len(t.order), d.Name(), code.Len())
	return t, nil
}

func (t *Tree) childrenOf(n Node) []Node {
	if kids, ok := t.children[n]; ok {
		return kids
	}
	var kids []Node
	for _, c := range t.dialect.Children(n) {
		if !t.dialect.IsMarker(c) {
			kids = append(kids, c)
		}
	}
	t.children[n] = kids
	return kids
}

func (t *Tree) anchorToken(n Node) *token.Token {
	line, col, ok := t.dialect.Anchor(n)
	if !ok {
		return nil
	}
	return t.code.TokenAtUnit(line, col, t.dialect.Columns())
}

func (t *Tree) assignFirst() error {
	fixups := t.dialect.Fixups()
	return walk(t.root, t.code.Token(0), t.childrenOf,
		func(n Node, fallback *token.Token) (*token.Token, *token.Token, error) {
			t.order = append(t.order, n)
			if anchor := t.anchorToken(n); anchor != nil {
				return anchor, anchor, nil
			}
			return nil, fallback, nil
		},
		func(n Node, fallback *token.Token, anchor *token.Token) error {
			first := anchor
			if kids := t.children[n]; len(kids) > 0 {
				if fc := t.FirstToken(kids[0]); first == nil || fc.Index < first.Index {
					first = fc
				}
			} else if first == nil {
				first = fallback
				u := Unsupported{Kind: t.dialect.Kind(n), Line: first.Start.Line, Col: first.Start.Col}
				t.unsupported = append(t.unsupported, u)
				log().Warningf("unsupported construct: %s", u)
			}

			if fix := fixups.first(t.dialect.Kind(n)); fix != nil {
				var err error
				if first, err = fix(t, n, first); err != nil {
					return fmt.Errorf("%s: %w", t.dialect.Kind(n), err)
				}
			}
			t.marks[n] = &mark{first: first.Index, last: -1}
			return nil
		})
}

func (t *Tree) assignLast() error {
	fixups := t.dialect.Fixups()
	none := func(Node, struct{}) (struct{}, struct{}, error) { return struct{}{}, struct{}{}, nil }
	return walk(t.root, struct{}{}, t.childrenOf, none,
		func(n Node, _ struct{}, _ struct{}) error {
			m := t.marks[n]
			first := t.code.Token(m.first)
			last := first
			kids := t.children[n]
			if len(kids) > 0 {
				last = t.LastToken(kids[len(kids)-1])
			}

			last, err := t.balance(first, last, kids)
			if err != nil {
				return fmt.Errorf("%s: %w", t.dialect.Kind(n), err)
			}
			if t.dialect.IsStmt(n) {
				last = t.code.statementEnd(last)
			}
			if fix := fixups.last(t.dialect.Kind(n)); fix != nil {
				if last, err = fix(t, n, first, last); err != nil {
					return fmt.Errorf("%s: %w", t.dialect.Kind(n), err)
				}
			}
			m.last = last.Index
			return nil
		})
}

// balance extends last over the closers of brackets opened by the node's
// own tokens. Commas and colons before an expected closer are trailing
// separators and are skipped.
func (t *Tree) balance(first, last *token.Token, kids []Node) (*token.Token, error) {
	if !t.scanAll {
		lo, hi := t.code.Brackets().Enclosing(first.Index, last.Index)
		if lo == first.Index && hi == last.Index {
			return last, nil
		}
	}

	var want []string
	for tok := range t.gapTokens(first, last, kids) {
		if n := len(want); n > 0 && tok.IsOp(want[n-1]) {
			want = want[:n-1]
			continue
		}
		if closer, ok := token.Closer(tok); ok {
			want = append(want, closer)
		}
	}

	for len(want) > 0 {
		closer := want[len(want)-1]
		want = want[:len(want)-1]

		next, err := t.code.NextToken(last, false)
		if err != nil {
			return nil, err
		}
		for next.IsOp(",") || next.IsOp(":") {
			if next, err = t.code.NextToken(next, false); err != nil {
				return nil, err
			}
		}
		if err := expectToken(next, token.Op, closer); err != nil {
			return nil, err
		}
		last = next
	}
	return last, nil
}

// gapTokens yields the coding tokens from first to last that lie outside
// every child's range.
func (t *Tree) gapTokens(first, last *token.Token, kids []Node) iter.Seq[*token.Token] {
	return func(yield func(*token.Token) bool) {
		i := first.Index
		for _, c := range kids {
			m := t.marks[c]
			if m.first > i {
				for tok := range t.code.indexRange(i, m.first-1, false) {
					if !yield(tok) {
						return
					}
				}
			}
			if m.last >= last.Index {
				return
			}
			i = max(i, m.last+1)
		}
		for tok := range t.code.indexRange(i, last.Index, false) {
			if !yield(tok) {
				return
			}
		}
	}
}

// statementEnd returns the last token of the logical line holding tok,
// stopping at NEWLINE, at a semicolon or at the end-marker.
func (c *Code) statementEnd(tok *token.Token) *token.Token {
	i := tok.Index
	for ; i < len(c.tokens)-1; i++ {
		t := &c.tokens[i]
		if t.Kind == token.Newline || t.IsOp(";") {
			break
		}
	}
	for j := i - 1; j > tok.Index; j-- {
		t := &c.tokens[j]
		if !t.IsNonCoding() && t.Kind != token.Dedent && t.Kind != token.Indent {
			return t
		}
	}
	return tok
}
