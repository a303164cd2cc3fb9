package span

import (
	"github.com/dhamidi/srcspan/token"
)

// ExpectPrev moves the first token back by one, which must be the operator
// op. List comprehensions use it for their opening bracket.
func ExpectPrev(op string) FirstFixup {
	return func(t *Tree, n Node, first *token.Token) (*token.Token, error) {
		prev, err := t.code.PrevToken(first, false)
		if err != nil {
			return nil, err
		}
		if err := expectToken(prev, token.Op, op); err != nil {
			return nil, err
		}
		return prev, nil
	}
}

// FindBackward moves the first token back to the nearest token matching
// kind and text.
func FindBackward(kind token.Kind, text string) FirstFixup {
	return func(t *Tree, n Node, first *token.Token) (*token.Token, error) {
		tok := t.code.FindTokenBackward(first, kind, text)
		if err := expectToken(tok, kind, text); err != nil {
			return nil, err
		}
		return tok, nil
	}
}

// IncludePrefix moves the first token back over the operator op when it
// precedes the node, possibly with opening parentheses in between. It
// makes decorated definitions start at their first "@".
func IncludePrefix(op string) FirstFixup {
	return func(t *Tree, n Node, first *token.Token) (*token.Token, error) {
		prev := first
		for {
			p, err := t.code.PrevToken(prev, false)
			if err != nil {
				return first, nil
			}
			if p.IsOp(op) {
				return p, nil
			}
			if !p.IsOp("(") {
				return first, nil
			}
			prev = p
		}
	}
}

// AttributeSuffix extends the last token over the ". name" that follows
// the attribute's value.
func AttributeSuffix() LastFixup {
	return func(t *Tree, n Node, first, last *token.Token) (*token.Token, error) {
		dot := t.code.FindToken(last, token.Op, ".")
		if err := expectToken(dot, token.Op, "."); err != nil {
			return nil, err
		}
		name, err := t.code.NextToken(dot, false)
		if err != nil {
			return nil, err
		}
		if err := expectToken(name, token.Name, ""); err != nil {
			return nil, err
		}
		return name, nil
	}
}

// ClosingBracket extends the last token to the bracket matching the first
// opener after the node's first child, as in the argument list of a call
// or the brackets of a subscript. The last token never moves backwards.
func ClosingBracket(open string) LastFixup {
	return func(t *Tree, n Node, first, last *token.Token) (*token.Token, error) {
		start := first
		if kids := t.Children(n); len(kids) > 0 {
			start = t.LastToken(kids[0])
		}
		opener := t.code.FindToken(start, token.Op, open)
		if err := expectToken(opener, token.Op, open); err != nil {
			return nil, err
		}
		m := t.code.Brackets().Match(opener.Index)
		if m < 0 {
			closer, _ := token.Closer(opener)
			return nil, expectToken(t.code.EndMarker(), token.Op, closer)
		}
		if m > last.Index {
			return t.code.Token(m), nil
		}
		return last, nil
	}
}

// TrailingComma absorbs a comma following a bare tuple. A tuple is bare
// when it starts with its first element, redundant parentheses around that
// element included.
func TrailingComma() LastFixup {
	return func(t *Tree, n Node, first, last *token.Token) (*token.Token, error) {
		kids := t.Children(n)
		if len(kids) == 0 {
			return last, nil
		}
		start, _ := t.gobbleParens(t.FirstToken(kids[0]), t.LastToken(kids[0]))
		if start != first {
			return last, nil
		}
		next, err := t.code.NextToken(last, false)
		if err != nil {
			return last, nil
		}
		if next.IsOp(",") {
			return next, nil
		}
		return last, nil
	}
}

func (t *Tree) gobbleParens(first, last *token.Token) (*token.Token, *token.Token) {
	for first.Index > 0 {
		prev, err := t.code.PrevToken(first, false)
		if err != nil {
			break
		}
		next, err := t.code.NextToken(last, false)
		if err != nil {
			break
		}
		if !prev.IsOp("(") || !next.IsOp(")") {
			break
		}
		first, last = prev, next
	}
	return first, last
}

// AbsorbSign moves the last token of a numeric literal past leading sign
// operators, for literals stored as one node over "-" and the digits.
func AbsorbSign() LastFixup {
	return func(t *Tree, n Node, first, last *token.Token) (*token.Token, error) {
		for last.Kind == token.Op {
			next, err := t.code.NextToken(last, false)
			if err != nil {
				return nil, err
			}
			last = next
		}
		return last, nil
	}
}

// AdjacentStrings extends a string literal over the string literals that
// directly follow it, which the language concatenates.
func AdjacentStrings() LastFixup {
	return func(t *Tree, n Node, first, last *token.Token) (*token.Token, error) {
		for {
			next, err := t.code.NextToken(last, false)
			if err != nil || next.Kind != token.String {
				return last, nil
			}
			last = next
		}
	}
}

// DottedName extends an import alias over ". name" parts and an
// "as name" suffix.
func DottedName() LastFixup {
	return func(t *Tree, n Node, first, last *token.Token) (*token.Token, error) {
		for {
			dot, err := t.code.NextToken(last, false)
			if err != nil || !dot.IsOp(".") {
				break
			}
			name, err := t.code.NextToken(dot, false)
			if err != nil || name.Kind != token.Name {
				break
			}
			last = name
		}
		as, err := t.code.NextToken(last, false)
		if err != nil || !as.Is(token.Name, "as") {
			return last, nil
		}
		name, err := t.code.NextToken(as, false)
		if err != nil {
			return nil, err
		}
		if err := expectToken(name, token.Name, ""); err != nil {
			return nil, err
		}
		return name, nil
	}
}
