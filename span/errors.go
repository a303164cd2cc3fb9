package span

import (
	"errors"
	"fmt"

	"github.com/dhamidi/srcspan/token"
)

// ErrOutOfRange is returned when stepping past either end of a token
// sequence. Running into the end-marker while searching is not an error.
var ErrOutOfRange = errors.New("token index out of range")

// ConsistencyError reports a token that does not match what the tree
// predicts. It means the tokens and the tree disagree, or a construct is
// not handled by the dialect.
type ConsistencyError struct {
	Expected string
	Got      *token.Token
	Line     int
	Col      int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("expected token %s, got %s on line %d col %d", e.Expected, e.Got, e.Line, e.Col+1)
}

func expectToken(tok *token.Token, kind token.Kind, text string) error {
	if tok.Is(kind, text) {
		return nil
	}
	expected := kind.String()
	if text != "" {
		expected = fmt.Sprintf("%s:%q", kind, text)
	}
	return &ConsistencyError{
		Expected: expected,
		Got:      tok,
		Line:     tok.Start.Line,
		Col:      tok.Start.Col,
	}
}

// Unsupported records a node that has neither an anchor nor children. Its
// span falls back to the token inherited from its parent.
type Unsupported struct {
	Kind string
	Line int
	Col  int
}

func (u Unsupported) String() string {
	return fmt.Sprintf("%s at %d:%d has no position and no children", u.Kind, u.Line, u.Col+1)
}
