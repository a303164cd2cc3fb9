package span

import (
	"fmt"
	"iter"
	"sort"

	"github.com/dhamidi/srcspan/linenum"
	"github.com/dhamidi/srcspan/token"
)

type CodeOption func(*Code)

// WithTokenColumns sets the unit the tokenizer used for its columns. The
// default is Unicode code points.
func WithTokenColumns(u linenum.Unit) CodeOption {
	return func(c *Code) {
		c.unit = u
	}
}

// Code is the token sequence of one source text. It is immutable after
// NewCode returns.
type Code struct {
	text     string
	lines    *linenum.Index
	unit     linenum.Unit
	tokens   []token.Token
	starts   []int
	logical  []int
	physical []int
	brackets *BracketIndex
}

// NewCode places raw tokens into a sequence, computing their indices and
// offsets. An end-marker is appended when raw does not end with one.
func NewCode(text string, raw []token.Raw, opts ...CodeOption) *Code {
	c := &Code{
		text:  text,
		lines: linenum.New(text),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.tokens = make([]token.Token, 0, len(raw)+1)
	for _, r := range raw {
		c.add(r)
	}
	if n := len(c.tokens); n == 0 || c.tokens[n-1].Kind != token.EndMarker {
		end := token.Pos{Line: c.lines.NumLines() + 1}
		c.add(token.Raw{Kind: token.EndMarker, Start: end, End: end})
	}

	c.starts = make([]int, len(c.tokens))
	c.logical = make([]int, len(c.tokens)+1)
	c.physical = make([]int, len(c.tokens)+1)
	for i := range c.tokens {
		c.starts[i] = c.tokens[i].StartOffset
		c.logical[i+1] = c.logical[i]
		c.physical[i+1] = c.physical[i]
		switch c.tokens[i].Kind {
		case token.Newline:
			c.logical[i+1]++
		case token.NL:
			c.physical[i+1]++
		}
	}
	c.brackets = NewBracketIndex(c.tokens)

	log().Debugf("code: %d tokens, %d lines", len(c.tokens), c.lines.NumLines())
	return c
}

func (c *Code) add(r token.Raw) {
	c.tokens = append(c.tokens, token.Token{
		Kind:        r.Kind,
		Text:        r.Text,
		Start:       r.Start,
		End:         r.End,
		Index:       len(c.tokens),
		StartOffset: c.lines.LineToOffsetUnit(r.Start.Line, r.Start.Col, c.unit),
		EndOffset:   c.lines.LineToOffsetUnit(r.End.Line, r.End.Col, c.unit),
	})
}

func (c *Code) Text() string {
	return c.text
}

func (c *Code) Lines() *linenum.Index {
	return c.lines
}

// TokenColumns is the unit of the token positions.
func (c *Code) TokenColumns() linenum.Unit {
	return c.unit
}

func (c *Code) Tokens() []token.Token {
	return c.tokens
}

func (c *Code) Len() int {
	return len(c.tokens)
}

// Token returns the token at index i.
func (c *Code) Token(i int) *token.Token {
	return &c.tokens[i]
}

func (c *Code) EndMarker() *token.Token {
	return &c.tokens[len(c.tokens)-1]
}

func (c *Code) Brackets() *BracketIndex {
	return c.brackets
}

// TokenAtOffset returns the token containing offset, or the closest token
// before it when offset falls between tokens.
func (c *Code) TokenAtOffset(offset int) *token.Token {
	i := sort.SearchInts(c.starts, offset+1) - 1
	if i < 0 {
		i = 0
	}
	return &c.tokens[i]
}

// TokenAt returns the token at a rune column.
func (c *Code) TokenAt(line, col int) *token.Token {
	return c.TokenAtUnit(line, col, linenum.Runes)
}

// TokenAtUTF8 returns the token at a UTF-8 byte column.
func (c *Code) TokenAtUTF8(line, col int) *token.Token {
	return c.TokenAtUnit(line, col, linenum.Bytes)
}

func (c *Code) TokenAtUnit(line, col int, u linenum.Unit) *token.Token {
	return c.TokenAtOffset(c.lines.LineToOffsetUnit(line, col, u))
}

// NextToken returns the token after tok. Unless includeNonCoding is set,
// comments and blank-line tokens are skipped.
func (c *Code) NextToken(tok *token.Token, includeNonCoding bool) (*token.Token, error) {
	i := tok.Index + 1
	if !includeNonCoding {
		for i < len(c.tokens) && c.tokens[i].IsNonCoding() {
			i++
		}
	}
	if i >= len(c.tokens) {
		return nil, fmt.Errorf("next token after %s: %w", tok, ErrOutOfRange)
	}
	return &c.tokens[i], nil
}

// PrevToken returns the token before tok, skipping non-coding tokens unless
// includeNonCoding is set.
func (c *Code) PrevToken(tok *token.Token, includeNonCoding bool) (*token.Token, error) {
	i := tok.Index - 1
	if !includeNonCoding {
		for i >= 0 && c.tokens[i].IsNonCoding() {
			i--
		}
	}
	if i < 0 {
		return nil, fmt.Errorf("previous token before %s: %w", tok, ErrOutOfRange)
	}
	return &c.tokens[i], nil
}

// FindToken returns the first token at or after start matching kind and,
// if not empty, text. It returns the end-marker when nothing matches.
func (c *Code) FindToken(start *token.Token, kind token.Kind, text string) *token.Token {
	for i := start.Index; i < len(c.tokens); i++ {
		t := &c.tokens[i]
		if t.Is(kind, text) || t.IsEOF() {
			return t
		}
	}
	return c.EndMarker()
}

// FindTokenBackward is FindToken scanning towards the start. It also
// returns the end-marker when nothing matches.
func (c *Code) FindTokenBackward(start *token.Token, kind token.Kind, text string) *token.Token {
	for i := start.Index; i >= 0; i-- {
		t := &c.tokens[i]
		if t.Is(kind, text) || t.IsEOF() {
			return t
		}
	}
	return c.EndMarker()
}

// TokenRange yields the tokens from first to last inclusive.
func (c *Code) TokenRange(first, last *token.Token, includeNonCoding bool) iter.Seq[*token.Token] {
	return c.indexRange(first.Index, last.Index, includeNonCoding)
}

func (c *Code) indexRange(lo, hi int, includeNonCoding bool) iter.Seq[*token.Token] {
	return func(yield func(*token.Token) bool) {
		for i := max(lo, 0); i <= hi && i < len(c.tokens); i++ {
			t := &c.tokens[i]
			if !includeNonCoding && t.IsNonCoding() {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// hasNewline reports whether tokens lo..hi contain a logical NEWLINE.
func (c *Code) hasNewline(lo, hi int) bool {
	return c.logical[hi+1]-c.logical[lo] > 0
}

// hasNL reports whether tokens lo..hi contain a non-logical newline.
func (c *Code) hasNL(lo, hi int) bool {
	return c.physical[hi+1]-c.physical[lo] > 0
}
