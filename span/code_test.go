package span

import (
	"errors"
	"testing"

	"github.com/dhamidi/srcspan/token"
)

const importSource = "import re  # comment\n\nfoo = 'bar'\n"

func importTokens() []token.Raw {
	return []token.Raw{
		{Kind: token.Name, Text: "import", Start: token.Pos{Line: 1, Col: 0}, End: token.Pos{Line: 1, Col: 6}},
		{Kind: token.Name, Text: "re", Start: token.Pos{Line: 1, Col: 7}, End: token.Pos{Line: 1, Col: 9}},
		{Kind: token.Comment, Text: "# comment", Start: token.Pos{Line: 1, Col: 11}, End: token.Pos{Line: 1, Col: 20}},
		{Kind: token.Newline, Text: "\n", Start: token.Pos{Line: 1, Col: 20}, End: token.Pos{Line: 1, Col: 21}},
		{Kind: token.NL, Text: "\n", Start: token.Pos{Line: 2, Col: 0}, End: token.Pos{Line: 2, Col: 1}},
		{Kind: token.Name, Text: "foo", Start: token.Pos{Line: 3, Col: 0}, End: token.Pos{Line: 3, Col: 3}},
		{Kind: token.Op, Text: "=", Start: token.Pos{Line: 3, Col: 4}, End: token.Pos{Line: 3, Col: 5}},
		{Kind: token.String, Text: "'bar'", Start: token.Pos{Line: 3, Col: 6}, End: token.Pos{Line: 3, Col: 11}},
		{Kind: token.Newline, Text: "\n", Start: token.Pos{Line: 3, Col: 11}, End: token.Pos{Line: 3, Col: 12}},
		{Kind: token.EndMarker, Text: "", Start: token.Pos{Line: 4, Col: 0}, End: token.Pos{Line: 4, Col: 0}},
	}
}

func TestCodeTokens(t *testing.T) {
	code := NewCode(importSource, importTokens())

	if code.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", code.Len())
	}
	if !code.EndMarker().IsEOF() {
		t.Errorf("last token = %s, want ENDMARKER", code.EndMarker())
	}

	foo := code.TokenAtOffset(22)
	if !foo.Is(token.Name, "foo") || foo.StartOffset != 22 || foo.EndOffset != 25 {
		t.Errorf("TokenAtOffset(22) = %s [%d, %d), want NAME foo [22, 25)", foo, foo.StartOffset, foo.EndOffset)
	}

	for i, tok := range code.Tokens() {
		if tok.Index != i {
			t.Errorf("token %d has Index %d", i, tok.Index)
		}
		if got := importSource[tok.StartOffset:tok.EndOffset]; got != tok.Text {
			t.Errorf("token %d text at offsets = %q, want %q", i, got, tok.Text)
		}
	}
}

func TestCodeAppendsEndMarker(t *testing.T) {
	raw := importTokens()
	code := NewCode(importSource, raw[:len(raw)-1])
	if code.Len() != 10 || !code.EndMarker().IsEOF() {
		t.Fatalf("end-marker not appended: %d tokens, last %s", code.Len(), code.EndMarker())
	}
	if code.EndMarker().StartOffset != len(importSource) {
		t.Errorf("end-marker offset = %d, want %d", code.EndMarker().StartOffset, len(importSource))
	}

	empty := NewCode("", nil)
	if empty.Len() != 1 || !empty.Token(0).IsEOF() {
		t.Errorf("empty code has %d tokens", empty.Len())
	}
}

func TestTokenAtOffset(t *testing.T) {
	code := NewCode(importSource, importTokens())

	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{6, 0},
		{7, 1},
		{21, 4},
		{22, 5},
		{23, 5},
		{24, 5},
		{25, 5},
		{26, 6},
		{-5, 0},
		{1000, 9},
	}

	for _, tt := range tests {
		if got := code.TokenAtOffset(tt.offset); got.Index != tt.want {
			t.Errorf("TokenAtOffset(%d) = %d %s, want %d", tt.offset, got.Index, got, tt.want)
		}
	}

	if got := code.TokenAt(3, 4); !got.IsOp("=") {
		t.Errorf("TokenAt(3, 4) = %s, want =", got)
	}
}

func TestNextPrevToken(t *testing.T) {
	code := NewCode(importSource, importTokens())
	tok := code.Token

	tests := []struct {
		name    string
		got     func() (*token.Token, error)
		wantIdx int
	}{
		{"prev skips NL", func() (*token.Token, error) { return code.PrevToken(tok(5), false) }, 3},
		{"prev includes NL", func() (*token.Token, error) { return code.PrevToken(tok(5), true) }, 4},
		{"next skips comment", func() (*token.Token, error) { return code.NextToken(tok(1), false) }, 3},
		{"next includes comment", func() (*token.Token, error) { return code.NextToken(tok(1), true) }, 2},
		{"next reaches end-marker", func() (*token.Token, error) { return code.NextToken(tok(8), false) }, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Index != tt.wantIdx {
				t.Errorf("got token %d %s, want %d", got.Index, got, tt.wantIdx)
			}
		})
	}

	if _, err := code.NextToken(tok(9), false); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("NextToken(end-marker) error = %v, want ErrOutOfRange", err)
	}
	if _, err := code.PrevToken(tok(0), true); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("PrevToken(first) error = %v, want ErrOutOfRange", err)
	}
}

func TestFindToken(t *testing.T) {
	code := NewCode(importSource, importTokens())
	tok := code.Token

	tests := []struct {
		name    string
		got     *token.Token
		wantIdx int
	}{
		{"forward by literal", code.FindToken(tok(3), token.Name, "foo"), 5},
		{"backward by literal, no match", code.FindTokenBackward(tok(3), token.Name, "foo"), 9},
		{"backward by kind", code.FindTokenBackward(tok(3), token.Name, ""), 1},
		{"forward comment, no match", code.FindToken(tok(5), token.Comment, ""), 9},
		{"backward comment", code.FindTokenBackward(tok(5), token.Comment, ""), 2},
		{"forward newline", code.FindToken(tok(5), token.Newline, ""), 8},
		{"forward NL, no match", code.FindToken(tok(5), token.NL, ""), 9},
		{"start token matches", code.FindToken(tok(5), token.Name, ""), 5},
	}

	for _, tt := range tests {
		if tt.got.Index != tt.wantIdx {
			t.Errorf("%s: got %d %s, want %d", tt.name, tt.got.Index, tt.got, tt.wantIdx)
		}
	}
}

func TestTokenRange(t *testing.T) {
	code := NewCode(importSource, importTokens())
	seq := code.TokenRange(code.Token(1), code.Token(5), false)

	var coding []int
	for tok := range seq {
		coding = append(coding, tok.Index)
	}
	want := []int{1, 3, 5}
	if len(coding) != len(want) {
		t.Fatalf("TokenRange = %v, want %v", coding, want)
	}
	for i := range want {
		if coding[i] != want[i] {
			t.Errorf("TokenRange = %v, want %v", coding, want)
		}
	}

	// The sequence can be consumed again.
	n := 0
	for range seq {
		n++
	}
	if n != 3 {
		t.Errorf("second pass yielded %d tokens, want 3", n)
	}

	n = 0
	for range code.TokenRange(code.Token(1), code.Token(5), true) {
		n++
	}
	if n != 5 {
		t.Errorf("TokenRange with non-coding tokens yielded %d, want 5", n)
	}
}

func TestMonotonicNavigation(t *testing.T) {
	code := NewCode(importSource, importTokens())
	prev := -1
	for tok := code.Token(0); ; {
		if tok.Index <= prev {
			t.Fatalf("NextToken went from %d to %d", prev, tok.Index)
		}
		prev = tok.Index
		next, err := code.NextToken(tok, true)
		if err != nil {
			break
		}
		tok = next
	}
	if prev != 9 {
		t.Errorf("walk ended at %d, want 9", prev)
	}
}
