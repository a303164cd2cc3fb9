package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/srcspan/token"
)

func kinds(toks []token.Raw) string {
	var names []string
	for _, tok := range toks {
		names = append(names, tok.Kind.String())
	}
	return strings.Join(names, " ")
}

func TestTokenizeImport(t *testing.T) {
	toks, err := Tokenize("import re  # comment\n\nfoo = 'bar'\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	want := []token.Raw{
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
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens (%s), want %d", len(toks), kinds(toks), len(want))
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, toks[i], want[i])
		}
	}
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"indent", "if x:\n    y\nz\n", "NAME NAME OP NEWLINE INDENT NAME NEWLINE DEDENT NAME NEWLINE ENDMARKER"},
		{"dedent at end of input", "if x:\n  y", "NAME NAME OP NEWLINE INDENT NAME DEDENT ENDMARKER"},
		{"no trailing newline", "x = 1", "NAME OP NUMBER ENDMARKER"},
		{"parenthesized continuation", "(a,\nb)", "OP NAME OP NL NAME OP ENDMARKER"},
		{"backslash continuation", "x = 1 + \\\n  2\n", "NAME OP NUMBER OP NUMBER NEWLINE ENDMARKER"},
		{"comment line", "# c\nx\n", "COMMENT NL NAME NEWLINE ENDMARKER"},
		{"indented comment", "if x:\n    y\n  # c\n    z\n", "NAME NAME OP NEWLINE INDENT NAME NEWLINE COMMENT NL NAME NEWLINE DEDENT ENDMARKER"},
		{"semicolons", "a; b\n", "NAME OP NAME NEWLINE ENDMARKER"},
		{"operators", "a **= b // c -> d := e\n", "NAME OP NAME OP NAME OP NAME OP NAME NEWLINE ENDMARKER"},
		{"ellipsis", "x[...]\n", "NAME OP OP OP NEWLINE ENDMARKER"},
		{"string prefixes", "rb'a' F\"b\" u'c'\n", "STRING STRING STRING NEWLINE ENDMARKER"},
		{"unterminated string", "x = 'abc\n", "NAME OP ERRORTOKEN NAME NEWLINE ENDMARKER"},
		{"error character", "a $ b\n", "NAME ERRORTOKEN NAME NEWLINE ENDMARKER"},
		{"empty", "", "ENDMARKER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.src)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.src, err)
			}
			if got := kinds(toks); got != tt.want {
				t.Errorf("Tokenize(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	toks, err := Tokenize("0x1F 1_000 3.14 1e-5 .5 2j 0o17 1.5E+3J\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"0x1F", "1_000", "3.14", "1e-5", ".5", "2j", "0o17", "1.5E+3J"}
	for i, w := range want {
		if toks[i].Kind != token.Number || toks[i].Text != w {
			t.Errorf("token %d = %s %q, want NUMBER %q", i, toks[i].Kind, toks[i].Text, w)
		}
	}
}

func TestTokenizeMultilineString(t *testing.T) {
	toks, err := Tokenize("x = '''a\nb''' + 'c\\\nd'\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if got := kinds(toks); got != "NAME OP STRING OP STRING NEWLINE ENDMARKER" {
		t.Fatalf("kinds = %s", got)
	}

	triple := toks[2]
	if triple.Text != "'''a\nb'''" {
		t.Errorf("triple-quoted text = %q", triple.Text)
	}
	if triple.Start != (token.Pos{Line: 1, Col: 4}) || triple.End != (token.Pos{Line: 2, Col: 4}) {
		t.Errorf("triple-quoted span = %s-%s, want 1:4-2:4", triple.Start, triple.End)
	}

	continued := toks[4]
	if continued.Text != "'c\\\nd'" {
		t.Errorf("continued text = %q", continued.Text)
	}
	if continued.End != (token.Pos{Line: 3, Col: 2}) {
		t.Errorf("continued end = %s, want 3:2", continued.End)
	}
}

func TestTokenizeColumnsAreRunes(t *testing.T) {
	toks, err := Tokenize("ф = 'ы'\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Text != "ф" || toks[0].End.Col != 1 {
		t.Errorf("name = %q ending at %d, want ф ending at 1", toks[0].Text, toks[0].End.Col)
	}
	if toks[2].Start.Col != 4 || toks[2].End.Col != 7 {
		t.Errorf("string spans columns %d-%d, want 4-7", toks[2].Start.Col, toks[2].End.Col)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"open triple quote", "x = '''abc\n", "EOF in multi-line string"},
		{"open bracket", "f(a,\n", "EOF in multi-line statement"},
		{"bad dedent", "if x:\n    a\n  b\n", "unindent does not match any outer indentation level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			var tokErr *TokenError
			if !errors.As(err, &tokErr) {
				t.Fatalf("Tokenize(%q) error = %v, want *TokenError", tt.src, err)
			}
			if tokErr.Msg != tt.msg {
				t.Errorf("message = %q, want %q", tokErr.Msg, tt.msg)
			}
		})
	}
}
