// Package token defines the tokens consumed by the span annotator.
//
// Kinds follow the Python tokenize module: structure-free comments and
// blank-line markers (COMMENT, NL) are "non-coding", every sequence ends in
// an ENDMARKER.
package token

import "fmt"

type Kind int

const (
	EndMarker Kind = iota
	Name
	Number
	String
	Newline
	Indent
	Dedent
	Op
	ErrorToken
	Comment
	NL
)

var kindNames = map[Kind]string{
	EndMarker:  "ENDMARKER",
	Name:       "NAME",
	Number:     "NUMBER",
	String:     "STRING",
	Newline:    "NEWLINE",
	Indent:     "INDENT",
	Dedent:     "DEDENT",
	Op:         "OP",
	ErrorToken: "ERRORTOKEN",
	Comment:    "COMMENT",
	NL:         "NL",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// LookupKind maps a tokenize kind name back to its Kind.
func LookupKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// IsNonCoding reports whether tokens of kind k carry no program structure.
func IsNonCoding(k Kind) bool {
	return k == Comment || k == NL
}

// Pos is a 1-based line and 0-based column.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Raw is a token as produced by a tokenizer, before it is placed in a
// sequence.
type Raw struct {
	Kind  Kind
	Text  string
	Start Pos
	End   Pos
}

// Token is immutable once created by the token store.
type Token struct {
	Kind        Kind
	Text        string
	Start       Pos
	End         Pos
	Index       int
	StartOffset int
	EndOffset   int
}

func (t *Token) String() string {
	return fmt.Sprintf("%s:%q", t.Kind, t.Text)
}

func (t *Token) IsEOF() bool {
	return t.Kind == EndMarker
}

func (t *Token) IsNonCoding() bool {
	return IsNonCoding(t.Kind)
}

// Is reports whether t has the given kind and, when text is not empty, the
// given literal text.
func (t *Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && (text == "" || t.Text == text)
}

// IsOp reports whether t is the operator op.
func (t *Token) IsOp(op string) bool {
	return t.Kind == Op && t.Text == op
}

var closers = map[string]string{
	"(": ")",
	"[": "]",
	"{": "}",
}

// Closer returns the closing bracket for an opening bracket token.
func Closer(t *Token) (string, bool) {
	if t.Kind != Op {
		return "", false
	}
	c, ok := closers[t.Text]
	return c, ok
}

func IsOpener(t *Token) bool {
	_, ok := Closer(t)
	return ok
}

func IsCloser(t *Token) bool {
	if t.Kind != Op {
		return false
	}
	switch t.Text {
	case ")", "]", "}":
		return true
	}
	return false
}
