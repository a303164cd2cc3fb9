package parser

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/srcspan/token"
)

const tabSize = 8

// TokenError reports input the tokenizer cannot split into tokens.
type TokenError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col+1, e.Msg)
}

// Lexer splits Python source into the tokens of the tokenize module.
// Columns are counted in code points.
type Lexer struct {
	file      string
	lines     []string
	lnum      int
	line      string
	ascii     bool
	tokens    []token.Raw
	indents   []int
	parenlev  int
	continued bool

	// An unterminated string continues on the next line.
	contstr  string
	strStart token.Pos
	strQuote string
	needcont bool
}

func NewLexer(src string, file string) *Lexer {
	lines := strings.SplitAfter(src, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &Lexer{
		file:    file,
		lines:   lines,
		indents: []int{0},
	}
}

// Tokenize returns the tokens of src.
func Tokenize(src string) ([]token.Raw, error) {
	return NewLexer(src, "<unknown>").Tokenize()
}

func (l *Lexer) Tokenize() ([]token.Raw, error) {
	for {
		done, err := l.nextLine()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	end := token.Pos{Line: l.lnum, Col: 0}
	for range l.indents[1:] {
		l.emit(token.Dedent, "", end, end)
	}
	l.emit(token.EndMarker, "", end, end)
	return l.tokens, nil
}

func (l *Lexer) errorf(line, col int, format string, args ...any) error {
	return &TokenError{File: l.file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) emit(kind token.Kind, text string, start, end token.Pos) {
	l.tokens = append(l.tokens, token.Raw{Kind: kind, Text: text, Start: start, End: end})
}

// col converts a byte position on the current line to a code point column.
func (l *Lexer) col(pos int) int {
	if l.ascii {
		return pos
	}
	return utf8.RuneCountInString(l.line[:pos])
}

func (l *Lexer) pos(pos int) token.Pos {
	return token.Pos{Line: l.lnum, Col: l.col(pos)}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// nextLine tokenizes one physical line and reports whether the input is
// exhausted.
func (l *Lexer) nextLine() (bool, error) {
	l.line = ""
	if l.lnum < len(l.lines) {
		l.line = l.lines[l.lnum]
	}
	l.lnum++
	l.ascii = isASCII(l.line)
	line := l.line
	pos := 0

	switch {
	case l.contstr != "":
		if line == "" {
			return false, l.errorf(l.strStart.Line, l.strStart.Col, "EOF in multi-line string")
		}
		if end, ok := findStringEnd(line, 0, l.strQuote); ok {
			l.emit(token.String, l.contstr+line[:end], l.strStart, l.pos(end))
			l.contstr, l.needcont = "", false
			pos = end
		} else if l.needcont && !strings.HasSuffix(line, "\\\n") && !strings.HasSuffix(line, "\\\r\n") {
			l.emit(token.ErrorToken, l.contstr+line, l.strStart, l.pos(len(line)))
			l.contstr, l.needcont = "", false
			return false, nil
		} else {
			l.contstr += line
			return false, nil
		}

	case l.parenlev == 0 && !l.continued:
		if line == "" {
			return true, nil
		}
		column := 0
	indent:
		for ; pos < len(line); pos++ {
			switch line[pos] {
			case ' ':
				column++
			case '\t':
				column = (column/tabSize + 1) * tabSize
			case '\f':
				column = 0
			default:
				break indent
			}
		}
		if pos == len(line) {
			return true, nil
		}

		if c := line[pos]; c == '#' || c == '\r' || c == '\n' {
			if c == '#' {
				comment := strings.TrimRight(line[pos:], "\r\n")
				l.emit(token.Comment, comment, l.pos(pos), l.pos(pos+len(comment)))
				pos += len(comment)
			}
			l.emit(token.NL, line[pos:], l.pos(pos), l.pos(len(line)))
			return false, nil
		}

		if column > l.indents[len(l.indents)-1] {
			l.indents = append(l.indents, column)
			l.emit(token.Indent, line[:pos], token.Pos{Line: l.lnum}, l.pos(pos))
		}
		for column < l.indents[len(l.indents)-1] {
			if !slices.Contains(l.indents, column) {
				return false, l.errorf(l.lnum, l.col(pos), "unindent does not match any outer indentation level")
			}
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(token.Dedent, "", l.pos(pos), l.pos(pos))
		}

	default:
		if line == "" {
			return false, l.errorf(l.lnum, 0, "EOF in multi-line statement")
		}
		l.continued = false
	}

	for pos < len(line) {
		next, err := l.scan(pos)
		if err != nil {
			return false, err
		}
		if next < 0 {
			break
		}
		pos = next
	}
	return false, nil
}

// scan emits the token starting at or after pos and returns the position
// after it, or -1 when the rest of the line is consumed by a string that
// continues on the next line.
func (l *Lexer) scan(pos int) (int, error) {
	line := l.line
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t' || line[pos] == '\f') {
		pos++
	}
	if pos == len(line) {
		return pos, nil
	}

	start := pos
	c := line[pos]
	switch {
	case c == '\\' && (strings.HasPrefix(line[pos:], "\\\n") || strings.HasPrefix(line[pos:], "\\\r\n")):
		l.continued = true
		return len(line), nil

	case c == '#':
		comment := strings.TrimRight(line[pos:], "\r\n")
		l.emit(token.Comment, comment, l.pos(pos), l.pos(pos+len(comment)))
		return pos + len(comment), nil

	case c == '\r' || c == '\n':
		kind := token.Newline
		if l.parenlev > 0 {
			kind = token.NL
		}
		l.emit(kind, line[pos:], l.pos(pos), l.pos(len(line)))
		return len(line), nil

	case isDigit(c) || (c == '.' && pos+1 < len(line) && isDigit(line[pos+1])):
		end := scanNumber(line, pos)
		l.emit(token.Number, line[start:end], l.pos(start), l.pos(end))
		return end, nil
	}

	if quote, n := stringStart(line, pos); n > 0 {
		return l.scanString(start, pos+n, quote)
	}

	if r, size := utf8.DecodeRuneInString(line[pos:]); isIdentStart(r) {
		end := pos + size
		for end < len(line) {
			r, size := utf8.DecodeRuneInString(line[end:])
			if !isIdentPart(r) {
				break
			}
			end += size
		}
		l.emit(token.Name, line[start:end], l.pos(start), l.pos(end))
		return end, nil
	}

	if op := matchOperator(line[pos:]); op != "" {
		switch op {
		case "(", "[", "{":
			l.parenlev++
		case ")", "]", "}":
			l.parenlev--
		}
		end := pos + len(op)
		l.emit(token.Op, op, l.pos(start), l.pos(end))
		return end, nil
	}

	_, size := utf8.DecodeRuneInString(line[pos:])
	l.emit(token.ErrorToken, line[pos:pos+size], l.pos(pos), l.pos(pos+size))
	return pos + size, nil
}

// scanString handles a string whose opening quote ends at body.
func (l *Lexer) scanString(start, body int, quote string) (int, error) {
	line := l.line
	if end, ok := findStringEnd(line, body, quote); ok {
		l.emit(token.String, line[start:end], l.pos(start), l.pos(end))
		return end, nil
	}

	if len(quote) == 3 {
		l.strStart = l.pos(start)
		l.strQuote = quote
		l.contstr = line[start:]
		return -1, nil
	}
	if strings.HasSuffix(line, "\\\n") || strings.HasSuffix(line, "\\\r\n") {
		l.strStart = l.pos(start)
		l.strQuote = quote
		l.contstr = line[start:]
		l.needcont = true
		return -1, nil
	}

	// An unterminated single-quoted string: the prefix is a name and the
	// quote an error token, and scanning resumes after the quote.
	q := body - 1
	if q > start {
		l.emit(token.Name, line[start:q], l.pos(start), l.pos(q))
	}
	l.emit(token.ErrorToken, line[q:body], l.pos(q), l.pos(body))
	return body, nil
}

// findStringEnd returns the position after the closing quote, searching
// from pos. A single-quoted string ends at the end of the line.
func findStringEnd(line string, pos int, quote string) (int, bool) {
	for i := pos; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\':
			i++
		case c == '\n' && len(quote) == 1:
			return 0, false
		case strings.HasPrefix(line[i:], quote):
			return i + len(quote), true
		}
	}
	return 0, false
}

var stringPrefixes = map[string]bool{
	"": true, "r": true, "u": true, "f": true, "b": true,
	"br": true, "rb": true, "fr": true, "rf": true,
}

// stringStart reports the quote of a string literal starting at pos and
// the length of its prefix and opening quote.
func stringStart(line string, pos int) (string, int) {
	i := pos
	for i < len(line) && i-pos < 2 && isLetter(line[i]) {
		i++
	}
	for ; i >= pos; i-- {
		if !stringPrefixes[strings.ToLower(line[pos:i])] || i >= len(line) {
			continue
		}
		switch rest := line[i:]; {
		case strings.HasPrefix(rest, `"""`):
			return `"""`, i - pos + 3
		case strings.HasPrefix(rest, "'''"):
			return "'''", i - pos + 3
		case rest[0] == '"':
			return `"`, i - pos + 1
		case rest[0] == '\'':
			return "'", i - pos + 1
		}
	}
	return "", 0
}

func scanNumber(line string, pos int) int {
	i := pos
	if line[i] == '0' && i+1 < len(line) && strings.ContainsRune("xXoObB", rune(line[i+1])) {
		i += 2
		for i < len(line) && (isHexDigit(line[i]) || line[i] == '_') {
			i++
		}
		return i
	}

	digits := func() {
		for i < len(line) && (isDigit(line[i]) || line[i] == '_') {
			i++
		}
	}
	digits()
	if i < len(line) && line[i] == '.' {
		i++
		digits()
	}
	if i < len(line) && (line[i] == 'e' || line[i] == 'E') {
		j := i + 1
		if j < len(line) && (line[j] == '+' || line[j] == '-') {
			j++
		}
		if j < len(line) && isDigit(line[j]) {
			i = j
			digits()
		}
	}
	if i < len(line) && (line[i] == 'j' || line[i] == 'J') {
		i++
	}
	return i
}

var operators = []string{
	"**=", ">>=", "<<=", "//=", "...",
	"**", ">>", "<<", "//", "->", ":=", "==", "!=", "<=", ">=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "<", ">", "=",
	"(", ")", "[", "]", "{", "}", ",", ":", ";", ".", "@",
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}
