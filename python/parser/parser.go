package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/srcspan/linenum"
	"github.com/dhamidi/srcspan/token"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// SyntaxError reports the first token the parser could not accept. Col
// counts code points from 0.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col+1, e.Msg)
}

// bailout unwinds the parser to Finish on the first error.
type bailout struct {
	err error
}

type Parser struct {
	file   string
	reader io.Reader
	src    string
	lines  *linenum.Index
	raw    []token.Raw
	tokens []token.Raw
	pos    int
}

// ParseModule prepares a parser for a whole module read from r. Parsing
// happens in Finish.
func ParseModule(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		file:   "<unknown>",
		reader: r,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Finish parses the input and returns the Module node.
func (p *Parser) Finish() (root *Node, err error) {
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.file, err)
	}
	p.src = string(data)
	p.lines = linenum.New(p.src)

	p.raw, err = NewLexer(p.src, p.file).Tokenize()
	if err != nil {
		return nil, err
	}
	p.tokens = p.tokens[:0]
	for _, tok := range p.raw {
		if !token.IsNonCoding(tok.Kind) {
			p.tokens = append(p.tokens, tok)
		}
	}
	p.pos = 0

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			root, err = nil, b.err
		}
	}()
	return p.parseModule(), nil
}

// Source returns the text read by Finish.
func (p *Parser) Source() string {
	return p.src
}

// Tokens returns every token of the input, comments and NL included.
func (p *Parser) Tokens() []token.Raw {
	return p.raw
}

// Parse parses src as a module.
func Parse(src string, opts ...Option) (*Node, []token.Raw, error) {
	p := ParseModule(strings.NewReader(src), opts...)
	root, err := p.Finish()
	if err != nil {
		return nil, nil, err
	}
	return root, p.Tokens(), nil
}

func (p *Parser) peek() token.Raw {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) token.Raw {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() token.Raw {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

// checkOp reports whether the next token is one of the operators.
func (p *Parser) checkOp(ops ...string) bool {
	tok := p.peek()
	if tok.Kind != token.Op {
		return false
	}
	for _, op := range ops {
		if tok.Text == op {
			return true
		}
	}
	return false
}

func (p *Parser) checkKeyword(kw string) bool {
	tok := p.peek()
	return tok.Kind == token.Name && tok.Text == kw
}

func (p *Parser) matchOp(op string) bool {
	if p.checkOp(op) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchKeyword(kw string) bool {
	if p.checkKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectOp(op string) token.Raw {
	if !p.checkOp(op) {
		p.fail("expected %q", op)
	}
	return p.advance()
}

func (p *Parser) expectKeyword(kw string) token.Raw {
	if !p.checkKeyword(kw) {
		p.fail("expected %q", kw)
	}
	return p.advance()
}

func (p *Parser) expect(kind token.Kind) token.Raw {
	if !p.check(kind) {
		p.fail("expected %s", kind)
	}
	return p.advance()
}

func (p *Parser) expectName() token.Raw {
	if !p.check(token.Name) || keywords[p.peek().Text] {
		p.fail("expected a name")
	}
	return p.advance()
}

func (p *Parser) fail(format string, args ...any) {
	tok := p.peek()
	msg := fmt.Sprintf(format, args...)
	if tok.Kind == token.EndMarker {
		msg += ", got end of input"
	} else {
		msg += fmt.Sprintf(", got %s %q", tok.Kind, tok.Text)
	}
	panic(bailout{&SyntaxError{File: p.file, Line: tok.Start.Line, Col: tok.Start.Col, Msg: msg}})
}

// anchor converts the start of tok to an anchor with a byte column.
func (p *Parser) anchor(tok token.Raw) *Pos {
	return p.bytePos(tok.Start)
}

func (p *Parser) bytePos(at token.Pos) *Pos {
	col := p.lines.LineToOffset(at.Line, at.Col) - p.lines.LineStart(at.Line)
	return &Pos{Line: at.Line, Col: col}
}

func (p *Parser) startNode(kind NodeKind, tok token.Raw) *Node {
	return &Node{Kind: kind, Pos: p.anchor(tok)}
}

// closeNode ends n after the last token consumed so far, unless n has
// no anchor or was closed before.
func (p *Parser) closeNode(n *Node) *Node {
	if n != nil && n.Pos != nil && n.End == nil {
		n.End = p.lastEnd()
	}
	return n
}

// lastEnd returns the end of the last consumed token, skipping line
// breaks and indentation.
func (p *Parser) lastEnd() *Pos {
	for i := p.pos - 1; i >= 0; i-- {
		switch tok := p.tokens[i]; tok.Kind {
		case token.Newline, token.Indent, token.Dedent, token.EndMarker:
		default:
			return p.bytePos(tok.End)
		}
	}
	return &Pos{Line: 1}
}

var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

func (p *Parser) parseModule() *Node {
	node := &Node{Kind: KindModule}
	for !p.check(token.EndMarker) {
		if p.check(token.Newline) {
			p.advance()
			continue
		}
		node.Children = append(node.Children, p.parseStatement()...)
	}
	return node
}

// parseStatement returns one compound statement or the simple statements
// of one logical line.
func (p *Parser) parseStatement() []*Node {
	tok := p.peek()
	if tok.Kind == token.Op && tok.Text == "@" {
		return []*Node{p.parseDecorated()}
	}
	if tok.Kind == token.Name {
		switch tok.Text {
		case "if":
			return []*Node{p.parseIf()}
		case "while":
			return []*Node{p.parseWhile()}
		case "for":
			return []*Node{p.parseFor(tok, KindFor)}
		case "try":
			return []*Node{p.parseTry()}
		case "with":
			return []*Node{p.parseWith(tok, KindWith)}
		case "def":
			return []*Node{p.parseFunctionDef(tok, KindFunctionDef, nil)}
		case "class":
			return []*Node{p.parseClassDef(nil)}
		case "async":
			return []*Node{p.parseAsync(nil)}
		}
	}
	return p.parseSimpleStatements()
}

func (p *Parser) parseSimpleStatements() []*Node {
	var stmts []*Node
	for {
		stmts = append(stmts, p.parseSmallStatement())
		if !p.matchOp(";") {
			break
		}
		if p.atLineEnd() {
			break
		}
	}
	if !p.atLineEnd() {
		p.fail("expected end of statement")
	}
	p.matchNewline()
	return stmts
}

// atLineEnd reports the end of a logical line. The last line of a file
// may end without a NEWLINE.
func (p *Parser) atLineEnd() bool {
	switch p.peek().Kind {
	case token.Newline, token.EndMarker, token.Dedent:
		return true
	}
	return false
}

func (p *Parser) matchNewline() {
	if p.check(token.Newline) {
		p.advance()
	}
}

func (p *Parser) parseSmallStatement() *Node {
	tok := p.peek()
	if tok.Kind == token.Name {
		switch tok.Text {
		case "pass":
			p.advance()
			return p.closeNode(p.startNode(KindPass, tok))
		case "break":
			p.advance()
			return p.closeNode(p.startNode(KindBreak, tok))
		case "continue":
			p.advance()
			return p.closeNode(p.startNode(KindContinue, tok))
		case "return":
			p.advance()
			node := p.startNode(KindReturn, tok)
			if !p.atLineEnd() && !p.checkOp(";") {
				node.AddChild(p.parseTestListStarExpr())
			}
			return p.closeNode(node)
		case "del":
			p.advance()
			node := p.startNode(KindDelete, tok)
			for _, target := range p.parseExprList() {
				setCtx(target, KindDel)
				node.AddChild(target)
			}
			return p.closeNode(node)
		case "raise":
			p.advance()
			node := p.startNode(KindRaise, tok)
			if !p.atLineEnd() && !p.checkOp(";") {
				node.AddChild(p.parseTest())
				if p.matchKeyword("from") {
					node.AddChild(p.parseTest())
				}
			}
			return p.closeNode(node)
		case "assert":
			p.advance()
			node := p.startNode(KindAssert, tok)
			node.AddChild(p.parseTest())
			if p.matchOp(",") {
				node.AddChild(p.parseTest())
			}
			return p.closeNode(node)
		case "global", "nonlocal":
			p.advance()
			kind := KindGlobal
			if tok.Text == "nonlocal" {
				kind = KindNonlocal
			}
			node := p.startNode(kind, tok)
			node.Value = p.expectName().Text
			for p.matchOp(",") {
				node.Value += "," + p.expectName().Text
			}
			return p.closeNode(node)
		case "import":
			return p.parseImport()
		case "from":
			return p.parseImportFrom()
		}
	}
	return p.parseExprStatement()
}

var augAssignOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "@=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, "**=": true, "//=": true,
}

func (p *Parser) parseExprStatement() *Node {
	start := p.peek()
	first := p.parseYieldOrTestList()

	switch tok := p.peek(); {
	case tok.Kind == token.Op && tok.Text == ":":
		p.advance()
		node := p.startNode(KindAnnAssign, start)
		setCtx(first, KindStore)
		node.AddChild(first)
		node.AddChild(p.parseTest())
		if p.matchOp("=") {
			node.AddChild(p.parseYieldOrTestList())
		}
		return p.closeNode(node)

	case tok.Kind == token.Op && augAssignOps[tok.Text]:
		p.advance()
		node := p.startNode(KindAugAssign, start)
		setCtx(first, KindStore)
		node.AddChild(first)
		node.AddChild(&Node{Kind: KindOperator, Value: tok.Text[:len(tok.Text)-1]})
		node.AddChild(p.parseYieldOrTestList())
		return p.closeNode(node)

	case tok.Kind == token.Op && tok.Text == "=":
		node := p.startNode(KindAssign, start)
		value := first
		for p.matchOp("=") {
			setCtx(value, KindStore)
			node.AddChild(value)
			value = p.parseYieldOrTestList()
		}
		node.AddChild(value)
		return p.closeNode(node)
	}

	node := p.startNode(KindExpr, start)
	node.AddChild(first)
	return p.closeNode(node)
}

func (p *Parser) parseYieldOrTestList() *Node {
	if p.checkKeyword("yield") {
		return p.parseYield()
	}
	return p.parseTestListStarExpr()
}

func (p *Parser) parseImport() *Node {
	node := p.startNode(KindImport, p.expectKeyword("import"))
	for {
		node.AddChild(p.parseAlias(true))
		if !p.matchOp(",") {
			break
		}
	}
	return p.closeNode(node)
}

func (p *Parser) parseImportFrom() *Node {
	node := p.startNode(KindImportFrom, p.expectKeyword("from"))
	for p.checkOp(".", "...") {
		node.Value += p.advance().Text
	}
	if !p.checkKeyword("import") {
		node.Value += p.parseDottedName()
	}
	p.expectKeyword("import")

	if tok := p.peek(); tok.Kind == token.Op && tok.Text == "*" {
		p.advance()
		alias := p.startNode(KindAlias, tok)
		alias.Value = "*"
		node.AddChild(p.closeNode(alias))
		return p.closeNode(node)
	}

	paren := p.matchOp("(")
	for {
		node.AddChild(p.parseAlias(false))
		if !p.matchOp(",") {
			break
		}
		if paren && p.checkOp(")") {
			break
		}
	}
	if paren {
		p.expectOp(")")
	}
	return p.closeNode(node)
}

func (p *Parser) parseAlias(dotted bool) *Node {
	node := p.startNode(KindAlias, p.peek())
	if dotted {
		node.Value = p.parseDottedName()
	} else {
		node.Value = p.expectName().Text
	}
	if p.matchKeyword("as") {
		node.Value += " as " + p.expectName().Text
	}
	return p.closeNode(node)
}

func (p *Parser) parseDottedName() string {
	name := p.expectName().Text
	for p.checkOp(".") {
		p.advance()
		name += "." + p.expectName().Text
	}
	return name
}

// parseBlock parses the body of a compound statement after its colon.
func (p *Parser) parseBlock() []*Node {
	if !p.check(token.Newline) {
		return p.parseSimpleStatements()
	}
	p.advance()
	p.expect(token.Indent)
	var stmts []*Node
	for !p.check(token.Dedent) && !p.check(token.EndMarker) {
		if p.check(token.Newline) {
			p.advance()
			continue
		}
		stmts = append(stmts, p.parseStatement()...)
	}
	p.expect(token.Dedent)
	return stmts
}

func (p *Parser) addBlock(node *Node) {
	p.expectOp(":")
	for _, stmt := range p.parseBlock() {
		node.AddChild(stmt)
	}
}

func (p *Parser) parseIf() *Node {
	node := p.startNode(KindIf, p.advance())
	node.AddChild(p.parseNamedExprTest())
	p.addBlock(node)

	switch {
	case p.checkKeyword("elif"):
		node.AddChild(p.parseIf())
	case p.matchKeyword("else"):
		p.addBlock(node)
	}
	return p.closeNode(node)
}

func (p *Parser) parseWhile() *Node {
	node := p.startNode(KindWhile, p.expectKeyword("while"))
	node.AddChild(p.parseNamedExprTest())
	p.addBlock(node)
	if p.matchKeyword("else") {
		p.addBlock(node)
	}
	return p.closeNode(node)
}

func (p *Parser) parseFor(start token.Raw, kind NodeKind) *Node {
	node := p.startNode(kind, start)
	p.expectKeyword("for")
	target := p.parseExprListNode()
	setCtx(target, KindStore)
	node.AddChild(target)
	p.expectKeyword("in")
	node.AddChild(p.parseTestListStarExpr())
	p.addBlock(node)
	if p.matchKeyword("else") {
		p.addBlock(node)
	}
	return p.closeNode(node)
}

func (p *Parser) parseTry() *Node {
	node := p.startNode(KindTry, p.expectKeyword("try"))
	p.addBlock(node)

	handlers := 0
	for p.checkKeyword("except") {
		handler := p.startNode(KindExceptHandler, p.advance())
		if !p.checkOp(":") {
			handler.AddChild(p.parseTest())
			if p.matchKeyword("as") {
				handler.Value = p.expectName().Text
			}
		}
		p.addBlock(handler)
		node.AddChild(p.closeNode(handler))
		handlers++
	}
	if handlers > 0 && p.matchKeyword("else") {
		p.addBlock(node)
	}
	if p.matchKeyword("finally") {
		p.addBlock(node)
	} else if handlers == 0 {
		p.fail("expected \"except\" or \"finally\"")
	}
	return p.closeNode(node)
}

func (p *Parser) parseWith(start token.Raw, kind NodeKind) *Node {
	node := p.startNode(kind, start)
	p.expectKeyword("with")
	for {
		item := &Node{Kind: KindWithItem}
		item.AddChild(p.parseTest())
		if p.matchKeyword("as") {
			target := p.parseExpr()
			setCtx(target, KindStore)
			item.AddChild(target)
		}
		node.AddChild(item)
		if !p.matchOp(",") {
			break
		}
	}
	p.addBlock(node)
	return p.closeNode(node)
}

func (p *Parser) parseAsync(decorators []*Node) *Node {
	start := p.expectKeyword("async")
	switch {
	case p.checkKeyword("def"):
		return p.parseFunctionDef(start, KindAsyncFunctionDef, decorators)
	case decorators != nil:
		p.fail("expected \"def\"")
	case p.checkKeyword("for"):
		return p.parseFor(start, KindAsyncFor)
	case p.checkKeyword("with"):
		return p.parseWith(start, KindAsyncWith)
	}
	p.fail("expected \"def\", \"for\" or \"with\"")
	return nil
}

func (p *Parser) parseDecorated() *Node {
	at := p.peek()
	var decorators []*Node
	for p.matchOp("@") {
		decorators = append(decorators, p.parseNamedExprTest())
		p.expect(token.Newline)
	}
	var node *Node
	switch tok := p.peek(); {
	case tok.Kind == token.Name && tok.Text == "def":
		node = p.parseFunctionDef(tok, KindFunctionDef, decorators)
	case tok.Kind == token.Name && tok.Text == "class":
		node = p.parseClassDef(decorators)
	case tok.Kind == token.Name && tok.Text == "async":
		node = p.parseAsync(decorators)
	default:
		p.fail("expected a definition after decorators")
	}
	node.Start = p.anchor(at)
	return node
}

func (p *Parser) parseFunctionDef(start token.Raw, kind NodeKind, decorators []*Node) *Node {
	node := p.startNode(kind, start)
	node.Children = append(node.Children, decorators...)
	p.expectKeyword("def")
	node.Value = p.expectName().Text
	p.expectOp("(")
	node.AddChild(p.parseParameters(")", true))
	p.expectOp(")")
	if p.matchOp("->") {
		node.AddChild(p.parseTest())
	}
	p.addBlock(node)
	return p.closeNode(node)
}

func (p *Parser) parseClassDef(decorators []*Node) *Node {
	node := p.startNode(KindClassDef, p.expectKeyword("class"))
	node.Children = append(node.Children, decorators...)
	node.Value = p.expectName().Text
	if p.matchOp("(") {
		for _, arg := range p.parseArguments() {
			node.AddChild(arg)
		}
		p.expectOp(")")
	}
	p.addBlock(node)
	return p.closeNode(node)
}

// parseParameters parses a parameter list up to the closing token. The
// children of the arguments node alternate parameters and their defaults
// in source order.
func (p *Parser) parseParameters(closer string, annotated bool) *Node {
	node := &Node{Kind: KindArguments}
	for !p.checkOp(closer) {
		switch {
		case p.matchOp("/"):
		case p.checkOp("*", "**"):
			p.advance()
			if p.check(token.Name) {
				node.AddChild(p.parseParameter(annotated))
			}
		default:
			node.AddChild(p.parseParameter(annotated))
			if p.matchOp("=") {
				node.AddChild(p.parseTest())
			}
		}
		if !p.matchOp(",") {
			break
		}
	}
	return node
}

func (p *Parser) parseParameter(annotated bool) *Node {
	name := p.expectName()
	node := p.startNode(KindArg, name)
	node.Value = name.Text
	if annotated && p.matchOp(":") {
		node.AddChild(p.parseTest())
	}
	return p.closeNode(node)
}
