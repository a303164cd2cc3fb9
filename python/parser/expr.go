package parser

import (
	"strings"

	"github.com/dhamidi/srcspan/token"
)

// parseTestListStarExpr parses a comma separated expression list. More
// than one element, or a trailing comma, makes a Tuple anchored at the
// first element.
func (p *Parser) parseTestListStarExpr() *Node {
	start := p.peek()
	first := p.parseTestOrStar()
	if !p.checkOp(",") {
		return first
	}
	node := p.startNode(KindTuple, start)
	node.AddChild(first)
	for p.matchOp(",") {
		if p.atExprEnd() {
			break
		}
		node.AddChild(p.parseTestOrStar())
	}
	node.AddChild(&Node{Kind: KindLoad})
	return p.closeNode(node)
}

// parseExprList parses the targets of del and for.
func (p *Parser) parseExprList() []*Node {
	var targets []*Node
	for {
		targets = append(targets, p.parseExprOrStar())
		if !p.matchOp(",") || p.atExprEnd() {
			break
		}
	}
	return targets
}

func (p *Parser) parseExprListNode() *Node {
	start := p.peek()
	first := p.parseExprOrStar()
	if !p.checkOp(",") {
		return first
	}
	node := p.startNode(KindTuple, start)
	node.AddChild(first)
	for p.matchOp(",") {
		if p.atExprEnd() {
			break
		}
		node.AddChild(p.parseExprOrStar())
	}
	node.AddChild(&Node{Kind: KindLoad})
	return p.closeNode(node)
}

// atExprEnd reports a token that cannot start an expression, ending a
// list after a trailing comma.
func (p *Parser) atExprEnd() bool {
	tok := p.peek()
	switch tok.Kind {
	case token.Newline, token.EndMarker, token.Dedent, token.Indent:
		return true
	case token.Op:
		switch tok.Text {
		case "(", "[", "{", "-", "+", "~", "*", "...":
			return false
		}
		return true
	case token.Name:
		switch tok.Text {
		case "in", "if", "for", "else", "and", "or", "as", "from", "async":
			return true
		}
	}
	return false
}

func (p *Parser) parseTestOrStar() *Node {
	if p.checkOp("*") {
		return p.parseStarred((*Parser).parseExpr)
	}
	return p.parseNamedExprTest()
}

func (p *Parser) parseExprOrStar() *Node {
	if p.checkOp("*") {
		return p.parseStarred((*Parser).parseExpr)
	}
	return p.parseExpr()
}

func (p *Parser) parseStarred(operand func(*Parser) *Node) *Node {
	node := p.startNode(KindStarred, p.expectOp("*"))
	node.AddChild(operand(p))
	node.AddChild(&Node{Kind: KindLoad})
	return p.closeNode(node)
}

// parseNamedExprTest parses a test that may be an assignment expression.
func (p *Parser) parseNamedExprTest() *Node {
	start := p.peek()
	if start.Kind == token.Name && !keywords[start.Text] {
		if next := p.peekN(1); next.Kind == token.Op && next.Text == ":=" {
			target := p.parseAtom()
			setCtx(target, KindStore)
			p.advance()
			node := p.startNode(KindNamedExpr, start)
			node.AddChild(target)
			node.AddChild(p.parseTest())
			return p.closeNode(node)
		}
	}
	return p.parseTest()
}

func (p *Parser) parseTest() *Node {
	if p.checkKeyword("lambda") {
		return p.parseLambda(true)
	}
	start := p.peek()
	body := p.parseOrTest()
	if !p.checkKeyword("if") {
		return body
	}
	p.advance()
	node := p.startNode(KindIfExp, start)
	node.AddChild(body)
	node.AddChild(p.parseOrTest())
	p.expectKeyword("else")
	node.AddChild(p.parseTest())
	return p.closeNode(node)
}

// parseTestNoCond parses the conditions of comprehensions, where a
// conditional expression would swallow the next "if".
func (p *Parser) parseTestNoCond() *Node {
	if p.checkKeyword("lambda") {
		return p.parseLambda(false)
	}
	return p.parseOrTest()
}

func (p *Parser) parseLambda(cond bool) *Node {
	node := p.startNode(KindLambda, p.expectKeyword("lambda"))
	node.AddChild(p.parseParameters(":", false))
	p.expectOp(":")
	if cond {
		node.AddChild(p.parseTest())
	} else {
		node.AddChild(p.parseTestNoCond())
	}
	return p.closeNode(node)
}

func (p *Parser) parseBoolOp(op string, operand func(*Parser) *Node) *Node {
	start := p.peek()
	first := operand(p)
	if !p.checkKeyword(op) {
		return first
	}
	node := p.startNode(KindBoolOp, start)
	node.AddChild(first)
	for p.matchKeyword(op) {
		node.AddChild(&Node{Kind: KindOperator, Value: op})
		node.AddChild(operand(p))
	}
	return p.closeNode(node)
}

func (p *Parser) parseOrTest() *Node {
	return p.parseBoolOp("or", (*Parser).parseAndTest)
}

func (p *Parser) parseAndTest() *Node {
	return p.parseBoolOp("and", (*Parser).parseNotTest)
}

func (p *Parser) parseNotTest() *Node {
	if tok := p.peek(); tok.Kind == token.Name && tok.Text == "not" {
		p.advance()
		node := p.startNode(KindUnaryOp, tok)
		node.AddChild(&Node{Kind: KindOperator, Value: "not"})
		node.AddChild(p.parseNotTest())
		return p.closeNode(node)
	}
	return p.parseComparison()
}

// compareOp consumes a comparison operator and returns its text.
func (p *Parser) compareOp() (string, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == token.Op:
		switch tok.Text {
		case "<", ">", "==", ">=", "<=", "!=":
			p.advance()
			return tok.Text, true
		}
	case tok.Kind == token.Name && tok.Text == "in":
		p.advance()
		return "in", true
	case tok.Kind == token.Name && tok.Text == "not":
		if next := p.peekN(1); next.Kind == token.Name && next.Text == "in" {
			p.advance()
			p.advance()
			return "not in", true
		}
	case tok.Kind == token.Name && tok.Text == "is":
		p.advance()
		if p.matchKeyword("not") {
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

func (p *Parser) parseComparison() *Node {
	start := p.peek()
	left := p.parseExpr()
	op, ok := p.compareOp()
	if !ok {
		return left
	}
	node := p.startNode(KindCompare, start)
	node.AddChild(left)
	for ok {
		node.AddChild(&Node{Kind: KindOperator, Value: op})
		node.AddChild(p.parseExpr())
		op, ok = p.compareOp()
	}
	return p.closeNode(node)
}

// binaryLevels lists the binary operators from the loosest binding to
// the tightest.
var binaryLevels = [][]string{
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "@", "/", "%", "//"},
}

func (p *Parser) parseExpr() *Node {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(level int) *Node {
	if level == len(binaryLevels) {
		return p.parseFactor()
	}
	start := p.peek()
	left := p.parseBinary(level + 1)
	for p.checkOp(binaryLevels[level]...) {
		op := p.advance()
		node := p.startNode(KindBinOp, start)
		node.AddChild(left)
		node.AddChild(&Node{Kind: KindOperator, Value: op.Text})
		node.AddChild(p.parseBinary(level + 1))
		left = p.closeNode(node)
	}
	return left
}

func (p *Parser) parseFactor() *Node {
	tok := p.peek()
	if tok.Kind != token.Op || (tok.Text != "-" && tok.Text != "+" && tok.Text != "~") {
		return p.parsePower()
	}
	p.advance()

	// "-1" is a single literal unless the number is the base of a power
	// or a trailer.
	if next := p.peek(); tok.Text == "-" && next.Kind == token.Number && !p.continuesPrimary(1) {
		p.advance()
		node := p.startNode(KindNum, tok)
		node.Value = "-" + next.Text
		return p.closeNode(node)
	}

	node := p.startNode(KindUnaryOp, tok)
	node.AddChild(&Node{Kind: KindOperator, Value: tok.Text})
	node.AddChild(p.parseFactor())
	return p.closeNode(node)
}

// continuesPrimary reports whether the token n ahead extends the primary
// before it.
func (p *Parser) continuesPrimary(n int) bool {
	tok := p.peekN(n)
	if tok.Kind != token.Op {
		return false
	}
	switch tok.Text {
	case "**", ".", "(", "[":
		return true
	}
	return false
}

func (p *Parser) parsePower() *Node {
	start := p.peek()
	base := p.parseAwait()
	if !p.matchOp("**") {
		return base
	}
	node := p.startNode(KindBinOp, start)
	node.AddChild(base)
	node.AddChild(&Node{Kind: KindOperator, Value: "**"})
	node.AddChild(p.parseFactor())
	return p.closeNode(node)
}

func (p *Parser) parseAwait() *Node {
	if tok := p.peek(); tok.Kind == token.Name && tok.Text == "await" {
		p.advance()
		node := p.startNode(KindAwait, tok)
		node.AddChild(p.parseAtomExpr())
		return p.closeNode(node)
	}
	return p.parseAtomExpr()
}

// parseAtomExpr parses an atom followed by calls, subscripts and
// attribute accesses, all anchored at the atom's first token.
func (p *Parser) parseAtomExpr() *Node {
	start := p.peek()
	node := p.parseAtom()
	for {
		switch {
		case p.checkOp("("):
			p.advance()
			call := p.startNode(KindCall, start)
			call.AddChild(node)
			for _, arg := range p.parseCallArguments() {
				call.AddChild(arg)
			}
			p.expectOp(")")
			node = p.closeNode(call)

		case p.checkOp("["):
			p.advance()
			sub := p.startNode(KindSubscript, start)
			sub.AddChild(node)
			sub.AddChild(p.parseSubscriptList())
			p.expectOp("]")
			sub.AddChild(&Node{Kind: KindLoad})
			node = p.closeNode(sub)

		case p.checkOp("."):
			p.advance()
			attr := p.startNode(KindAttribute, start)
			attr.AddChild(node)
			attr.Value = p.expectName().Text
			attr.AddChild(&Node{Kind: KindLoad})
			node = p.closeNode(attr)

		default:
			return node
		}
	}
}

// parseCallArguments parses the arguments after "(". A generator
// expression that is the only argument shares the call's parentheses
// and is anchored at the opening one.
func (p *Parser) parseCallArguments() []*Node {
	open := p.tokens[p.pos-1]
	var args []*Node
	for !p.checkOp(")") {
		arg := p.parseArgument()
		if len(args) == 0 && (p.checkKeyword("for") || p.checkKeyword("async")) {
			gen := p.startNode(KindGeneratorExp, open)
			gen.AddChild(arg)
			p.parseComprehensions(gen)
			if p.checkOp(")") {
				gen.End = p.bytePos(p.peek().End)
			}
			arg = gen
		}
		args = append(args, arg)
		if !p.matchOp(",") {
			break
		}
	}
	return args
}

// parseArguments parses class bases and keywords.
func (p *Parser) parseArguments() []*Node {
	var args []*Node
	for !p.checkOp(")") {
		args = append(args, p.parseArgument())
		if !p.matchOp(",") {
			break
		}
	}
	return args
}

func (p *Parser) parseArgument() *Node {
	tok := p.peek()
	switch {
	case tok.Kind == token.Op && tok.Text == "*":
		return p.parseStarred((*Parser).parseTest)
	case tok.Kind == token.Op && tok.Text == "**":
		p.advance()
		node := p.startNode(KindKeyword, tok)
		node.Value = "**"
		node.AddChild(p.parseTest())
		return p.closeNode(node)
	case tok.Kind == token.Name && !keywords[tok.Text]:
		if next := p.peekN(1); next.Kind == token.Op && next.Text == "=" {
			p.advance()
			p.advance()
			node := p.startNode(KindKeyword, tok)
			node.Value = tok.Text
			node.AddChild(p.parseTest())
			return p.closeNode(node)
		}
	}
	return p.parseNamedExprTest()
}

func (p *Parser) parseSubscriptList() *Node {
	start := p.peek()
	first := p.parseSubscript()
	if !p.checkOp(",") {
		return first
	}
	node := p.startNode(KindTuple, start)
	node.AddChild(first)
	for p.matchOp(",") {
		if p.checkOp("]") {
			break
		}
		node.AddChild(p.parseSubscript())
	}
	node.AddChild(&Node{Kind: KindLoad})
	return p.closeNode(node)
}

func (p *Parser) parseSubscript() *Node {
	start := p.peek()
	if p.checkOp("*") {
		return p.parseStarred((*Parser).parseExpr)
	}
	var lower *Node
	if !p.checkOp(":") {
		lower = p.parseNamedExprTest()
		if !p.checkOp(":") {
			return lower
		}
	}
	node := p.startNode(KindSlice, start)
	node.AddChild(lower)
	p.expectOp(":")
	if !p.checkOp(":", ",", "]") {
		node.AddChild(p.parseTest())
	}
	if p.matchOp(":") && !p.checkOp(",", "]") {
		node.AddChild(p.parseTest())
	}
	return p.closeNode(node)
}

func (p *Parser) parseAtom() *Node {
	tok := p.peek()
	switch tok.Kind {
	case token.Name:
		switch tok.Text {
		case "None", "True", "False":
			p.advance()
			node := p.startNode(KindNameConstant, tok)
			node.Value = tok.Text
			return p.closeNode(node)
		}
		p.expectName()
		node := p.startNode(KindName, tok)
		node.Value = tok.Text
		node.AddChild(&Node{Kind: KindLoad})
		return p.closeNode(node)

	case token.Number:
		p.advance()
		node := p.startNode(KindNum, tok)
		node.Value = tok.Text
		return p.closeNode(node)

	case token.String:
		return p.parseStrings()

	case token.Op:
		switch tok.Text {
		case "(":
			return p.parseParen()
		case "[":
			return p.parseList()
		case "{":
			return p.parseBrace()
		case "...":
			p.advance()
			return p.closeNode(p.startNode(KindEllipsis, tok))
		}
	}
	p.fail("expected an expression")
	return nil
}

// parseStrings parses adjacent string literals into one node.
func (p *Parser) parseStrings() *Node {
	tok := p.peek()
	kind := KindStr
	prefix := strings.ToLower(tok.Text[:strings.IndexAny(tok.Text, `'"`)])
	switch {
	case strings.Contains(prefix, "b"):
		kind = KindBytes
	case strings.Contains(prefix, "f"):
		kind = KindJoinedStr
	}
	node := p.startNode(kind, tok)
	var parts []string
	for p.check(token.String) {
		parts = append(parts, p.advance().Text)
	}
	node.Value = strings.Join(parts, " ")
	return p.closeNode(node)
}

func (p *Parser) parseParen() *Node {
	open := p.expectOp("(")
	if p.matchOp(")") {
		node := p.startNode(KindTuple, open)
		node.AddChild(&Node{Kind: KindLoad})
		return p.closeNode(node)
	}
	if p.checkKeyword("yield") {
		node := p.parseYield()
		p.expectOp(")")
		return node
	}

	first := p.parseTestOrStar()
	switch {
	case p.checkKeyword("for") || p.checkKeyword("async"):
		node := p.startNode(KindGeneratorExp, open)
		node.AddChild(first)
		p.parseComprehensions(node)
		p.expectOp(")")
		return p.closeNode(node)

	case p.checkOp(","):
		node := p.startNode(KindTuple, open)
		node.AddChild(first)
		for p.matchOp(",") && !p.checkOp(")") {
			node.AddChild(p.parseTestOrStar())
		}
		node.AddChild(&Node{Kind: KindLoad})
		p.expectOp(")")
		return p.closeNode(node)
	}
	p.expectOp(")")
	return first
}

func (p *Parser) parseList() *Node {
	open := p.expectOp("[")
	if p.matchOp("]") {
		node := p.startNode(KindList, open)
		node.AddChild(&Node{Kind: KindLoad})
		return p.closeNode(node)
	}

	start := p.peek()
	first := p.parseTestOrStar()
	if p.checkKeyword("for") || p.checkKeyword("async") {
		node := p.startNode(KindListComp, start)
		node.Start = p.anchor(open)
		node.AddChild(first)
		p.parseComprehensions(node)
		p.expectOp("]")
		return p.closeNode(node)
	}

	node := p.startNode(KindList, open)
	node.AddChild(first)
	for p.matchOp(",") && !p.checkOp("]") {
		node.AddChild(p.parseTestOrStar())
	}
	node.AddChild(&Node{Kind: KindLoad})
	p.expectOp("]")
	return p.closeNode(node)
}

func (p *Parser) parseBrace() *Node {
	open := p.expectOp("{")
	if p.matchOp("}") {
		return p.closeNode(p.startNode(KindDict, open))
	}

	if p.checkOp("**") {
		return p.parseDict(open)
	}
	first := p.parseTestOrStar()
	if p.checkOp(":") {
		p.advance()
		value := p.parseTest()
		if p.checkKeyword("for") || p.checkKeyword("async") {
			node := p.startNode(KindDictComp, open)
			node.AddChild(first)
			node.AddChild(value)
			p.parseComprehensions(node)
			p.expectOp("}")
			return p.closeNode(node)
		}
		node := p.startNode(KindDict, open)
		node.AddChild(first)
		node.AddChild(value)
		if p.matchOp(",") {
			p.parseDictItems(node)
		}
		p.expectOp("}")
		return p.closeNode(node)
	}

	if p.checkKeyword("for") || p.checkKeyword("async") {
		node := p.startNode(KindSetComp, open)
		node.AddChild(first)
		p.parseComprehensions(node)
		p.expectOp("}")
		return p.closeNode(node)
	}

	node := p.startNode(KindSet, open)
	node.AddChild(first)
	for p.matchOp(",") && !p.checkOp("}") {
		node.AddChild(p.parseTestOrStar())
	}
	p.expectOp("}")
	return p.closeNode(node)
}

func (p *Parser) parseDict(open token.Raw) *Node {
	node := p.startNode(KindDict, open)
	p.parseDictItems(node)
	p.expectOp("}")
	return p.closeNode(node)
}

// parseDictItems parses "key: value" and "**mapping" items up to the
// closing brace. Keys and values alternate in the children.
func (p *Parser) parseDictItems(node *Node) {
	for !p.checkOp("}") {
		if p.matchOp("**") {
			node.AddChild(p.parseExpr())
		} else {
			node.AddChild(p.parseTest())
			p.expectOp(":")
			node.AddChild(p.parseTest())
		}
		if !p.matchOp(",") {
			break
		}
	}
}

// parseComprehensions parses the "for" and "if" clauses of a
// comprehension. Clauses carry no anchor.
func (p *Parser) parseComprehensions(node *Node) {
	for p.checkKeyword("for") || p.checkKeyword("async") {
		p.matchKeyword("async")
		p.expectKeyword("for")
		comp := &Node{Kind: KindComprehension}
		target := p.parseExprListNode()
		setCtx(target, KindStore)
		comp.AddChild(target)
		p.expectKeyword("in")
		comp.AddChild(p.parseOrTest())
		for p.matchKeyword("if") {
			comp.AddChild(p.parseTestNoCond())
		}
		node.AddChild(comp)
	}
}

func (p *Parser) parseYield() *Node {
	tok := p.expectKeyword("yield")
	if p.matchKeyword("from") {
		node := p.startNode(KindYieldFrom, tok)
		node.AddChild(p.parseTest())
		return p.closeNode(node)
	}
	node := p.startNode(KindYield, tok)
	if !p.atExprEnd() {
		node.AddChild(p.parseTestListStarExpr())
	}
	return p.closeNode(node)
}
