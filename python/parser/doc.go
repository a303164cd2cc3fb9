// Package parser tokenizes and parses Python source into a generic tree.
//
// # Overview
//
// The package has two halves. The Lexer reproduces the token stream of
// Python's tokenize module: NEWLINE and NL, COMMENT, INDENT and DEDENT,
// strings spanning lines, and the ENDMARKER sentinel. Columns are counted
// in code points, lines from 1.
//
// The Parser is a recursive-descent parser over those tokens. It builds a
// tree of Node values whose shape follows Python's ast module closely
// enough for span annotation:
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│   Lexer     │────▶│   Parser    │
//	│  (string)   │     │ (token.Raw) │     │  (*Node)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │                   │
//	                           ▼                   ▼
//	                    ┌─────────────┐     ┌─────────────┐
//	                    │  span.Code  │     │  Anchors    │
//	                    │  (tokens)   │     │ (line, col) │
//	                    └─────────────┘     └─────────────┘
//
// # Anchors
//
// Every node that Python's ast module gives a position carries an anchor:
// its line and its column in UTF-8 bytes, like col_offset. The anchor of
// a compound expression is the first token of the production, so a binary
// operation over "(a) + b" is anchored at the parenthesis while the name
// inside it is anchored at "a". Nodes without a position in the ast
// module, such as comprehension clauses, arguments and with items, carry
// no anchor.
//
// A few conventions differ from the ast module so that every correction
// the span annotator knows is exercised:
//
//   - A list comprehension is anchored at its element, after the "[".
//   - A negative numeric literal "-1" is one Num node anchored at "-".
//   - A slice is anchored at its first token.
//
// Anchored nodes also record End, the position after their last token
// like end_col_offset, so their text can be found without tokens. Where
// the text starts before the anchor, Start records it: the "[" of a list
// comprehension and the first "@" of a decorated definition.
//
// # Markers
//
// Expression contexts (Load, Store, Del) and operator symbols are leaf
// nodes of kind Load, Store, Del and Operator. They cover no source text
// and are filtered by the dialect. The context of Name, Attribute,
// Subscript, Starred, List and Tuple nodes is their last child.
//
// # Errors
//
// Parsing stops at the first error. Finish returns a *SyntaxError or the
// lexer's *TokenError.
package parser
