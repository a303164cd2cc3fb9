package parser

import (
	"fmt"
	"strings"
)

type NodeKind int

const (
	KindError NodeKind = iota

	KindModule

	// Statements
	KindFunctionDef
	KindAsyncFunctionDef
	KindClassDef
	KindReturn
	KindDelete
	KindAssign
	KindAugAssign
	KindAnnAssign
	KindFor
	KindAsyncFor
	KindWhile
	KindIf
	KindWith
	KindAsyncWith
	KindRaise
	KindTry
	KindAssert
	KindImport
	KindImportFrom
	KindGlobal
	KindNonlocal
	KindExpr
	KindPass
	KindBreak
	KindContinue

	// Expressions
	KindBoolOp
	KindNamedExpr
	KindBinOp
	KindUnaryOp
	KindLambda
	KindIfExp
	KindDict
	KindSet
	KindListComp
	KindSetComp
	KindDictComp
	KindGeneratorExp
	KindAwait
	KindYield
	KindYieldFrom
	KindCompare
	KindCall
	KindNum
	KindStr
	KindBytes
	KindJoinedStr
	KindNameConstant
	KindEllipsis
	KindAttribute
	KindSubscript
	KindStarred
	KindName
	KindList
	KindTuple

	// Parts
	KindComprehension
	KindExceptHandler
	KindArguments
	KindArg
	KindKeyword
	KindAlias
	KindWithItem
	KindSlice

	// Markers
	KindLoad
	KindStore
	KindDel
	KindOperator
)

var nodeKindNames = map[NodeKind]string{
	KindError:            "Error",
	KindModule:           "Module",
	KindFunctionDef:      "FunctionDef",
	KindAsyncFunctionDef: "AsyncFunctionDef",
	KindClassDef:         "ClassDef",
	KindReturn:           "Return",
	KindDelete:           "Delete",
	KindAssign:           "Assign",
	KindAugAssign:        "AugAssign",
	KindAnnAssign:        "AnnAssign",
	KindFor:              "For",
	KindAsyncFor:         "AsyncFor",
	KindWhile:            "While",
	KindIf:               "If",
	KindWith:             "With",
	KindAsyncWith:        "AsyncWith",
	KindRaise:            "Raise",
	KindTry:              "Try",
	KindAssert:           "Assert",
	KindImport:           "Import",
	KindImportFrom:       "ImportFrom",
	KindGlobal:           "Global",
	KindNonlocal:         "Nonlocal",
	KindExpr:             "Expr",
	KindPass:             "Pass",
	KindBreak:            "Break",
	KindContinue:         "Continue",
	KindBoolOp:           "BoolOp",
	KindNamedExpr:        "NamedExpr",
	KindBinOp:            "BinOp",
	KindUnaryOp:          "UnaryOp",
	KindLambda:           "Lambda",
	KindIfExp:            "IfExp",
	KindDict:             "Dict",
	KindSet:              "Set",
	KindListComp:         "ListComp",
	KindSetComp:          "SetComp",
	KindDictComp:         "DictComp",
	KindGeneratorExp:     "GeneratorExp",
	KindAwait:            "Await",
	KindYield:            "Yield",
	KindYieldFrom:        "YieldFrom",
	KindCompare:          "Compare",
	KindCall:             "Call",
	KindNum:              "Num",
	KindStr:              "Str",
	KindBytes:            "Bytes",
	KindJoinedStr:        "JoinedStr",
	KindNameConstant:     "NameConstant",
	KindEllipsis:         "Ellipsis",
	KindAttribute:        "Attribute",
	KindSubscript:        "Subscript",
	KindStarred:          "Starred",
	KindName:             "Name",
	KindList:             "List",
	KindTuple:            "Tuple",
	KindComprehension:    "comprehension",
	KindExceptHandler:    "ExceptHandler",
	KindArguments:        "arguments",
	KindArg:              "arg",
	KindKeyword:          "keyword",
	KindAlias:            "alias",
	KindWithItem:         "withitem",
	KindSlice:            "Slice",
	KindLoad:             "Load",
	KindStore:            "Store",
	KindDel:              "Del",
	KindOperator:         "Operator",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsContext reports the Load, Store and Del markers.
func (k NodeKind) IsContext() bool {
	return k == KindLoad || k == KindStore || k == KindDel
}

// IsMarker reports kinds that cover no source text.
func (k NodeKind) IsMarker() bool {
	return k.IsContext() || k == KindOperator
}

func (k NodeKind) IsStmt() bool {
	return k >= KindFunctionDef && k <= KindContinue
}

func (k NodeKind) IsExpr() bool {
	return k >= KindBoolOp && k <= KindTuple
}

// Pos is a node's anchor. Col counts UTF-8 bytes from the start of the
// line.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is a syntax tree node. End is where the node's text ends, like
// end_col_offset. Start is set when the text begins before the anchor: at
// the "[" of a list comprehension and the "@" of a decorated definition.
type Node struct {
	Kind     NodeKind
	Pos      *Pos
	Start    *Pos
	End      *Pos
	Value    string
	Children []*Node
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

// Context returns the context marker of n, or nil.
func (n *Node) Context() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	if last := n.Children[len(n.Children)-1]; last.Kind.IsContext() {
		return last
	}
	return nil
}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, indent int) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind.String())
	if n.Pos != nil {
		b.WriteString(" @" + n.Pos.String())
	}
	if n.Value != "" {
		b.WriteString(" " + n.Value)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.write(b, indent+1)
	}
}

// Dump renders the structure of n on one line without positions and
// context markers. Two trees parsed from equivalent code dump the same.
func (n *Node) Dump() string {
	var b strings.Builder
	type item struct {
		n     *Node
		close bool
	}
	stack := []item{{n: n}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.close {
			b.WriteByte(')')
			continue
		}
		if it.n.Kind.IsContext() {
			continue
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "(") {
			b.WriteByte(' ')
		}
		b.WriteString(it.n.Kind.String())
		if it.n.Value != "" {
			b.WriteString(fmt.Sprintf("[%s]", it.n.Value))
		}
		b.WriteByte('(')
		stack = append(stack, item{close: true})
		for i := len(it.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{n: it.n.Children[i]})
		}
	}
	return b.String()
}

// setCtx rewrites the context of an assignment or deletion target.
func setCtx(n *Node, kind NodeKind) {
	stack := []*Node{n}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ctx := n.Context()
		if ctx == nil {
			continue
		}
		ctx.Kind = kind
		switch n.Kind {
		case KindList, KindTuple:
			stack = append(stack, n.Children[:len(n.Children)-1]...)
		case KindStarred:
			stack = append(stack, n.Children[0])
		}
	}
}
