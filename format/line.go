package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/srcspan/span"
)

// LineEncoder writes one line per node in pre-order:
//
//	kind	first	last	start	end	text
//
// Kinds are indented two spaces per level and text is Go-quoted.
type LineEncoder struct {
	w    io.Writer
	tree *span.Tree
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(t *span.Tree) error {
	e.tree = t
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	t := e.tree
	t.Walk(func(n span.Node, depth int) bool {
		start, end := t.TextRange(n)
		fmt.Fprintf(&sb, "%s%s\t%d\t%d\t%d\t%d\t%s\n",
			strings.Repeat("  ", depth),
			t.Dialect().Kind(n),
			t.FirstToken(n).Index,
			t.LastToken(n).Index,
			start,
			end,
			strconv.Quote(t.Text(n)),
		)
		return true
	})
	return []byte(sb.String()), nil
}

// TokenLineEncoder writes one line per token:
//
//	index	KIND	text	start	end	startOffset	endOffset
type TokenLineEncoder struct {
	w    io.Writer
	code *span.Code
}

func NewTokenLineEncoder(w io.Writer) *TokenLineEncoder {
	return &TokenLineEncoder{w: w}
}

func (e *TokenLineEncoder) Encode(code *span.Code) error {
	e.code = code
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TokenLineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, tok := range e.code.Tokens() {
		fmt.Fprintf(&sb, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
			tok.Index,
			tok.Kind,
			strconv.Quote(tok.Text),
			tok.Start,
			tok.End,
			tok.StartOffset,
			tok.EndOffset,
		)
	}
	return []byte(sb.String()), nil
}
