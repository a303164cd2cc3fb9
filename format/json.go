package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/srcspan/span"
)

type JSONEncoder struct {
	w    io.Writer
	tree *span.Tree
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(t *span.Tree) error {
	e.tree = t
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.nodeToJSON(e.tree.Root()), "", "  ")
}

type jsonNode struct {
	Kind       string      `json:"kind"`
	FirstToken int         `json:"firstToken"`
	LastToken  int         `json:"lastToken"`
	Span       jsonSpan    `json:"span"`
	Text       string      `json:"text"`
	Children   []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start       jsonPosition `json:"start"`
	End         jsonPosition `json:"end"`
	StartOffset int          `json:"startOffset"`
	EndOffset   int          `json:"endOffset"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (e *JSONEncoder) nodeToJSON(n span.Node) *jsonNode {
	t := e.tree
	first, last := t.FirstToken(n), t.LastToken(n)
	start, end := t.TextRange(n)
	jn := &jsonNode{
		Kind:       t.Dialect().Kind(n),
		FirstToken: first.Index,
		LastToken:  last.Index,
		Span: jsonSpan{
			Start:       jsonPosition{Line: first.Start.Line, Column: first.Start.Col},
			End:         jsonPosition{Line: last.End.Line, Column: last.End.Col},
			StartOffset: start,
			EndOffset:   end,
		},
		Text: t.Text(n),
	}

	if kids := t.Children(n); len(kids) > 0 {
		jn.Children = make([]*jsonNode, len(kids))
		for i, child := range kids {
			jn.Children[i] = e.nodeToJSON(child)
		}
	}
	return jn
}
