package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/srcspan/span"
)

type TokenJSONEncoder struct {
	w    io.Writer
	code *span.Code
}

func NewTokenJSONEncoder(w io.Writer) *TokenJSONEncoder {
	return &TokenJSONEncoder{w: w}
}

func (e *TokenJSONEncoder) Encode(code *span.Code) error {
	e.code = code
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

type jsonToken struct {
	Index       int          `json:"index"`
	Kind        string       `json:"kind"`
	Text        string       `json:"text"`
	Start       jsonPosition `json:"start"`
	End         jsonPosition `json:"end"`
	StartOffset int          `json:"startOffset"`
	EndOffset   int          `json:"endOffset"`
}

func (e *TokenJSONEncoder) MarshalText() ([]byte, error) {
	tokens := e.code.Tokens()
	out := make([]jsonToken, len(tokens))
	for i, tok := range tokens {
		out[i] = jsonToken{
			Index:       tok.Index,
			Kind:        tok.Kind.String(),
			Text:        tok.Text,
			Start:       jsonPosition{Line: tok.Start.Line, Column: tok.Start.Col},
			End:         jsonPosition{Line: tok.End.Line, Column: tok.End.Col},
			StartOffset: tok.StartOffset,
			EndOffset:   tok.EndOffset,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
