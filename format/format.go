// Package format renders annotated trees and token sequences as
// tab-separated lines or JSON.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/srcspan/span"
)

// Encoder writes the nodes of an annotated tree.
type Encoder interface {
	encoding.TextMarshaler
	Encode(t *span.Tree) error
}

// TokenEncoder writes a token sequence.
type TokenEncoder interface {
	encoding.TextMarshaler
	Encode(code *span.Code) error
}

// NewEncoder returns the tree encoder called name: "line" or "json".
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "line", "":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}

// NewTokenEncoder returns the token encoder called name.
func NewTokenEncoder(name string, w io.Writer) (TokenEncoder, error) {
	switch name {
	case "line", "":
		return NewTokenLineEncoder(w), nil
	case "json":
		return NewTokenJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}
