package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dhamidi/srcspan/python/stdast"
	"github.com/dhamidi/srcspan/span"
)

func mustAnnotate(t *testing.T, src string) *span.Tree {
	t.Helper()
	tree, err := stdast.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return tree
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(mustAnnotate(t, "x = 1\n")); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "Module\t0\t2\t0\t5\t\"x = 1\"\n" +
		"  Assign\t0\t2\t0\t5\t\"x = 1\"\n" +
		"    Name\t0\t0\t0\t1\t\"x\"\n" +
		"    Num\t2\t2\t4\t5\t\"1\"\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}

func TestTokenLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	tree := mustAnnotate(t, "x = 1\n")
	if err := NewTokenLineEncoder(&buf).Encode(tree.Code()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "0\tNAME\t\"x\"\t1:0\t1:1\t0\t1\n" +
		"1\tOP\t\"=\"\t1:2\t1:3\t2\t3\n" +
		"2\tNUMBER\t\"1\"\t1:4\t1:5\t4\t5\n" +
		"3\tNEWLINE\t\"\\n\"\t1:5\t1:6\t5\t6\n" +
		"4\tENDMARKER\t\"\"\t2:0\t2:0\t6\t6\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(mustAnnotate(t, "f(a)\n")); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var root jsonNode
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if root.Kind != "Module" || len(root.Children) != 1 {
		t.Fatalf("root = %s with %d children", root.Kind, len(root.Children))
	}
	call := root.Children[0].Children[0]
	if call.Kind != "Call" || call.Text != "f(a)" {
		t.Errorf("call = %s %q, want Call \"f(a)\"", call.Kind, call.Text)
	}
	if call.FirstToken != 0 || call.LastToken != 3 {
		t.Errorf("call tokens = [%d, %d], want [0, 3]", call.FirstToken, call.LastToken)
	}
	if call.Span.End != (jsonPosition{Line: 1, Column: 4}) || call.Span.EndOffset != 4 {
		t.Errorf("call ends at %+v offset %d", call.Span.End, call.Span.EndOffset)
	}
}

func TestTokenJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	tree := mustAnnotate(t, "pass\n")
	if err := NewTokenJSONEncoder(&buf).Encode(tree.Code()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var tokens []jsonToken
	if err := json.Unmarshal(buf.Bytes(), &tokens); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(tokens) != 3 || tokens[0].Kind != "NAME" || tokens[2].Kind != "ENDMARKER" {
		t.Errorf("tokens = %+v", tokens)
	}
}

func TestNewEncoder(t *testing.T) {
	for _, name := range []string{"line", "json"} {
		if _, err := NewEncoder(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewEncoder(%q): %v", name, err)
		}
		if _, err := NewTokenEncoder(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewTokenEncoder(%q): %v", name, err)
		}
	}
	if _, err := NewEncoder("xml", &bytes.Buffer{}); err == nil {
		t.Errorf("NewEncoder(xml) succeeded")
	}
}
