// Package linenum converts between (line, column) coordinates and byte
// offsets into a source text.
//
// Lines are 1-based and columns 0-based. Offsets are byte offsets into the
// Go string. Columns are counted in a Unit, which defaults to Unicode code
// points; tree builders that report UTF-8 byte columns (or editors that
// speak UTF-16) convert through the same index.
package linenum

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

type Unit int

const (
	Runes Unit = iota
	Bytes
	UTF16
)

var unitNames = map[Unit]string{
	Runes: "runes",
	Bytes: "bytes",
	UTF16: "utf16",
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "Unknown"
}

type Index struct {
	text   string
	starts []int
}

func New(text string) *Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, starts: starts}
}

func (ix *Index) Text() string {
	return ix.text
}

// NumLines counts the text after a trailing newline as its own (empty) line.
func (ix *Index) NumLines() int {
	return len(ix.starts)
}

// LineStart returns the offset of the first byte of line, clamped to the text.
func (ix *Index) LineStart(line int) int {
	switch {
	case line < 1:
		return 0
	case line > len(ix.starts):
		return len(ix.text)
	}
	return ix.starts[line-1]
}

// LineText returns line including its terminating newline.
func (ix *Index) LineText(line int) string {
	if line < 1 || line > len(ix.starts) {
		return ""
	}
	end := len(ix.text)
	if line < len(ix.starts) {
		end = ix.starts[line]
	}
	return ix.text[ix.starts[line-1]:end]
}

// LineToOffset converts a rune column on line to an offset.
func (ix *Index) LineToOffset(line, col int) int {
	return ix.LineToOffsetUnit(line, col, Runes)
}

// LineToOffsetUnit converts a column counted in u to an offset. A line past
// the end maps to the text length and a line before the start maps to 0. A
// column is not bounded by its line, only by the end of the text.
func (ix *Index) LineToOffsetUnit(line, col int, u Unit) int {
	if line > len(ix.starts) {
		return len(ix.text)
	}
	if line < 1 {
		return 0
	}
	start := ix.starts[line-1]
	return start + advance(ix.text[start:], max(0, col), u)
}

// OffsetToLine converts an offset to a line and rune column.
func (ix *Index) OffsetToLine(offset int) (line, col int) {
	return ix.OffsetToLineUnit(offset, Runes)
}

func (ix *Index) OffsetToLineUnit(offset int, u Unit) (line, col int) {
	offset = max(0, min(len(ix.text), offset))
	i := sort.SearchInts(ix.starts, offset+1) - 1
	return i + 1, count(ix.text[ix.starts[i]:offset], u)
}

// FromUTF8Col converts a UTF-8 byte column on line to a rune column. A byte
// column inside a multi-byte sequence maps to the rune containing it.
func (ix *Index) FromUTF8Col(line, byteCol int) int {
	return ix.ConvertCol(line, byteCol, Bytes, Runes)
}

// ConvertCol converts a column on line between units. The column is clamped
// to the line, newline included.
func (ix *Index) ConvertCol(line, col int, from, to Unit) int {
	if from == to {
		return col
	}
	text := ix.LineText(line)
	b := advance(text, max(0, col), from)
	return count(text[:b], to)
}

// advance returns the number of bytes of s covered by n units, never
// splitting a rune and never running past the end of s.
func advance(s string, n int, u Unit) int {
	if u == Bytes {
		if n >= len(s) {
			return len(s)
		}
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		return n
	}
	i := 0
	for n > 0 && i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		w := 1
		if u == UTF16 {
			w = utf16.RuneLen(r)
			if w < 0 {
				w = 1
			}
			if w > n {
				break
			}
		}
		n -= w
		i += size
	}
	return i
}

func count(s string, u Unit) int {
	switch u {
	case Bytes:
		return len(s)
	case UTF16:
		n := 0
		for _, r := range s {
			if w := utf16.RuneLen(r); w > 0 {
				n += w
			} else {
				n++
			}
		}
		return n
	}
	return utf8.RuneCountInString(s)
}
