// Package source holds raw Ruby source bytes and answers line/column
// queries for byte offsets within them.
package source

import (
	"fmt"
	"sort"
)

// Buffer is an immutable view of one source file's bytes along with an
// index of newline offsets used to translate byte offsets into line and
// column numbers.  Every Loc produced by a parse of this buffer resolves
// lazily through it, so the Buffer must outlive the tree.
type Buffer struct {
	Name  string
	bytes []byte
	// lines[i] is the offset of the first byte of line i+1.
	lines []int
}

// NewBuffer builds the newline index for src.  The bytes are not copied;
// the caller must not mutate them afterward.
func NewBuffer(name string, src []byte) *Buffer {
	lines := []int{0}
	for offset, b := range src {
		if b == '\n' {
			lines = append(lines, offset+1)
		}
	}
	return &Buffer{Name: name, bytes: src, lines: lines}
}

// Bytes returns the underlying source bytes.
func (b *Buffer) Bytes() []byte { return b.bytes }

// Len returns the length of the source in bytes.
func (b *Buffer) Len() int { return len(b.bytes) }

// Slice returns the bytes in [offset, offset+length).  Offsets come from
// the lexer over this same buffer, so an out-of-range span is a
// programming error and panics.
func (b *Buffer) Slice(offset, length int) []byte {
	if offset < 0 || length < 0 || offset+length > len(b.bytes) {
		panic(fmt.Sprintf("source: slice [%d:%d) out of range of %d-byte buffer", offset, offset+length, len(b.bytes)))
	}
	return b.bytes[offset : offset+length]
}

// Line returns the 1-based line number containing offset.  An offset equal
// to the buffer length is treated as belonging to the final line so that
// end-of-file diagnostics have a printable position.
func (b *Buffer) Line(offset int) int {
	b.check(offset)
	return sort.Search(len(b.lines), func(i int) bool { return b.lines[i] > offset })
}

// Column returns the 0-based byte column of offset within its line.
func (b *Buffer) Column(offset int) int {
	return offset - b.lines[b.Line(offset)-1]
}

// LineStart returns the offset of the first byte of the 1-based line.
func (b *Buffer) LineStart(line int) int {
	if line < 1 || line > len(b.lines) {
		panic(fmt.Sprintf("source: line %d out of range of %d-line buffer", line, len(b.lines)))
	}
	return b.lines[line-1]
}

// LineText returns the text of the 1-based line without its newline.
func (b *Buffer) LineText(line int) string {
	start := b.LineStart(line)
	end := len(b.bytes)
	if line < len(b.lines) {
		end = b.lines[line] - 1
	}
	return string(b.bytes[start:end])
}

// Position bundles the line/column answers for one offset.
type Position struct {
	Offset int
	Line   int // 1-based
	Column int // 0-based byte column
}

func (b *Buffer) Position(offset int) Position {
	return Position{Offset: offset, Line: b.Line(offset), Column: b.Column(offset)}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column+1)
}

func (b *Buffer) check(offset int) {
	if offset < 0 || offset > len(b.bytes) {
		panic(fmt.Sprintf("source: offset %d out of range of %d-byte buffer", offset, len(b.bytes)))
	}
}
