// Package ast declares the types used to represent Ruby syntax trees.
package ast

// This module follows the design pattern of the Go AST in
// https://golang.org/pkg/go/ast/ with a Kind discriminator on every
// node so a tree can round-trip through tagged encodings.

// Node is the interface implemented by every syntax-tree node.
type Node interface {
	Pos() int // Offset of the first byte belonging to the node.
	End() int // Offset of the first byte immediately after the node.
}

// Loc is a byte span into the source buffer the tree was parsed from.
// It borrows the text; resolving it requires the original buffer.
type Loc struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

func NewLoc(start, end int) Loc {
	return Loc{Start: start, Length: end - start}
}

func (l Loc) Pos() int { return l.Start }
func (l Loc) End() int { return l.Start + l.Length }

// Span returns the smallest Loc covering both l and other.
func (l Loc) Span(other Loc) Loc {
	start := min(l.Start, other.Start)
	return NewLoc(start, max(l.End(), other.End()))
}
