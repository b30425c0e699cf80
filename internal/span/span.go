// Package span defines the coordinate types every analysis call is
// addressed with.
//
// Rows are stored zero-indexed; callers that talk to one-indexed
// collaborators (the heuristic engine, the formatter's line ranges) use
// OneIndexed. Columns are zero-indexed UTF-16 code units, which is what
// editors send over the protocol.
package span

import "fmt"

// Row is a zero-indexed line number.
type Row uint32

// RowFromOneIndexed converts a one-indexed line number. Zero maps to the
// first row.
func RowFromOneIndexed(n uint32) Row {
	if n == 0 {
		return 0
	}
	return Row(n - 1)
}

// ZeroIndexed returns the row as stored.
func (r Row) ZeroIndexed() uint32 { return uint32(r) }

// OneIndexed returns the row counted from one.
func (r Row) OneIndexed() uint32 { return uint32(r) + 1 }

// Column is a zero-indexed UTF-16 offset within a line.
type Column uint32

// Position is a point inside a file.
type Position struct {
	Row Row
	Col Column
}

// Compare orders positions by row, then column.
func (p Position) Compare(other Position) int {
	switch {
	case p.Row < other.Row:
		return -1
	case p.Row > other.Row:
		return 1
	case p.Col < other.Col:
		return -1
	case p.Col > other.Col:
		return 1
	}
	return 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row.OneIndexed(), p.Col)
}

// Range is a half-open region between two positions in one file.
type Range struct {
	RowStart Row
	RowEnd   Row
	ColStart Column
	ColEnd   Column
}

// NewRange builds a range from two positions, swapping them when end
// precedes start.
func NewRange(start, end Position) Range {
	if end.Compare(start) < 0 {
		start, end = end, start
	}
	return Range{
		RowStart: start.Row,
		RowEnd:   end.Row,
		ColStart: start.Col,
		ColEnd:   end.Col,
	}
}

// Start returns the first position of the range.
func (r Range) Start() Position { return Position{Row: r.RowStart, Col: r.ColStart} }

// End returns the position just past the range.
func (r Range) End() Position { return Position{Row: r.RowEnd, Col: r.ColEnd} }

// Empty reports whether the range selects no text.
func (r Range) Empty() bool { return r.Start() == r.End() }

// Valid reports whether start does not come after end.
func (r Range) Valid() bool { return r.Start().Compare(r.End()) <= 0 }

// Span is a range inside a named file.
type Span struct {
	File  string
	Range Range
}

// New builds a span over [start, end) in file.
func New(file string, start, end Position) Span {
	return Span{File: file, Range: NewRange(start, end)}
}

// Point builds an empty span at pos.
func Point(file string, pos Position) Span {
	return New(file, pos, pos)
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%s-%s", s.File, s.Range.Start(), s.Range.End())
}

// Location is a single position inside a named file.
type Location struct {
	File     string
	Position Position
}

// Span returns the empty span at the location.
func (l Location) Span() Span { return Point(l.File, l.Position) }
