// Package heuristic provides the fast, approximate completion and
// definition source that works without a finished build.
package heuristic

import (
	"iter"

	"lodestar/internal/span"
)

// Coordinate is a one-indexed line with a zero-indexed UTF-16 column.
type Coordinate struct {
	Line   uint32
	Column uint32
}

// CoordinateOf converts a stored position.
func CoordinateOf(p span.Position) Coordinate {
	return Coordinate{Line: p.Row.OneIndexed(), Column: uint32(p.Col)}
}

// Position converts back into a stored position.
func (c Coordinate) Position() span.Position {
	return span.Position{Row: span.RowFromOneIndexed(c.Line), Col: span.Column(c.Column)}
}

// MatchKind classifies a heuristic match.
type MatchKind uint8

const (
	MatchUnknown MatchKind = iota
	MatchFunction
	MatchStruct
	MatchEnum
	MatchTrait
	MatchModule
	MatchLet
	MatchConst
	MatchStatic
	MatchType
	MatchMacro
)

// Match is one heuristic result.
type Match struct {
	Name string
	Kind MatchKind
	Path string
	// Coords is nil when the match has no source location.
	Coords  *Coordinate
	Context string
}

// Engine is the heuristic backend. CompleteFromFile yields a finite, lazy
// sequence which may be consumed once.
type Engine interface {
	CompleteFromFile(path string, at Coordinate) iter.Seq[Match]
	FindDefinition(path string, at Coordinate) (Match, bool)
}
