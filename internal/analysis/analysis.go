// Package analysis describes the authoritative analysis backend consumed by
// the request handlers, and ships Index, an immutable in-memory database
// loaded from a prebuilt snapshot.
package analysis

import (
	"errors"

	"lodestar/internal/span"
)

var (
	// ErrNotFound means the backend has no answer for the query.
	ErrNotFound = errors.New("analysis: not found")
	// ErrNotLocal is returned by CrateLocalID for definitions that live
	// outside the workspace.
	ErrNotLocal = errors.New("analysis: definition is not local")
)

// ID identifies a definition.
type ID uint64

// DefKind classifies a definition.
type DefKind uint8

const (
	KindUnknown DefKind = iota
	KindMod
	KindFunction
	KindMethod
	KindStruct
	KindEnum
	KindVariant
	KindTrait
	KindType
	KindField
	KindConst
	KindStatic
	KindLocal
	KindMacro
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindMod:      "mod",
	KindFunction: "function",
	KindMethod:   "method",
	KindStruct:   "struct",
	KindEnum:     "enum",
	KindVariant:  "variant",
	KindTrait:    "trait",
	KindType:     "type",
	KindField:    "field",
	KindConst:    "const",
	KindStatic:   "static",
	KindLocal:    "local",
	KindMacro:    "macro",
}

func (k DefKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Definition is a named item known to the backend.
type Definition struct {
	ID     ID
	Name   string
	Kind   DefKind
	Span   span.Span
	Parent ID // zero when the definition has no container
	// Value is the rendered signature or type of the definition.
	Value    string
	Docs     string
	DocURL   string
	External bool
}

// Symbol is an entry of a per-file outline.
type Symbol struct {
	Name string
	Kind DefKind
	Span span.Span
}

// Host is the authoritative backend. Every method may fail; callers only
// distinguish success from absence.
type Host interface {
	NameDefs(query string) ([]Definition, error)
	Symbols(file string) ([]Symbol, error)
	ShowType(s span.Span) (string, error)
	Docs(s span.Span) (string, error)
	DocURL(s span.Span) (string, error)
	ID(s span.Span) (ID, error)
	FindImpls(id ID) ([]span.Span, error)
	GotoDef(s span.Span) (span.Span, error)
	FindAllRefs(s span.Span, includeDecl bool) ([]span.Span, error)
	CrateLocalID(s span.Span) (ID, error)
	GetDef(id ID) (Definition, error)
}
