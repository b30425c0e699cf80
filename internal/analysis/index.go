package analysis

import (
	"cmp"
	"slices"
	"strings"

	"lodestar/internal/span"
)

// Ref is one occurrence of a definition in source.
type Ref struct {
	Span   span.Span
	Target ID
}

// Annotation attaches a type string to an arbitrary span, e.g. the list of
// names a glob import resolves to.
type Annotation struct {
	Span  span.Span
	Value string
}

// Impl records that Span implements the trait Trait.
type Impl struct {
	Trait ID
	Span  span.Span
}

// Database is the serialisable form of an Index.
type Database struct {
	Schema      uint16
	Defs        []Definition
	Refs        []Ref
	Impls       []Impl
	Annotations []Annotation
}

type occurrence struct {
	span span.Span
	id   ID
}

// Index answers Host queries from a Database. It is immutable once built and
// safe for concurrent use.
type Index struct {
	defs        map[ID]Definition
	byFile      map[string][]occurrence
	refs        map[ID][]span.Span
	impls       map[ID][]span.Span
	annotations map[span.Span]string
}

var _ Host = (*Index)(nil)

// NewIndex builds an index over db.
func NewIndex(db *Database) *Index {
	idx := &Index{
		defs:        make(map[ID]Definition),
		byFile:      make(map[string][]occurrence),
		refs:        make(map[ID][]span.Span),
		impls:       make(map[ID][]span.Span),
		annotations: make(map[span.Span]string),
	}
	if db == nil {
		return idx
	}
	for _, d := range db.Defs {
		idx.defs[d.ID] = d
		idx.byFile[d.Span.File] = append(idx.byFile[d.Span.File], occurrence{span: d.Span, id: d.ID})
	}
	for _, r := range db.Refs {
		idx.refs[r.Target] = append(idx.refs[r.Target], r.Span)
		idx.byFile[r.Span.File] = append(idx.byFile[r.Span.File], occurrence{span: r.Span, id: r.Target})
	}
	for _, im := range db.Impls {
		idx.impls[im.Trait] = append(idx.impls[im.Trait], im.Span)
	}
	for _, a := range db.Annotations {
		idx.annotations[a.Span] = a.Value
	}
	for file := range idx.byFile {
		slices.SortFunc(idx.byFile[file], func(a, b occurrence) int {
			return a.span.Range.Start().Compare(b.span.Range.Start())
		})
	}
	for id := range idx.refs {
		slices.SortFunc(idx.refs[id], compareSpans)
	}
	return idx
}

func compareSpans(a, b span.Span) int {
	if c := cmp.Compare(a.File, b.File); c != 0 {
		return c
	}
	return a.Range.Start().Compare(b.Range.Start())
}

func (idx *Index) lookup(s span.Span) (Definition, bool) {
	at := s.Range.Start()
	for _, occ := range idx.byFile[s.File] {
		r := occ.span.Range
		if r.Start().Compare(at) > 0 {
			break
		}
		if at.Compare(r.End()) <= 0 {
			d, ok := idx.defs[occ.id]
			return d, ok
		}
	}
	return Definition{}, false
}

// NameDefs returns definitions whose name contains query, ignoring case.
func (idx *Index) NameDefs(query string) ([]Definition, error) {
	q := strings.ToLower(query)
	var out []Definition
	for _, d := range idx.defs {
		if strings.Contains(strings.ToLower(d.Name), q) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b Definition) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Symbols returns the definitions declared in file in source order.
func (idx *Index) Symbols(file string) ([]Symbol, error) {
	var out []Symbol
	for _, occ := range idx.byFile[file] {
		d := idx.defs[occ.id]
		if d.Span != occ.span {
			continue
		}
		out = append(out, Symbol{Name: d.Name, Kind: d.Kind, Span: d.Span})
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

// ShowType returns the annotation recorded for exactly s, or the value of
// the definition under s.
func (idx *Index) ShowType(s span.Span) (string, error) {
	if v, ok := idx.annotations[s]; ok {
		return v, nil
	}
	d, ok := idx.lookup(s)
	if !ok || d.Value == "" {
		return "", ErrNotFound
	}
	return d.Value, nil
}

// Docs returns the documentation of the definition under s.
func (idx *Index) Docs(s span.Span) (string, error) {
	d, ok := idx.lookup(s)
	if !ok {
		return "", ErrNotFound
	}
	return d.Docs, nil
}

// DocURL returns the external documentation link of the definition under s.
func (idx *Index) DocURL(s span.Span) (string, error) {
	d, ok := idx.lookup(s)
	if !ok {
		return "", ErrNotFound
	}
	return d.DocURL, nil
}

// ID returns the definition referenced or declared at s.
func (idx *Index) ID(s span.Span) (ID, error) {
	d, ok := idx.lookup(s)
	if !ok {
		return 0, ErrNotFound
	}
	return d.ID, nil
}

// FindImpls returns the implementations recorded for a trait.
func (idx *Index) FindImpls(id ID) ([]span.Span, error) {
	if _, ok := idx.defs[id]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(idx.impls[id]), nil
}

// GotoDef returns the declaration span of the definition under s.
func (idx *Index) GotoDef(s span.Span) (span.Span, error) {
	d, ok := idx.lookup(s)
	if !ok {
		return span.Span{}, ErrNotFound
	}
	return d.Span, nil
}

// FindAllRefs returns every reference to the definition under s, with the
// declaration first when includeDecl is set.
func (idx *Index) FindAllRefs(s span.Span, includeDecl bool) ([]span.Span, error) {
	d, ok := idx.lookup(s)
	if !ok {
		return nil, ErrNotFound
	}
	refs := idx.refs[d.ID]
	out := make([]span.Span, 0, len(refs)+1)
	if includeDecl {
		out = append(out, d.Span)
	}
	return append(out, refs...), nil
}

// CrateLocalID is ID restricted to definitions inside the workspace.
func (idx *Index) CrateLocalID(s span.Span) (ID, error) {
	d, ok := idx.lookup(s)
	if !ok {
		return 0, ErrNotFound
	}
	if d.External {
		return 0, ErrNotLocal
	}
	return d.ID, nil
}

// GetDef returns the definition with the given id.
func (idx *Index) GetDef(id ID) (Definition, error) {
	d, ok := idx.defs[id]
	if !ok {
		return Definition{}, ErrNotFound
	}
	return d, nil
}

// KindCounts returns the number of definitions of each kind.
func (idx *Index) KindCounts() map[DefKind]int {
	out := make(map[DefKind]int)
	for _, d := range idx.defs {
		out[d.Kind]++
	}
	return out
}

// Len returns the number of definitions.
func (idx *Index) Len() int { return len(idx.defs) }
