// Package buildresults holds the diagnostics of the most recent build,
// keyed by file path. The build side writes; code actions read.
package buildresults

import (
	"maps"
	"slices"
	"sync"

	"lodestar/internal/span"
)

// Suggestion is a single candidate fix.
type Suggestion struct {
	Label   string
	Range   span.Range
	NewText string
}

// Diagnostic is one message from the build, with its candidate fixes.
type Diagnostic struct {
	Range       span.Range
	Message     string
	Source      string
	Suggestions []Suggestion
}

// Table is safe for concurrent use. Each call holds the lock for a single
// lookup or a single replacement.
type Table struct {
	mu    sync.RWMutex
	files map[string][]Diagnostic
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{files: make(map[string][]Diagnostic)}
}

// Replace swaps in the results of a whole build.
func (t *Table) Replace(results map[string][]Diagnostic) {
	next := make(map[string][]Diagnostic, len(results))
	for path, diags := range results {
		next[path] = slices.Clone(diags)
	}
	t.mu.Lock()
	t.files = next
	t.mu.Unlock()
}

// ReplaceFile swaps in the results for one file. An empty list removes the
// file.
func (t *Table) ReplaceFile(path string, diags []Diagnostic) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(diags) == 0 {
		delete(t.files, path)
		return
	}
	t.files[path] = slices.Clone(diags)
}

// Lookup returns the diagnostics recorded for path. The returned slice
// must not be modified.
func (t *Table) Lookup(path string) ([]Diagnostic, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	diags, ok := t.files[path]
	return diags, ok
}

// Files returns the paths with recorded diagnostics in sorted order.
func (t *Table) Files() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.files))
}

func (t *Table) snapshot() map[string][]Diagnostic {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.files)
}
