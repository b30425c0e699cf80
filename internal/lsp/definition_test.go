package lsp

import (
	"testing"
	"time"

	"lodestar/internal/config"
	"lodestar/internal/heuristic"
	"lodestar/internal/span"
)

func TestDefinitionPrefersAnalysis(t *testing.T) {
	ts := newTestServer(t, nil)
	path, uri := ts.open("main.rs", "fn main() { helper(); }\n")
	want := pointSpan(path, 4, 3)
	ts.host.gotoDef = func(span.Span) (span.Span, error) { return want, nil }
	ts.engine.def = heuristic.Match{Name: "helper", Coords: &heuristic.Coordinate{Line: 9, Column: 0}}
	ts.engine.defOK = true

	locs := decodeResult[[]location](t, ts.call(t, "textDocument/definition", at(uri, 0, 13)))
	if len(locs) != 1 {
		t.Fatalf("expected one location, got %+v", locs)
	}
	if locs[0].Range.Start != (position{Line: 4, Character: 3}) {
		t.Fatalf("expected analysis answer, got %+v", locs[0])
	}
}

func TestDefinitionFallsBackToHeuristic(t *testing.T) {
	ts := newTestServer(t, nil)
	path, uri := ts.open("main.rs", "fn main() { helper(); }\n")
	ts.engine.def = heuristic.Match{Name: "helper", Path: path, Coords: &heuristic.Coordinate{Line: 9, Column: 3}}
	ts.engine.defOK = true

	locs := decodeResult[[]location](t, ts.call(t, "textDocument/definition", at(uri, 0, 13)))
	if len(locs) != 1 {
		t.Fatalf("expected one location, got %+v", locs)
	}
	if locs[0].URI != uri || locs[0].Range.Start != (position{Line: 8, Character: 3}) {
		t.Fatalf("unexpected heuristic location %+v", locs[0])
	}
}

func TestDefinitionFallbackDisabled(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Definition.RacerFallback = false })
	_, uri := ts.open("main.rs", "fn main() { helper(); }\n")
	ts.engine.def = heuristic.Match{Name: "helper", Coords: &heuristic.Coordinate{Line: 9, Column: 3}}
	ts.engine.defOK = true

	locs := decodeResult[[]location](t, ts.call(t, "textDocument/definition", at(uri, 0, 13)))
	if len(locs) != 0 {
		t.Fatalf("expected no locations, got %+v", locs)
	}
	if n := ts.engine.defCalls.Load(); n != 0 {
		t.Fatalf("heuristic consulted %d times while disabled", n)
	}
}

func TestDefinitionIgnoresMatchWithoutCoords(t *testing.T) {
	ts := newTestServer(t, nil)
	_, uri := ts.open("main.rs", "fn main() { helper(); }\n")
	ts.engine.def = heuristic.Match{Name: "helper"}
	ts.engine.defOK = true

	locs := decodeResult[[]location](t, ts.call(t, "textDocument/definition", at(uri, 0, 13)))
	if len(locs) != 0 {
		t.Fatalf("expected no locations, got %+v", locs)
	}
}

func TestSlowBackendAnswersAtDeadline(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.Server.RequestTimeout = 30 * time.Millisecond
		c.Definition.RacerFallback = false
	})
	_, uri := ts.open("main.rs", "fn main() {}\n")
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	ts.host.gotoDef = func(span.Span) (span.Span, error) {
		<-release
		return span.Span{}, nil
	}

	started := time.Now()
	locs := decodeResult[[]location](t, ts.call(t, "textDocument/definition", at(uri, 0, 3)))
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("response took %v", elapsed)
	}
	if len(locs) != 0 {
		t.Fatalf("expected empty result at deadline, got %+v", locs)
	}
}

func TestAnalysisWinsOverFasterHeuristic(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Server.RequestTimeout = time.Second })
	path, uri := ts.open("main.rs", "fn main() {}\n")
	ts.host.gotoDef = func(span.Span) (span.Span, error) {
		time.Sleep(50 * time.Millisecond)
		return pointSpan(path, 2, 0), nil
	}
	ts.engine.def = heuristic.Match{Name: "main", Coords: &heuristic.Coordinate{Line: 1, Column: 3}}
	ts.engine.defOK = true

	locs := decodeResult[[]location](t, ts.call(t, "textDocument/definition", at(uri, 0, 3)))
	if len(locs) != 1 || locs[0].Range.Start.Line != 2 {
		t.Fatalf("expected the analysis location, got %+v", locs)
	}
}
