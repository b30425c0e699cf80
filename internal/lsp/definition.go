package lsp

import (
	"context"

	"lodestar/internal/fallback"
	"lodestar/internal/heuristic"
	"lodestar/internal/span"
)

func (s *Server) definition(ctx context.Context, params textDocumentPositionParams) ([]location, *responseError) {
	sp, rerr := s.spanAt(params.TextDocument, params.Position)
	if rerr != nil {
		return nil, rerr
	}
	at := heuristic.CoordinateOf(fromProtocolPosition(params.Position))
	enabled := s.config().Definition.RacerFallback

	outcome, err := offload(ctx, s, "goto_def", func(ctx context.Context) fallback.Outcome[span.Span] {
		return fallback.Race(ctx, s.pool,
			func() (span.Span, error) { return s.host.GotoDef(sp) },
			func() (span.Span, bool) { return definitionFromMatch(s.heuristic, sp.File, at) },
			enabled,
		)
	})
	if err != nil {
		recordDefinitionSource(ctx, "timeout")
		return []location{}, nil
	}
	recordDefinitionSource(ctx, outcome.Kind.String())
	if !outcome.Ok() {
		return []location{}, nil
	}
	return []location{toLocation(outcome.Value)}, nil
}

// definitionFromMatch asks the heuristic engine and keeps the answer only
// when it carries coordinates.
func definitionFromMatch(engine heuristic.Engine, path string, at heuristic.Coordinate) (span.Span, bool) {
	m, ok := engine.FindDefinition(path, at)
	if !ok || m.Coords == nil {
		return span.Span{}, false
	}
	file := m.Path
	if file == "" {
		file = path
	}
	return span.Point(file, m.Coords.Position()), true
}
