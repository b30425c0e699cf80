package lsp

import (
	"context"
	"log/slog"

	"lodestar/internal/span"
)

type deglobResult struct {
	text string
	err  *responseError
}

// deglob replaces a glob import with the names it resolves to. The edit is
// sent to the client as workspace/applyEdit and the request itself is
// answered with null.
func (s *Server) deglob(ctx context.Context, params location) (any, *responseError) {
	path, err := pathFromURI(params.URI)
	if err != nil {
		return nil, invalidParams("Invalid file URI")
	}
	sp := span.Span{File: path, Range: fromProtocolRange(params.Range)}
	if sp.Range.Empty() {
		row := sp.Range.RowStart
		line, err := s.files.LoadLine(path, row)
		if err != nil {
			return nil, invalidParams(msgNoLine)
		}
		off, rerr := findGlob(line)
		if rerr != nil {
			return nil, rerr
		}
		sp = span.New(path,
			span.Position{Row: row, Col: span.ColumnAt(line, off)},
			span.Position{Row: row, Col: span.ColumnAt(line, off+1)},
		)
	}

	res, err := offload(ctx, s, "deglob", func(context.Context) deglobResult {
		text, err := s.files.LoadSpan(sp)
		if err != nil {
			return deglobResult{err: internalError(msgOpenFailed)}
		}
		if text != "*" {
			return deglobResult{err: invalidParams(msgNotGlob)}
		}
		names, err := s.host.ShowType(sp)
		if err != nil {
			return deglobResult{err: internalError(msgNoTypeInfo)}
		}
		return deglobResult{text: deglobText(names)}
	})
	if err != nil {
		return nil, internalError(msgDeglobTimeout)
	}
	if res.err != nil {
		return nil, res.err
	}

	loc := location{URI: params.URI, Range: toProtocolRange(sp.Range)}
	if _, err := s.output.Request("workspace/applyEdit", applyWorkspaceEditParams{Edit: singleEdit(loc, res.text)}); err != nil {
		s.logger.Warn("failed to send applyEdit", slog.String("uri", params.URI), slog.Any("error", err))
	}
	return nil, nil
}
