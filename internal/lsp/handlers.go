package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"lodestar/internal/span"
	"lodestar/internal/trace"
	"lodestar/internal/workpool"
)

type requestFunc func(s *Server, ctx context.Context, params json.RawMessage) (any, *responseError)

type requestHandler struct {
	run requestFunc
	// offload marks handlers that wait on the worker pool. They are
	// answered off the read loop.
	offload bool
}

var requestHandlers = map[string]requestHandler{
	"workspace/symbol":               {run: typed((*Server).workspaceSymbol), offload: true},
	"textDocument/documentSymbol":    {run: typed((*Server).documentSymbol), offload: true},
	"textDocument/hover":             {run: typed((*Server).hover), offload: true},
	"textDocument/definition":        {run: typed((*Server).definition), offload: true},
	"textDocument/references":        {run: typed((*Server).references), offload: true},
	"textDocument/documentHighlight": {run: typed((*Server).documentHighlight), offload: true},
	"textDocument/rename":            {run: typed((*Server).rename), offload: true},
	"textDocument/completion":        {run: typed((*Server).completion), offload: true},
	"rustDocument/implementations":   {run: typed((*Server).implementations), offload: true},
	"rustWorkspace/deglob":           {run: typed((*Server).deglob), offload: true},
	"completionItem/resolve":         {run: resolveCompletion},
	"textDocument/codeAction":        {run: typed((*Server).codeAction)},
	"workspace/executeCommand":       {run: typed((*Server).executeCommand)},
	"textDocument/formatting":        {run: typed((*Server).formatting)},
	"textDocument/rangeFormatting":   {run: typed((*Server).rangeFormatting)},
}

// typed decodes params into P before calling fn.
func typed[P, R any](fn func(*Server, context.Context, P) (R, *responseError)) requestFunc {
	return func(s *Server, ctx context.Context, raw json.RawMessage) (any, *responseError) {
		var params P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return nil, invalidParams("invalid params")
			}
		}
		result, rerr := fn(s, ctx, params)
		if rerr != nil {
			return nil, rerr
		}
		return result, nil
	}
}

// offload runs work on the pool and waits for it until the request
// timeout. The context passed to work carries that deadline so nested waits
// share it. On timeout the work is abandoned, not interrupted.
func offload[T any](ctx context.Context, s *Server, name string, work func(ctx context.Context) T) (T, error) {
	timeout := s.config().Server.RequestTimeout
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, sp := trace.Start(ctx, trace.ScopeBackend, name)
	v, err := workpool.Execute(ctx, s.pool, func() T { return work(ctx) })
	switch {
	case errors.Is(err, workpool.ErrTimedOut):
		sp.End("timeout")
		recordTimeout(ctx, name)
		s.logger.Debug("work abandoned at deadline",
			slog.String("work", name),
			slog.Duration("timeout", timeout),
		)
	case err != nil:
		sp.End("no result")
		s.logger.Warn("work produced no result", slog.String("work", name), slog.Any("error", err))
	default:
		sp.End("")
	}
	return v, err
}

// fileOf resolves a document URI or reports InvalidParams.
func fileOf(doc textDocumentIdentifier) (string, *responseError) {
	path, err := pathFromURI(doc.URI)
	if err != nil {
		return "", invalidParams("Invalid file URI")
	}
	return path, nil
}

// spanAt resolves a client position to the identifier under it. When the
// line cannot be read, or the cursor is not on an identifier, the result is
// an empty span at the position.
func (s *Server) spanAt(doc textDocumentIdentifier, pos position) (span.Span, *responseError) {
	path, rerr := fileOf(doc)
	if rerr != nil {
		return span.Span{}, rerr
	}
	at := fromProtocolPosition(pos)
	line, err := s.files.LoadLine(path, at.Row)
	if err != nil {
		return span.Point(path, at), nil
	}
	start, end := identBounds(line, span.ByteOffset(line, at.Col))
	if start == end {
		return span.Point(path, at), nil
	}
	return span.New(path,
		span.Position{Row: at.Row, Col: span.ColumnAt(line, start)},
		span.Position{Row: at.Row, Col: span.ColumnAt(line, end)},
	), nil
}

// identBounds returns the byte range of the identifier touching off.
func identBounds(line string, off int) (int, int) {
	start := off
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !isIdentRune(r) {
			break
		}
		start -= size
	}
	end := off
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if !isIdentRune(r) {
			break
		}
		end += size
	}
	return start, end
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
