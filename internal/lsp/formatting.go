package lsp

import (
	"context"
	"log/slog"

	"lodestar/internal/format"
	"lodestar/internal/span"
	"lodestar/internal/trace"
)

func (s *Server) formatting(ctx context.Context, params documentFormattingParams) ([]textEdit, *responseError) {
	return s.reformat(ctx, params.TextDocument, params.Options, nil)
}

func (s *Server) rangeFormatting(ctx context.Context, params documentRangeFormattingParams) ([]textEdit, *responseError) {
	r := fromProtocolRange(params.Range)
	lines := &format.LineRange{
		Start: r.RowStart.OneIndexed(),
		End:   r.RowEnd.OneIndexed(),
	}
	return s.reformat(ctx, params.TextDocument, params.Options, lines)
}

// reformat formats the whole document, or only lines when set, and
// returns a single edit replacing the file.
func (s *Server) reformat(ctx context.Context, doc textDocumentIdentifier, opts formattingOptions, lines *format.LineRange) ([]textEdit, *responseError) {
	path, rerr := fileOf(doc)
	if rerr != nil {
		return nil, rerr
	}
	fc, err := s.files.LoadFile(path)
	if err != nil || fc.Binary {
		s.logger.Warn("cannot format file", slog.String("path", path), slog.Any("error", err), slog.Bool("binary", fc.Binary))
		return nil, internalError(msgReformat)
	}

	cfg := s.config().Format.Formatter()
	cfg.HardTabs.Prefer(!opts.InsertSpaces)
	if opts.TabSize > 0 {
		cfg.TabSpaces.Prefer(opts.TabSize)
	}

	_, sp := trace.Start(ctx, trace.ScopeBackend, "format")
	summary, out, err := s.formatter.Format(fc.Text, cfg, lines)
	if err != nil || summary.HasErrors() {
		sp.End("failed")
		attrs := []any{slog.String("path", path)}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		for _, e := range summary.Errors {
			attrs = append(attrs, slog.String("problem", e.String()))
		}
		s.logger.Warn("formatter failed", attrs...)
		return nil, internalError(msgReformat)
	}
	sp.End("")

	whole := lspRange{End: toProtocolPosition(span.EndOf(fc.Text))}
	return []textEdit{{Range: whole, NewText: out}}, nil
}
