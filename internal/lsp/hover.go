package lsp

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// hoverLanguage tags the type signature block.
const hoverLanguage = "rust"

type hoverParts struct {
	docs, url, signature string
}

func (p hoverParts) contents() []markedString {
	out := make([]markedString, 0, 3)
	if p.docs != "" {
		out = append(out, markedString{Value: p.docs})
	}
	if p.url != "" {
		out = append(out, markedString{Value: p.url})
	}
	if p.signature != "" {
		out = append(out, markedString{Language: hoverLanguage, Value: p.signature})
	}
	return out
}

func (s *Server) hover(ctx context.Context, params textDocumentPositionParams) (hoverResult, *responseError) {
	sp, rerr := s.spanAt(params.TextDocument, params.Position)
	if rerr != nil {
		return hoverResult{}, rerr
	}
	parts, err := offload(ctx, s, "hover", func(context.Context) hoverParts {
		var p hoverParts
		// Each lookup fails independently; a failure leaves its block empty.
		var g errgroup.Group
		g.Go(func() error {
			p.docs, _ = s.host.Docs(sp)
			return nil
		})
		g.Go(func() error {
			p.url, _ = s.host.DocURL(sp)
			return nil
		})
		g.Go(func() error {
			p.signature, _ = s.host.ShowType(sp)
			return nil
		})
		_ = g.Wait()
		return p
	})
	if err != nil {
		return hoverResult{Contents: []markedString{}}, nil
	}
	return hoverResult{Contents: parts.contents()}, nil
}
