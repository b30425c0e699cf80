package lsp

import (
	"context"

	"lodestar/internal/span"
)

func (s *Server) references(ctx context.Context, params referenceParams) ([]location, *responseError) {
	doc := textDocumentIdentifier{URI: params.TextDocument.URI}
	sp, rerr := s.spanAt(doc, params.Position)
	if rerr != nil {
		return nil, rerr
	}
	refs, err := offload(ctx, s, "find_all_refs", func(context.Context) []span.Span {
		refs, err := s.host.FindAllRefs(sp, params.Context.IncludeDeclaration)
		if err != nil {
			return nil
		}
		return refs
	})
	if err != nil {
		return []location{}, nil
	}
	out := make([]location, 0, len(refs))
	for _, r := range refs {
		out = append(out, toLocation(r))
	}
	return out, nil
}

func (s *Server) documentHighlight(ctx context.Context, params textDocumentPositionParams) ([]documentHighlight, *responseError) {
	sp, rerr := s.spanAt(params.TextDocument, params.Position)
	if rerr != nil {
		return nil, rerr
	}
	refs, err := offload(ctx, s, "find_all_refs", func(context.Context) []span.Span {
		refs, err := s.host.FindAllRefs(sp, true)
		if err != nil {
			return nil
		}
		return refs
	})
	if err != nil {
		return []documentHighlight{}, nil
	}
	out := make([]documentHighlight, 0, len(refs))
	for _, r := range refs {
		out = append(out, documentHighlight{Range: toProtocolRange(r.Range), Kind: highlightKindText})
	}
	return out, nil
}

type implsResult struct {
	spans []span.Span
	err   error
}

func (s *Server) implementations(ctx context.Context, params textDocumentPositionParams) ([]location, *responseError) {
	sp, rerr := s.spanAt(params.TextDocument, params.Position)
	if rerr != nil {
		return nil, rerr
	}
	res, err := offload(ctx, s, "find_impls", func(context.Context) implsResult {
		id, err := s.host.ID(sp)
		if err != nil {
			return implsResult{err: err}
		}
		spans, err := s.host.FindImpls(id)
		return implsResult{spans: spans, err: err}
	})
	if err != nil || res.err != nil {
		return nil, internalError(msgImplsFailed)
	}
	out := make([]location, 0, len(res.spans))
	for _, im := range res.spans {
		out = append(out, toLocation(im))
	}
	return out, nil
}
