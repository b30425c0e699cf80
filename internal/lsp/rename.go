package lsp

import (
	"context"

	"lodestar/internal/span"
)

// reservedNames are never renamed; the request succeeds with no edits.
var reservedNames = map[string]bool{
	"self": true,
	"Self": true,
}

func (s *Server) rename(ctx context.Context, params renameParams) (workspaceEdit, *responseError) {
	doc := textDocumentIdentifier{URI: params.TextDocument.URI}
	sp, rerr := s.spanAt(doc, params.Position)
	if rerr != nil {
		return workspaceEdit{}, rerr
	}
	refs, err := offload(ctx, s, "rename", func(context.Context) []span.Span {
		id, err := s.host.CrateLocalID(sp)
		if err != nil {
			return nil
		}
		def, err := s.host.GetDef(id)
		if err != nil || reservedNames[def.Name] {
			return nil
		}
		refs, err := s.host.FindAllRefs(sp, true)
		if err != nil {
			return nil
		}
		return refs
	})
	if err != nil {
		return renameEdit(nil, params.NewName), nil
	}
	return renameEdit(refs, params.NewName), nil
}
