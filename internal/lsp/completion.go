package lsp

import (
	"context"
	"encoding/json"

	"lodestar/internal/heuristic"
)

// LSP CompletionItemKind values.
const (
	completionText          = 1
	completionFunction      = 3
	completionVariable      = 6
	completionInterface     = 8
	completionModule        = 9
	completionEnum          = 13
	completionConstant      = 21
	completionStruct        = 22
	completionTypeParameter = 25
)

func completionKind(k heuristic.MatchKind) int {
	switch k {
	case heuristic.MatchFunction, heuristic.MatchMacro:
		return completionFunction
	case heuristic.MatchStruct:
		return completionStruct
	case heuristic.MatchEnum:
		return completionEnum
	case heuristic.MatchTrait:
		return completionInterface
	case heuristic.MatchModule:
		return completionModule
	case heuristic.MatchLet:
		return completionVariable
	case heuristic.MatchConst, heuristic.MatchStatic:
		return completionConstant
	case heuristic.MatchType:
		return completionTypeParameter
	default:
		return completionText
	}
}

func completionItemFromMatch(m heuristic.Match) completionItem {
	return completionItem{
		Label:  m.Name,
		Kind:   completionKind(m.Kind),
		Detail: m.Context,
	}
}

func (s *Server) completion(ctx context.Context, params textDocumentPositionParams) ([]completionItem, *responseError) {
	path, rerr := fileOf(params.TextDocument)
	if rerr != nil {
		return nil, rerr
	}
	at := heuristic.CoordinateOf(fromProtocolPosition(params.Position))
	items, err := offload(ctx, s, "complete", func(context.Context) []completionItem {
		var out []completionItem
		for m := range s.heuristic.CompleteFromFile(path, at) {
			out = append(out, completionItemFromMatch(m))
		}
		return out
	})
	if err != nil {
		return []completionItem{}, nil
	}
	return nonNil(items), nil
}

// resolveCompletion returns the item unchanged.
func resolveCompletion(_ *Server, _ context.Context, params json.RawMessage) (any, *responseError) {
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}
