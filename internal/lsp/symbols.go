package lsp

import (
	"context"

	"lodestar/internal/analysis"
)

// LSP SymbolKind values.
const (
	symbolModule        = 2
	symbolMethod        = 6
	symbolField         = 8
	symbolEnum          = 10
	symbolInterface     = 11
	symbolFunction      = 12
	symbolVariable      = 13
	symbolConstant      = 14
	symbolEnumMember    = 22
	symbolStruct        = 23
	symbolTypeParameter = 26
)

func symbolKind(k analysis.DefKind) int {
	switch k {
	case analysis.KindMod:
		return symbolModule
	case analysis.KindFunction, analysis.KindMacro:
		return symbolFunction
	case analysis.KindMethod:
		return symbolMethod
	case analysis.KindStruct:
		return symbolStruct
	case analysis.KindEnum:
		return symbolEnum
	case analysis.KindVariant:
		return symbolEnumMember
	case analysis.KindTrait:
		return symbolInterface
	case analysis.KindType:
		return symbolTypeParameter
	case analysis.KindField:
		return symbolField
	case analysis.KindConst, analysis.KindStatic:
		return symbolConstant
	default:
		return symbolVariable
	}
}

func (s *Server) workspaceSymbol(ctx context.Context, params workspaceSymbolParams) ([]symbolInformation, *responseError) {
	out, err := offload(ctx, s, "name_defs", func(context.Context) []symbolInformation {
		defs, err := s.host.NameDefs(params.Query)
		if err != nil {
			return nil
		}
		out := make([]symbolInformation, 0, len(defs))
		for _, d := range defs {
			info := symbolInformation{
				Name:     d.Name,
				Kind:     symbolKind(d.Kind),
				Location: toLocation(d.Span),
			}
			if d.Parent != 0 {
				if parent, err := s.host.GetDef(d.Parent); err == nil {
					info.ContainerName = parent.Name
				}
			}
			out = append(out, info)
		}
		return out
	})
	if err != nil {
		return []symbolInformation{}, nil
	}
	return nonNil(out), nil
}

func (s *Server) documentSymbol(ctx context.Context, params documentSymbolParams) ([]symbolInformation, *responseError) {
	path, rerr := fileOf(params.TextDocument)
	if rerr != nil {
		return nil, rerr
	}
	out, err := offload(ctx, s, "symbols", func(context.Context) []symbolInformation {
		syms, err := s.host.Symbols(path)
		if err != nil {
			return nil
		}
		out := make([]symbolInformation, 0, len(syms))
		for _, sym := range syms {
			out = append(out, symbolInformation{
				Name:     sym.Name,
				Kind:     symbolKind(sym.Kind),
				Location: toLocation(sym.Span),
			})
		}
		return out
	})
	if err != nil {
		return []symbolInformation{}, nil
	}
	return nonNil(out), nil
}
