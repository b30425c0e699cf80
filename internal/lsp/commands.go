package lsp

import (
	"context"
	"encoding/json"
	"log/slog"
)

func (s *Server) codeAction(_ context.Context, params codeActionParams) ([]command, *responseError) {
	path, rerr := fileOf(params.TextDocument)
	if rerr != nil {
		return nil, rerr
	}
	diags, ok := s.results.Lookup(path)
	if !ok {
		return []command{}, nil
	}
	return suggestionCommands(params.TextDocument.URI, diags, fromProtocolRange(params.Range)), nil
}

func (s *Server) executeCommand(_ context.Context, params executeCommandParams) (any, *responseError) {
	switch params.Command {
	case applySuggestionCommand:
		if len(params.Arguments) < 2 {
			return nil, invalidParams(msgBadArgument)
		}
		var loc location
		if err := json.Unmarshal(params.Arguments[0], &loc); err != nil || loc.URI == "" {
			return nil, invalidParams(msgBadArgument)
		}
		var newText string
		if err := json.Unmarshal(params.Arguments[1], &newText); err != nil {
			return nil, invalidParams(msgBadArgument)
		}
		if _, err := s.output.Request("workspace/applyEdit", applyWorkspaceEditParams{Edit: singleEdit(loc, newText)}); err != nil {
			s.logger.Warn("failed to send applyEdit", slog.String("uri", loc.URI), slog.Any("error", err))
		}
		return nil, nil
	default:
		return nil, methodNotFound(msgUnknownCmd)
	}
}
