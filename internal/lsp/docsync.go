package lsp

import (
	"encoding/json"
	"log/slog"

	"lodestar/internal/vfs"
)

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didOpen params", slog.Any("error", err))
		return nil
	}
	path, err := pathFromURI(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	s.docs.Open(path, params.TextDocument.Text, params.TextDocument.Version)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didChange params", slog.Any("error", err))
		return nil
	}
	path, err := pathFromURI(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	changes := make([]vfs.Change, 0, len(params.ContentChanges))
	for _, c := range params.ContentChanges {
		change := vfs.Change{Text: c.Text}
		if c.Range != nil {
			r := fromProtocolRange(*c.Range)
			change.Range = &r
		}
		changes = append(changes, change)
	}
	if err := s.docs.Change(path, changes, params.TextDocument.Version); err != nil {
		s.logger.Warn("failed to apply change", slog.String("path", path), slog.Any("error", err))
	}
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didSave params", slog.Any("error", err))
		return nil
	}
	path, err := pathFromURI(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	s.docs.Invalidate(path)
	if params.Text != nil {
		version, _ := s.docs.Version(path)
		s.docs.Open(path, *params.Text, version)
	}
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didClose params", slog.Any("error", err))
		return nil
	}
	path, err := pathFromURI(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	s.docs.Close(path)
	return nil
}
