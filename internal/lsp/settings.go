package lsp

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// workspaceSettings is the client-side settings section. Absent keys leave
// the current value alone.
type workspaceSettings struct {
	GotoDefRacerFallback *bool `json:"gotoDefRacerFallback,omitempty"`
	HardTabs             *bool `json:"hardTabs,omitempty"`
	TabSpaces            *int  `json:"tabSpaces,omitempty"`
}

// The "rust" section is read when "lodestar" is absent, for clients
// configured for rls.
type settingsPayload struct {
	Lodestar *workspaceSettings `json:"lodestar,omitempty"`
	Rust     *workspaceSettings `json:"rust,omitempty"`
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didChangeConfiguration params", slog.Any("error", err))
		return nil
	}
	if err := s.applySettings(params.Settings); err != nil {
		s.logger.Warn("ignoring settings", slog.Any("error", err))
	}
	return nil
}

// applySettings merges a settings payload into the configuration. Nothing
// changes if the result does not validate.
func (s *Server) applySettings(raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var payload settingsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	ws := payload.Lodestar
	if ws == nil {
		ws = payload.Rust
	}
	if ws == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	if ws.GotoDefRacerFallback != nil {
		next.Definition.RacerFallback = *ws.GotoDefRacerFallback
	}
	if ws.HardTabs != nil {
		next.Format.SetHardTabs(*ws.HardTabs)
	}
	if ws.TabSpaces != nil {
		next.Format.SetTabSpaces(*ws.TabSpaces)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next
	return nil
}
