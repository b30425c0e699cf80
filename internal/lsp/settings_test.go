package lsp

import (
	"context"
	"encoding/json"
	"testing"
)

func changeConfiguration(t *testing.T, ts *testServer, settings string) {
	t.Helper()
	params, _ := json.Marshal(map[string]json.RawMessage{"settings": json.RawMessage(settings)})
	msg := &rpcMessage{Method: "workspace/didChangeConfiguration", Params: params}
	if err := ts.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("didChangeConfiguration: %v", err)
	}
}

func TestDidChangeConfiguration(t *testing.T) {
	ts := newTestServer(t, nil)
	if !ts.config().Definition.RacerFallback {
		t.Fatal("fallback should default to enabled")
	}
	changeConfiguration(t, ts, `{"lodestar":{"gotoDefRacerFallback":false,"tabSpaces":2}}`)
	cfg := ts.config()
	if cfg.Definition.RacerFallback {
		t.Fatal("fallback still enabled")
	}
	f := cfg.Format.Formatter()
	if !f.TabSpaces.Set || f.TabSpaces.Value != 2 {
		t.Fatalf("tab spaces not applied explicitly: %+v", f.TabSpaces)
	}
	if f.HardTabs.Set {
		t.Fatal("hard tabs should stay unset")
	}
}

func TestDidChangeConfigurationRustSection(t *testing.T) {
	ts := newTestServer(t, nil)
	changeConfiguration(t, ts, `{"rust":{"gotoDefRacerFallback":false}}`)
	if ts.config().Definition.RacerFallback {
		t.Fatal("rust section ignored")
	}
}

func TestDidChangeConfigurationRejectsInvalid(t *testing.T) {
	ts := newTestServer(t, nil)
	changeConfiguration(t, ts, `{"lodestar":{"gotoDefRacerFallback":false,"tabSpaces":0}}`)
	cfg := ts.config()
	if !cfg.Definition.RacerFallback || cfg.Format.TabSpaces != 4 {
		t.Fatalf("invalid settings were partly applied: %+v", cfg)
	}
}
