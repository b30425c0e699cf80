package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStartPropagatesParent(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, outer := Start(ctx, ScopeRequest, "textDocument/hover")
	_, inner := Start(ctx, ScopeBackend, "docs")
	inner.End("")
	outer.WithExtra("result", "ok").End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1].ParentID != outer.ID() {
		t.Fatalf("inner span parent = %d, want %d", events[1].ParentID, outer.ID())
	}
	if events[3].Kind != KindSpanEnd || events[3].Extra["result"] != "ok" {
		t.Fatalf("unexpected outer end event: %+v", events[3])
	}
}

func TestRequestLevelDropsBackendScope(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelRequest, FormatText)
	ctx := WithTracer(context.Background(), st)

	ctx, req := Start(ctx, ScopeRequest, "textDocument/definition")
	_, be := Start(ctx, ScopeBackend, "goto_def")
	be.End("")
	req.End("")

	out := buf.String()
	if strings.Contains(out, "goto_def") {
		t.Fatalf("backend span leaked at request level:\n%s", out)
	}
	if strings.Count(out, "textDocument/definition") != 2 {
		t.Fatalf("expected begin and end lines:\n%s", out)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelRequest)
	for i := 0; i < 5; i++ {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeServer, Name: string(rune('a' + i))})
	}
	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Name != "c" || events[2].Name != "e" {
		t.Fatalf("unexpected order: %s %s %s", events[0].Name, events[1].Name, events[2].Name)
	}
}

func TestNDJSONFormat(t *testing.T) {
	ev := &Event{Time: time.Unix(0, 0).UTC(), Seq: 7, Kind: KindSpanEnd, Scope: ScopeRequest, SpanID: 2, Name: "n", Elapsed: 1500 * time.Microsecond}
	var decoded map[string]any
	if err := json.Unmarshal(FormatEvent(ev, FormatNDJSON), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["kind"] != "end" || decoded["scope"] != "request" || decoded["elapsed_us"] != float64(1500) {
		t.Fatalf("unexpected fields: %v", decoded)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, ring, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() || ring != nil {
		t.Fatalf("expected disabled tracer without ring")
	}
	_, sp := Start(WithTracer(context.Background(), tr), ScopeRequest, "x")
	if sp.End("") != 0 {
		t.Fatalf("disabled span should report zero duration")
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("DEBUG"); err != nil || l != LevelDebug {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(both) = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(ndjson) = %v, %v", f, err)
	}
}

func TestHeartbeatUsesDetail(t *testing.T) {
	ring := NewRingTracer(8, LevelRequest)
	h := StartHeartbeat(ring, 5*time.Millisecond, func() string { return "queued=0" })
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	h.Stop()
	events := ring.Snapshot()
	if len(events) == 0 {
		t.Fatalf("no heartbeat recorded")
	}
	if events[0].Kind != KindHeartbeat || events[0].Detail != "queued=0" {
		t.Fatalf("unexpected heartbeat: %+v", events[0])
	}
}
