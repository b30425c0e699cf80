package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"lodestar/internal/config"
	"lodestar/internal/span"
	"lodestar/internal/vfs"
	"lodestar/internal/workpool"
)

func frame(t *testing.T, msgs ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		payload, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := writeMessage(&buf, payload); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return buf.Bytes()
}

func readAll(t *testing.T, data []byte) []response {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(data))
	var out []response
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var resp response
		if err := json.Unmarshal(payload, &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		out = append(out, resp)
	}
}

func TestReadWriteMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeMessage(&buf, []byte(`{"jsonrpc":"2.0"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Content-Length: 17\r\n\r\n") {
		t.Fatalf("unexpected header: %q", buf.String())
	}
	payload, err := readMessage(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(payload) != `{"jsonrpc":"2.0"}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestReadMessageRequiresContentLength(t *testing.T) {
	_, err := readMessage(bufio.NewReader(strings.NewReader("Content-Type: x\r\n\r\n{}")))
	if err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestRunServesUntilExit(t *testing.T) {
	docs := vfs.New()
	path := "/work/src/main.rs"
	docs.Open(path, "fn main() {}\n", 1)
	host := &fakeHost{
		docs: func(span.Span) (string, error) { return "entry point", nil },
	}
	input := frame(t,
		map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": map[string]any{"rootUri": "file:///work"}},
		map[string]any{"jsonrpc": "2.0", "method": "initialized", "params": map[string]any{}},
		map[string]any{"jsonrpc": "2.0", "id": 2, "method": "textDocument/hover", "params": at(uriFromPath(path), 0, 3)},
		map[string]any{"jsonrpc": "2.0", "id": "client-reply", "result": nil},
		map[string]any{"jsonrpc": "2.0", "id": 3, "method": "shutdown"},
		map[string]any{"jsonrpc": "2.0", "method": "exit"},
	)
	pool := workpool.New(workpool.Options{Workers: 2})
	defer pool.Close()

	var out bytes.Buffer
	server := NewServer(bytes.NewReader(input), &out, ServerOptions{
		Analysis:  host,
		Documents: docs,
		Pool:      pool,
		Config:    config.Defaults(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err := server.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}
	if server.Root() != "/work" {
		t.Fatalf("unexpected root %q", server.Root())
	}

	byID := map[string]response{}
	for _, resp := range readAll(t, out.Bytes()) {
		byID[string(resp.ID)] = resp
	}
	if len(byID) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(byID))
	}
	initRes := decodeResult[initializeResult](t, byID["1"])
	if initRes.ServerInfo.Name != "lodestar" {
		t.Fatalf("unexpected server info %+v", initRes.ServerInfo)
	}
	if initRes.Capabilities.ExecuteCommandProvider == nil || initRes.Capabilities.ExecuteCommandProvider.Commands[0] != "rls.applySuggestion" {
		t.Fatalf("missing executeCommand capability")
	}
	hover := decodeResult[hoverResult](t, byID["2"])
	if len(hover.Contents) != 1 || hover.Contents[0].Value != "entry point" {
		t.Fatalf("unexpected hover %+v", hover)
	}
	if string(byID["3"].Result) != "null" {
		t.Fatalf("unexpected shutdown result %s", byID["3"].Result)
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	ts := newTestServer(t, nil)
	err := ts.handleMessage(context.Background(), &rpcMessage{Method: "exit"})
	if !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("expected ErrExitWithoutShutdown, got %v", err)
	}
}

func TestRequestBeforeInitialize(t *testing.T) {
	var out bytes.Buffer
	server := NewServer(bytes.NewReader(nil), &out, ServerOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	defer server.Close()
	msg := &rpcMessage{ID: json.RawMessage("7"), Method: "textDocument/hover", Params: json.RawMessage(`{}`)}
	if err := server.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	expectError(t, decodeResponse(t, out.Bytes()), codeServerNotInitialized, "")
}

func TestRequestAfterShutdown(t *testing.T) {
	ts := newTestServer(t, nil)
	if err := ts.handleMessage(context.Background(), &rpcMessage{ID: json.RawMessage("1"), Method: "shutdown"}); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	ts.out.Reset()
	msg := &rpcMessage{ID: json.RawMessage("2"), Method: "textDocument/codeAction", Params: json.RawMessage(`{}`)}
	if err := ts.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	expectError(t, decodeResponse(t, ts.out.Bytes()), codeInvalidRequest, "")
}

func TestUnknownMethod(t *testing.T) {
	ts := newTestServer(t, nil)
	msg := &rpcMessage{ID: json.RawMessage("1"), Method: "textDocument/semanticTokens/full"}
	if err := ts.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	expectError(t, decodeResponse(t, ts.out.Bytes()), codeMethodNotFound, "")
}

func TestUnknownNotificationIgnored(t *testing.T) {
	ts := newTestServer(t, nil)
	if err := ts.handleMessage(context.Background(), &rpcMessage{Method: "$/cancelRequest"}); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if ts.out.Len() != 0 {
		t.Fatalf("expected no output, got %q", ts.out.String())
	}
}

func TestInvalidParams(t *testing.T) {
	ts := newTestServer(t, nil)
	h := requestHandlers["textDocument/hover"]
	msg := &rpcMessage{ID: json.RawMessage("1"), Method: "textDocument/hover", Params: json.RawMessage(`[1,2]`)}
	if err := ts.dispatch(context.Background(), msg, h); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	expectError(t, decodeResponse(t, ts.out.Bytes()), codeInvalidParams, "")
}

func TestNonFileURIRejected(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.call(t, "textDocument/hover", at("untitled:Untitled-1", 0, 0))
	expectError(t, resp, codeInvalidParams, "")
}

func TestDocumentSync(t *testing.T) {
	ts := newTestServer(t, nil)
	path := filepath.Join(ts.dir, "lib.rs")
	uri := uriFromPath(path)

	open, _ := json.Marshal(didOpenTextDocumentParams{TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "fn a() {}\n"}})
	if err := ts.handleMessage(context.Background(), &rpcMessage{Method: "textDocument/didOpen", Params: open}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	change, _ := json.Marshal(didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 0, Character: 3}, End: position{Line: 0, Character: 4}},
			Text:  "b",
		}},
	})
	if err := ts.handleMessage(context.Background(), &rpcMessage{Method: "textDocument/didChange", Params: change}); err != nil {
		t.Fatalf("didChange: %v", err)
	}
	line, err := ts.docs.LoadLine(path, 0)
	if err != nil {
		t.Fatalf("LoadLine: %v", err)
	}
	if line != "fn b() {}" {
		t.Fatalf("unexpected line %q", line)
	}
	if v, _ := ts.docs.Version(path); v != 2 {
		t.Fatalf("unexpected version %d", v)
	}

	closeMsg, _ := json.Marshal(didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: uri}})
	if err := ts.handleMessage(context.Background(), &rpcMessage{Method: "textDocument/didClose", Params: closeMsg}); err != nil {
		t.Fatalf("didClose: %v", err)
	}
	if _, ok := ts.docs.Version(path); ok {
		t.Fatal("document still open after didClose")
	}
}

func TestResolveCompletionEchoes(t *testing.T) {
	ts := newTestServer(t, nil)
	item := completionItem{Label: "push", Kind: completionFunction, Detail: "fn push(&mut self)"}
	got := decodeResult[completionItem](t, ts.call(t, "completionItem/resolve", item))
	if got != item {
		t.Fatalf("expected %+v, got %+v", item, got)
	}
}
