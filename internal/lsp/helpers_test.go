package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"lodestar/internal/analysis"
	"lodestar/internal/buildresults"
	"lodestar/internal/config"
	"lodestar/internal/heuristic"
	"lodestar/internal/span"
	"lodestar/internal/vfs"
	"lodestar/internal/workpool"
)

// fakeHost answers from its function fields; a nil field reports
// analysis.ErrNotFound.
type fakeHost struct {
	nameDefs     func(string) ([]analysis.Definition, error)
	symbols      func(string) ([]analysis.Symbol, error)
	showType     func(span.Span) (string, error)
	docs         func(span.Span) (string, error)
	docURL       func(span.Span) (string, error)
	id           func(span.Span) (analysis.ID, error)
	findImpls    func(analysis.ID) ([]span.Span, error)
	gotoDef      func(span.Span) (span.Span, error)
	findAllRefs  func(span.Span, bool) ([]span.Span, error)
	crateLocalID func(span.Span) (analysis.ID, error)
	getDef       func(analysis.ID) (analysis.Definition, error)

	refsCalls atomic.Int32
}

var _ analysis.Host = (*fakeHost)(nil)

func (h *fakeHost) NameDefs(q string) ([]analysis.Definition, error) {
	if h.nameDefs == nil {
		return nil, analysis.ErrNotFound
	}
	return h.nameDefs(q)
}

func (h *fakeHost) Symbols(file string) ([]analysis.Symbol, error) {
	if h.symbols == nil {
		return nil, analysis.ErrNotFound
	}
	return h.symbols(file)
}

func (h *fakeHost) ShowType(s span.Span) (string, error) {
	if h.showType == nil {
		return "", analysis.ErrNotFound
	}
	return h.showType(s)
}

func (h *fakeHost) Docs(s span.Span) (string, error) {
	if h.docs == nil {
		return "", analysis.ErrNotFound
	}
	return h.docs(s)
}

func (h *fakeHost) DocURL(s span.Span) (string, error) {
	if h.docURL == nil {
		return "", analysis.ErrNotFound
	}
	return h.docURL(s)
}

func (h *fakeHost) ID(s span.Span) (analysis.ID, error) {
	if h.id == nil {
		return 0, analysis.ErrNotFound
	}
	return h.id(s)
}

func (h *fakeHost) FindImpls(id analysis.ID) ([]span.Span, error) {
	if h.findImpls == nil {
		return nil, analysis.ErrNotFound
	}
	return h.findImpls(id)
}

func (h *fakeHost) GotoDef(s span.Span) (span.Span, error) {
	if h.gotoDef == nil {
		return span.Span{}, analysis.ErrNotFound
	}
	return h.gotoDef(s)
}

func (h *fakeHost) FindAllRefs(s span.Span, includeDecl bool) ([]span.Span, error) {
	h.refsCalls.Add(1)
	if h.findAllRefs == nil {
		return nil, analysis.ErrNotFound
	}
	return h.findAllRefs(s, includeDecl)
}

func (h *fakeHost) CrateLocalID(s span.Span) (analysis.ID, error) {
	if h.crateLocalID == nil {
		return 0, analysis.ErrNotFound
	}
	return h.crateLocalID(s)
}

func (h *fakeHost) GetDef(id analysis.ID) (analysis.Definition, error) {
	if h.getDef == nil {
		return analysis.Definition{}, analysis.ErrNotFound
	}
	return h.getDef(id)
}

type fakeEngine struct {
	matches  []heuristic.Match
	def      heuristic.Match
	defOK    bool
	defCalls atomic.Int32
}

func (e *fakeEngine) CompleteFromFile(string, heuristic.Coordinate) iter.Seq[heuristic.Match] {
	return func(yield func(heuristic.Match) bool) {
		for _, m := range e.matches {
			if !yield(m) {
				return
			}
		}
	}
}

func (e *fakeEngine) FindDefinition(string, heuristic.Coordinate) (heuristic.Match, bool) {
	e.defCalls.Add(1)
	return e.def, e.defOK
}

type sentRequest struct {
	method string
	params any
}

type recordingOutput struct {
	mu   sync.Mutex
	sent []sentRequest
}

func (o *recordingOutput) Request(method string, params any) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, sentRequest{method: method, params: params})
	return "test", nil
}

func (o *recordingOutput) requests() []sentRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]sentRequest(nil), o.sent...)
}

type testServer struct {
	*Server
	out     *bytes.Buffer
	host    *fakeHost
	engine  *fakeEngine
	docs    *vfs.Store
	results *buildresults.Table
	sink    *recordingOutput
	dir     string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.Defaults()
	if mutate != nil {
		mutate(&cfg)
	}
	pool := workpool.New(workpool.Options{Workers: 4})
	t.Cleanup(pool.Close)

	ts := &testServer{
		out:     &bytes.Buffer{},
		host:    &fakeHost{},
		engine:  &fakeEngine{},
		docs:    vfs.New(),
		results: buildresults.NewTable(),
		sink:    &recordingOutput{},
		dir:     t.TempDir(),
	}
	ts.Server = NewServer(bytes.NewReader(nil), ts.out, ServerOptions{
		Analysis:     ts.host,
		Heuristic:    ts.engine,
		Documents:    ts.docs,
		BuildResults: ts.results,
		Pool:         pool,
		Output:       ts.sink,
		Config:       cfg,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts.Server.mu.Lock()
	ts.Server.initialized = true
	ts.Server.mu.Unlock()
	return ts
}

// open puts text in the overlay under a temp path and returns its URI.
func (ts *testServer) open(name, text string) (string, string) {
	path := filepath.Join(ts.dir, name)
	ts.docs.Open(path, text, 1)
	return path, uriFromPath(path)
}

type response struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call runs method synchronously and decodes the one response it wrote.
func (ts *testServer) call(t *testing.T, method string, params any) response {
	t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	h, ok := requestHandlers[method]
	if !ok {
		t.Fatalf("no handler for %s", method)
	}
	ts.out.Reset()
	msg := &rpcMessage{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: method, Params: payload}
	if err := ts.dispatch(context.Background(), msg, h); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return decodeResponse(t, ts.out.Bytes())
}

func decodeResponse(t *testing.T, data []byte) response {
	t.Helper()
	payload, err := readMessage(bufio.NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var resp response
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeResult[T any](t *testing.T, resp response) T {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %d %s", resp.Error.Code, resp.Error.Message)
	}
	var v T
	if err := json.Unmarshal(resp.Result, &v); err != nil {
		t.Fatalf("decode result %s: %v", resp.Result, err)
	}
	return v
}

func expectError(t *testing.T, resp response, code int, message string) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %s", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("expected code %d, got %d (%s)", code, resp.Error.Code, resp.Error.Message)
	}
	if message != "" && resp.Error.Message != message {
		t.Fatalf("expected message %q, got %q", message, resp.Error.Message)
	}
}

func at(uri string, line, char int) textDocumentPositionParams {
	return textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     position{Line: line, Character: char},
	}
}

func pointSpan(path string, row, col uint32) span.Span {
	return span.Point(path, span.Position{Row: span.Row(row), Col: span.Column(col)})
}
