package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lodestar/internal/analysis"
	"lodestar/internal/buildresults"
	"lodestar/internal/config"
	"lodestar/internal/format"
	"lodestar/internal/heuristic"
	"lodestar/internal/span"
	"lodestar/internal/trace"
	"lodestar/internal/version"
	"lodestar/internal/vfs"
	"lodestar/internal/workpool"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// FileStore is the read side of the virtual file system.
type FileStore interface {
	LoadFile(path string) (vfs.FileContents, error)
	LoadLine(path string, row span.Row) (string, error)
	LoadSpan(sp span.Span) (string, error)
}

var _ FileStore = (*vfs.Store)(nil)

// ServerOptions wires the server to its collaborators. Nil fields get a
// working default.
type ServerOptions struct {
	Analysis  analysis.Host
	Heuristic heuristic.Engine
	Formatter format.Formatter
	// Documents receives document sync notifications.
	Documents *vfs.Store
	// Files is what handlers read through. Defaults to Documents.
	Files        FileStore
	BuildResults *buildresults.Table
	// Pool runs offloaded work. A pool created here is closed by Close.
	Pool   *workpool.Pool
	Output Output
	Config config.Config
	Logger *slog.Logger
	Tracer trace.Tracer
}

// Server handles stdio JSON-RPC for lodestar.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	logger    *slog.Logger
	tracer    trace.Tracer
	host      analysis.Host
	heuristic heuristic.Engine
	formatter format.Formatter
	docs      *vfs.Store
	files     FileStore
	results   *buildresults.Table
	pool      *workpool.Pool
	ownsPool  bool
	output    Output

	mu                sync.Mutex
	cfg               config.Config
	workspaceRoot     string
	initialized       bool
	shutdownRequested bool

	inflight sync.WaitGroup
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	docs := opts.Documents
	if docs == nil {
		docs = vfs.New()
	}
	var files FileStore = docs
	if opts.Files != nil {
		files = opts.Files
	}
	host := opts.Analysis
	if host == nil {
		host = analysis.NewIndex(nil)
	}
	engine := opts.Heuristic
	if engine == nil {
		engine = heuristic.NewLexical(docs)
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = format.Whitespace{}
	}
	results := opts.BuildResults
	if results == nil {
		results = buildresults.NewTable()
	}
	cfg := opts.Config
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = config.DefaultRequestTimeout
	}
	s := &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		logger:    logger,
		tracer:    tracer,
		host:      host,
		heuristic: engine,
		formatter: formatter,
		docs:      docs,
		files:     files,
		results:   results,
		pool:      opts.Pool,
		output:    opts.Output,
		cfg:       cfg,
	}
	if s.pool == nil {
		s.pool = workpool.New(workpool.Options{
			Workers: cfg.Server.Workers,
			Logger:  logger,
			OnPanic: RecordWorkerPanic,
		})
		s.ownsPool = true
	}
	if s.output == nil {
		s.output = streamOutput{s: s}
	}
	return s
}

// Run serves LSP requests until the input ends or the client exits.
// Requests that use the worker pool are answered from their own goroutine,
// so responses may arrive in any order. Notifications are applied in the
// order they were read.
func (s *Server) Run(ctx context.Context) error {
	ctx = trace.WithTracer(ctx, s.tracer)
	ctx, sp := trace.Start(ctx, trace.ScopeServer, "serve")
	defer func() {
		s.inflight.Wait()
		sp.End("")
		if err := s.tracer.Flush(); err != nil {
			s.logger.Debug("trace flush failed", slog.Any("error", err))
		}
	}()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn("failed to parse message", slog.Any("error", err))
			continue
		}
		if msg.Method == "" {
			if len(msg.ID) > 0 {
				s.logger.Debug("dropping client response", slog.String("id", string(msg.ID)))
			}
			continue
		}
		if err := s.handleMessage(ctx, &msg); err != nil {
			return err
		}
	}
}

// Close releases the worker pool if the server created it. Work that was
// abandoned at its deadline is waited for.
func (s *Server) Close() {
	if s.ownsPool {
		s.pool.Close()
	}
}

func (s *Server) handleMessage(ctx context.Context, msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdown() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	}

	if len(msg.ID) == 0 {
		return nil
	}
	h, ok := requestHandlers[msg.Method]
	if !ok {
		return s.sendError(msg.ID, codeMethodNotFound, "method not found")
	}
	s.mu.Lock()
	initialized, shutdown := s.initialized, s.shutdownRequested
	s.mu.Unlock()
	switch {
	case !initialized:
		return s.sendError(msg.ID, codeServerNotInitialized, "server not initialized")
	case shutdown:
		return s.sendError(msg.ID, codeInvalidRequest, "server is shutting down")
	}
	if h.offload {
		s.inflight.Go(func() {
			if err := s.dispatch(ctx, msg, h); err != nil {
				s.logger.Warn("failed to send response", slog.String("method", msg.Method), slog.Any("error", err))
			}
		})
		return nil
	}
	return s.dispatch(ctx, msg, h)
}

// dispatch runs one request handler and sends whatever it produced.
func (s *Server) dispatch(ctx context.Context, msg *rpcMessage, h requestHandler) error {
	ctx, sp := trace.Start(ctx, trace.ScopeRequest, msg.Method)
	started := time.Now()
	result, rerr := h.run(s, ctx, msg.Params)
	elapsed := time.Since(started)
	if rerr != nil {
		sp.WithExtra("code", rerr.Error()).End("error")
		recordRequest(ctx, msg.Method, "error", elapsed)
		s.logger.Debug("request failed",
			slog.String("method", msg.Method),
			slog.Int("code", rerr.Code),
			slog.String("message", rerr.Message),
		)
		return s.sendError(msg.ID, rerr.Code, rerr.Message)
	}
	sp.End("ok")
	recordRequest(ctx, msg.Method, "ok", elapsed)
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root, _ = pathFromURI(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root, _ = pathFromURI(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	if len(params.InitializationOptions) > 0 {
		if err := s.applySettings(params.InitializationOptions); err != nil {
			s.logger.Warn("ignoring initialization options", slog.Any("error", err))
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.initialized = true
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			HoverProvider: true,
			CompletionProvider: &completionOptions{
				ResolveProvider:   true,
				TriggerCharacters: []string{".", ":"},
			},
			DefinitionProvider:              true,
			ReferencesProvider:              true,
			DocumentHighlightProvider:       true,
			DocumentSymbolProvider:          true,
			WorkspaceSymbolProvider:         true,
			CodeActionProvider:              true,
			DocumentFormattingProvider:      true,
			DocumentRangeFormattingProvider: true,
			RenameProvider:                  true,
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: []string{applySuggestionCommand},
			},
		},
		ServerInfo: serverInfo{Name: "lodestar", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

// config returns a copy of the current configuration.
func (s *Server) config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Root returns the workspace root sent by the client, if any.
func (s *Server) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspaceRoot
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
