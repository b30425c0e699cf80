// Package trace records request and backend timing events for the language
// server.
//
// Tracing is off unless enabled with --trace. Events are either written as
// they happen (stream mode), kept in a ring buffer that is dumped when the
// server exits abnormally (ring mode), or both.
//
// # Scopes
//
//   - ScopeServer: lifecycle and transport events
//   - ScopeRequest: one span per handled request
//   - ScopeBackend: analysis, heuristic and formatter calls inside a request
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, sp := trace.Start(ctx, trace.ScopeRequest, "textDocument/hover")
//	defer sp.End("")
package trace
