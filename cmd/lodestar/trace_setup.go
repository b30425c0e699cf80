package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lodestar/internal/trace"
)

// tracing holds what setupTracing built. A zero value is a disabled tracer.
type tracing struct {
	tracer trace.Tracer
	ring   *trace.RingTracer
	format trace.Format
}

// setupTracing inspects trace-related flags and initializes the tracer.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command) (tracing, func(), error) {
	root := cmd.Root()
	disabled := tracing{tracer: trace.Nop}

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return disabled, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return disabled, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return disabled, nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return disabled, nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return disabled, nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return disabled, nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// A file without a level means "trace requests".
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelRequest
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return disabled, func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return disabled, nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return disabled, nil, err
	}
	// Terminals get text; pipes and files get machine-readable events.
	if format == trace.FormatAuto && (traceOutput == "" || traceOutput == "-") {
		format = trace.FormatNDJSON
		if isTerminal(os.Stderr) {
			format = trace.FormatText
		}
	}

	tracer, ring, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return disabled, nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	if format == trace.FormatAuto {
		format = trace.FormatText
	}
	return tracing{tracer: tracer, ring: ring, format: format}, cleanup, nil
}

// dumpRing writes the retained events to stderr. It is used when the
// server stops abnormally in ring mode.
func (t tracing) dumpRing(cmd *cobra.Command) {
	if t.ring == nil {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "trace: last events before exit")
	if err := t.ring.Dump(cmd.ErrOrStderr(), t.format); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
	}
}
