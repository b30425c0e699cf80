package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lodestar/internal/analysis"
	"lodestar/internal/buildresults"
	"lodestar/internal/config"
	"lodestar/internal/lsp"
	"lodestar/internal/telemetry"
	"lodestar/internal/trace"
	"lodestar/internal/version"
	"lodestar/internal/vfs"
	"lodestar/internal/workpool"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	addConfigFlags(lspCmd)
	lspCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	lspCmd.Flags().Bool("watch", false, "drop cached file contents when they change on disk below the working directory")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	tr, cleanupTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanupTrace()

	host, err := loadAnalysis(cfg, logger)
	if err != nil {
		return err
	}
	results, err := loadBuildResults(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		provider, err := telemetry.New(telemetry.Config{ServiceName: "lodestar", ServiceVersion: version.Version})
		if err != nil {
			return err
		}
		provider.Install()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics shutdown failed", slog.Any("error", err))
			}
		}()
		g.Go(func() error {
			// A busy port should not take the editor session down with it.
			if err := provider.Serve(gctx, addr, logger); err != nil {
				logger.Error("metrics endpoint stopped", slog.Any("error", err))
			}
			return nil
		})
	}

	docs := vfs.New()
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		watcher, err := vfs.NewWatcher(docs, logger, root)
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		defer watcher.Stop()
		g.Go(func() error {
			watcher.Run(gctx)
			return nil
		})
	}

	// The pool is not closed on exit: work abandoned at a deadline may
	// still be running and the process is about to end anyway.
	pool := workpool.New(workpool.Options{
		Workers: cfg.Server.Workers,
		Logger:  logger,
		OnPanic: lsp.RecordWorkerPanic,
	})
	heartbeat := startHeartbeat(cmd, tr.tracer, pool)
	defer heartbeat.Stop()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Analysis:     host,
		Documents:    docs,
		BuildResults: results,
		Pool:         pool,
		Config:       cfg,
		Logger:       logger,
		Tracer:       tr.tracer,
	})
	logger.Info("lodestar language server starting",
		slog.String("version", version.Version),
		slog.Duration("request_timeout", cfg.Server.RequestTimeout),
		slog.Int("workers", pool.Stats().Workers),
		slog.Bool("racer_fallback", cfg.Definition.RacerFallback),
	)

	var runErr error
	g.Go(func() error {
		defer cancel()
		runErr = server.Run(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	switch {
	case runErr == nil, errors.Is(runErr, lsp.ErrExit):
		return nil
	case errors.Is(runErr, lsp.ErrExitWithoutShutdown):
		tr.dumpRing(cmd)
		return fmt.Errorf("lsp exit without shutdown")
	default:
		tr.dumpRing(cmd)
		return runErr
	}
}

func loadAnalysis(cfg config.Config, logger *slog.Logger) (analysis.Host, error) {
	path := cfg.Server.AnalysisDB
	if path == "" {
		logger.Warn("no analysis database configured; only heuristic answers are available")
		return analysis.NewIndex(nil), nil
	}
	idx, err := analysis.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load analysis database: %w", err)
	}
	logger.Info("analysis database loaded", slog.String("path", path), slog.Int("definitions", idx.Len()))
	return idx, nil
}

func loadBuildResults(cfg config.Config, logger *slog.Logger) (*buildresults.Table, error) {
	table := buildresults.NewTable()
	path := cfg.Server.BuildResults
	if path == "" {
		return table, nil
	}
	found, err := table.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load build results: %w", err)
	}
	if !found {
		logger.Info("build results snapshot not found; code actions start empty", slog.String("path", path))
	}
	return table, nil
}

func startHeartbeat(cmd *cobra.Command, t trace.Tracer, pool *workpool.Pool) *trace.Heartbeat {
	interval, err := cmd.Root().PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil
	}
	return trace.StartHeartbeat(t, interval, func() string {
		st := pool.Stats()
		return fmt.Sprintf("queued=%d active=%d workers=%d", st.Queued, st.Active, st.Workers)
	})
}
