package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lodestar/internal/config"
)

// addConfigFlags registers the flags that override config file values.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Duration("timeout", 0, "per-request deadline (overrides [server] request_timeout)")
	f.Int("workers", 0, "worker pool size, 0 for one per CPU (overrides [server] workers)")
	f.String("analysis-db", "", "analysis database snapshot (overrides [server] analysis_db)")
	f.String("build-results", "", "build results snapshot (overrides [server] build_results)")
	f.Bool("no-racer-fallback", false, "disable the heuristic definition fallback")
}

// resolveConfig loads the config file and applies every flag the user set.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("timeout") {
		d, _ := f.GetDuration("timeout")
		cfg.Server.RequestTimeout = d
	}
	if f.Changed("workers") {
		n, _ := f.GetInt("workers")
		cfg.Server.Workers = n
	}
	if f.Changed("analysis-db") {
		cfg.Server.AnalysisDB, _ = f.GetString("analysis-db")
	}
	if f.Changed("build-results") {
		cfg.Server.BuildResults, _ = f.GetString("build-results")
	}
	if off, _ := f.GetBool("no-racer-fallback"); off {
		cfg.Definition.RacerFallback = false
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
