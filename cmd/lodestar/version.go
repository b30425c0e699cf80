package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lodestar/internal/version"
)

// buildInfo is the version payload; the pretty form prints the same fields.
type buildInfo struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show lodestar build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		full, _ := f.GetBool("full")
		withHash, _ := f.GetBool("hash")
		withDate, _ := f.GetBool("date")
		format, _ := f.GetString("format")

		info := currentBuild(withHash || full, withDate || full)
		switch strings.ToLower(format) {
		case "pretty":
			printBuildPretty(cmd.OutOrStdout(), info)
			return nil
		case "json":
			return printBuildJSON(cmd.OutOrStdout(), info)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}
	},
}

func init() {
	f := versionCmd.Flags()
	f.Bool("hash", false, "include git commit hash")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "show all build metadata")
	f.String("format", "pretty", "output format (pretty|json)")
}

// currentBuild reads the link-time variables. Requested fields that were
// never stamped read "unknown"; fields not requested stay empty.
func currentBuild(withHash, withDate bool) buildInfo {
	info := buildInfo{Tool: "lodestar", Version: strings.TrimSpace(version.Version)}
	if info.Version == "" {
		info.Version = "dev"
	}
	if withHash {
		info.GitCommit = orUnknown(version.GitCommit)
	}
	if withDate {
		info.BuildDate = orUnknown(version.BuildDate)
	}
	return info
}

func printBuildPretty(out io.Writer, info buildInfo) {
	fmt.Fprintf(out, "%s %s\n", info.Tool, version.Colored())
	if info.GitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", info.GitCommit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(out, "built:  %s\n", info.BuildDate)
	}
}

func printBuildJSON(out io.Writer, info buildInfo) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
