package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"lodestar/internal/analysis"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect analysis database snapshots",
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats <db>",
	Short: "Show definition counts per kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := analysis.Open(args[0])
		if err != nil {
			return err
		}
		renderIndexStats(cmd.OutOrStdout(), idx.KindCounts(), idx.Len())
		return nil
	},
}

func init() {
	indexCmd.AddCommand(indexStatsCmd)
}

func renderIndexStats(out io.Writer, counts map[analysis.DefKind]int, total int) {
	kinds := make([]analysis.DefKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Kind", "Definitions"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, k := range kinds {
		table.Append([]string{k.String(), strconv.Itoa(counts[k])})
	}
	table.SetFooter([]string{"total", fmt.Sprint(total)})
	table.Render()
}
