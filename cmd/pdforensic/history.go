// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdforensic/internal/runindex"
	"github.com/pdiddy/pdforensic/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query past runs and targets from the run index",
	Long: `History reads the SQLite run index and lists past scans. By default it
shows analyzed targets, newest first; --runs lists whole runs instead.
Filter targets with --risk and --target.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("risk", "", "filter targets by risk band: low, medium, or high")
	historyCmd.Flags().String("target", "", "filter targets by source path substring")
	historyCmd.Flags().Int("limit", 20, "maximum number of rows")
	historyCmd.Flags().Bool("runs", false, "list runs instead of targets")
	historyCmd.Flags().Bool("json", false, "output rows as JSON")
	historyCmd.Flags().StringP("output", "o", "", "base directory for run roots (default forensic_results)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	outputDir := stringSetting(cmd, "output", "output_dir", "forensic_results")
	indexDir := viper.GetString("index_dir")
	if indexDir == "" {
		indexDir = filepath.Join(outputDir, "index")
	}

	store, err := runindex.NewStore(types.IndexConfig{IndexDir: indexDir})
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	listRuns, _ := cmd.Flags().GetBool("runs")

	if listRuns {
		runs, err := store.Runs(context.Background(), limit)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(runs)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tPROCESSED\tERRORS\tWARNINGS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", r.ID, r.StartedAt, r.Processed, r.Errors, r.Warnings)
		}
		return w.Flush()
	}

	riskBand, _ := cmd.Flags().GetString("risk")
	target, _ := cmd.Flags().GetString("target")
	rows, err := store.Targets(context.Background(), runindex.QueryOptions{
		RiskBand: riskBand,
		Target:   target,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tRUN\tRISK\tSTATUS\tWARNINGS\tSOURCE")
	for _, t := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d (%s)\t%s\t%d\t%s\n",
			t.ID, t.RunID, t.RiskScore, t.RiskBand, t.Status, t.Warnings, t.SourcePath)
	}
	return w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
