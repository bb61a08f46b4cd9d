// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdforensic/internal/toolchain"
	"github.com/pdiddy/pdforensic/pkg/types"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Check availability of the wrapped external tools",
	Long: `Tools resolves every external command the pipeline can invoke and
prints its availability. Feature-gated tools (ocrmypdf, binwalk,
pdfcrack, yara) are listed with the feature that enables them.

Exits non-zero when a tool required by the base pipeline is missing.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	// Enable every feature so the whole catalog is resolved.
	allOn := types.ScanConfig{
		OCR: true, Binwalk: true, Crack: true, YaraRules: "rules.yar",
	}
	statuses, _ := toolchain.Verify(toolchain.Default(), allOn, runtime.GOOS)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tPURPOSE\tSTATUS")
	var missingBase []string
	for _, st := range statuses {
		status := st.Path
		if !st.Found {
			status = "MISSING"
			if st.Tool.Required && st.Tool.Feature == "" {
				missingBase = append(missingBase, st.Tool.Binary)
			}
		}
		purpose := st.Tool.Purpose
		if st.Tool.Feature != "" {
			purpose += " (feature: " + st.Tool.Feature + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", st.Tool.Binary, purpose, status)
	}
	w.Flush()

	if len(missingBase) > 0 {
		return fmt.Errorf("%d required tool(s) missing", len(missingBase))
	}
	return nil
}
