// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdforensic/internal/resolve"
	"github.com/pdiddy/pdforensic/internal/runindex"
	"github.com/pdiddy/pdforensic/internal/scan"
	"github.com/pdiddy/pdforensic/internal/toolchain"
	"github.com/pdiddy/pdforensic/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Run the forensic tool pipeline over PDF files",
	Long: `Scan resolves each argument to PDF targets (directories are walked
recursively), verifies the required external tools, then processes each
target through the full stage pipeline: metadata, text, structure,
objects, fonts, pages, images, hex dump, hidden-marker search, signature
check, and the optional OCR, deep-scan, binwalk, encryption, YARA,
reputation, and composite stages.

Each run creates a timestamped root under the output directory holding a
consolidated report, a run log, a summary index, and one subdirectory per
target with all tool artifacts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringP("output", "o", "", "base directory for run roots (default forensic_results)")
	scanCmd.Flags().BoolP("verbose", "v", false, "print per-stage progress")
	scanCmd.Flags().IntP("jobs", "j", 1, "accepted for compatibility; targets run sequentially")
	scanCmd.Flags().Bool("copy-original", true, "copy the source PDF into its output directory")
	scanCmd.Flags().Bool("ocr", false, "enable OCR reconstruction (ocrmypdf)")
	scanCmd.Flags().Bool("deep-scan", false, "decode streams and search for indicator keywords")
	scanCmd.Flags().Bool("binwalk", false, "scan for embedded content (binwalk)")
	scanCmd.Flags().Bool("crack", false, "check encryption and attempt password recovery")
	scanCmd.Flags().Bool("intel", false, "look up the file hash against the reputation API")
	scanCmd.Flags().Bool("composite", false, "build decoded and composite PDFs")
	scanCmd.Flags().String("yara-rules", "", "YARA rules file; enables the yara stage")
	scanCmd.Flags().String("ocr-lang", "", "OCR language spec (default heb+eng)")
	scanCmd.Flags().Int("ocr-dpi", 0, "assumed image DPI for OCR (default 600)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := buildConfig(cmd)

	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 1 {
		fmt.Fprintln(os.Stderr, "notice: --jobs > 1 has no effect; targets are processed sequentially")
	}

	targets, warnings := resolve.Targets(args, os.Stderr)
	if len(targets) == 0 {
		return fmt.Errorf("no PDF targets among the given paths")
	}

	exec := toolchain.Default()
	if _, err := toolchain.Verify(exec, cfg.Scan, runtime.GOOS); err != nil {
		return err
	}

	runner := scan.New(cfg, exec, os.Stderr)
	summary, err := runner.Run(targets, warnings)
	if err != nil {
		return err
	}

	// Index failures do not invalidate a completed run.
	if store, err := runindex.NewStore(cfg.Index); err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening run index: %v\n", err)
	} else {
		defer store.Close()
		if err := store.RecordRun(context.Background(), summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run: %v\n", err)
		}
	}

	return nil
}

// buildConfig assembles the immutable run configuration: flags win over
// config-file/env settings, which win over built-in defaults.
func buildConfig(cmd *cobra.Command) types.Config {
	var cfg types.Config

	cfg.Scan = types.ScanConfig{
		OutputDir:    stringSetting(cmd, "output", "output_dir", "forensic_results"),
		CopyOriginal: boolSetting(cmd, "copy-original", "copy_original", true),
		Verbose:      boolSetting(cmd, "verbose", "verbose", false),
		OCR:          boolSetting(cmd, "ocr", "ocr.enabled", false),
		DeepScan:     boolSetting(cmd, "deep-scan", "deep_scan.enabled", false),
		Binwalk:      boolSetting(cmd, "binwalk", "binwalk", false),
		Crack:        boolSetting(cmd, "crack", "crack", false),
		Intel:        boolSetting(cmd, "intel", "intel.enabled", false),
		Composite:    boolSetting(cmd, "composite", "composite", false),
		YaraRules:    stringSetting(cmd, "yara-rules", "yara_rules", ""),
	}

	forceOCR := true
	if viper.IsSet("ocr.force_ocr") {
		forceOCR = viper.GetBool("ocr.force_ocr")
	}
	cfg.OCR = types.OCRConfig{
		Languages: stringSetting(cmd, "ocr-lang", "ocr.languages", "heb+eng"),
		DPI:       intSetting(cmd, "ocr-dpi", "ocr.dpi", 600),
		ForceOCR:  forceOCR,
	}

	cfg.DeepScan = types.DeepScanConfig{
		Keywords:             viper.GetStringSlice("deep_scan.keywords"),
		MaxMatchesPerKeyword: viper.GetInt("deep_scan.max_matches_per_keyword"),
	}

	cfg.Intel = types.IntelConfig{
		BaseURL:    viper.GetString("intel.base_url"),
		UserAgent:  "pdforensic/" + version,
		APIKey:     secretDefault("intel-api-key", viper.GetString("intel.api_key")),
		MaxRetries: viper.GetInt("intel.max_retries"),
		Timeout:    viper.GetDuration("intel.timeout"),
	}

	cfg.Risk = types.RiskConfig{
		Weights:         riskWeights(),
		Cap:             viper.GetInt("risk.cap"),
		MediumThreshold: viper.GetInt("risk.medium_threshold"),
		HighThreshold:   viper.GetInt("risk.high_threshold"),
	}

	indexDir := viper.GetString("index_dir")
	if indexDir == "" {
		indexDir = filepath.Join(cfg.Scan.OutputDir, "index")
	}
	cfg.Index = types.IndexConfig{IndexDir: indexDir}

	return cfg
}

// riskWeights reads the configured indicator weight table. Nil means the
// built-in risk.DefaultWeights table applies.
func riskWeights() map[string]int {
	raw := viper.GetStringMap("risk.weights")
	if len(raw) == 0 {
		return nil
	}
	weights := make(map[string]int, len(raw))
	for indicator, v := range raw {
		weights[indicator] = cast.ToInt(v)
	}
	return weights
}

func stringSetting(cmd *cobra.Command, flag, key, def string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return def
}

func boolSetting(cmd *cobra.Command, flag, key string, def bool) bool {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return def
}

func intSetting(cmd *cobra.Command, flag, key string, def int) int {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return def
}
