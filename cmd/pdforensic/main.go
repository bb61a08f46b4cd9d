// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdforensic CLI, a forensic
// orchestrator that runs external analysis tools over PDF files and
// assembles their output into per-file reports.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdforensic/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the pdforensic CLI.
var rootCmd = &cobra.Command{
	Use:   "pdforensic",
	Short: "Forensic analysis orchestrator for PDF files",
	Long: `pdforensic sequences external forensic tools (pdfinfo, exiftool, qpdf,
mutool, pdfimages, ocrmypdf, ...) over one or more PDF files, collecting
each tool's output into a per-file directory and assembling consolidated
Markdown reports with a heuristic risk score.

The tools themselves are consumed as black boxes: pdforensic only creates
directories, invokes commands, and gathers their output.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdforensic.yaml or ~/.config/pdforensic/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdforensic")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdforensic"))
		}
	}

	viper.SetEnvPrefix("PDFORENSIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
