// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain verifies and executes the external forensic tools the
// orchestrator wraps. Every tool invocation in the pipeline goes through
// the Executor interface so the orchestrator can be tested without the
// real binaries installed.
package toolchain

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pdiddy/pdforensic/pkg/types"
)

// Tool describes one external command the pipeline may invoke.
type Tool struct {
	// Binary is the command name resolved on PATH.
	Binary string

	// Purpose is a short description for the tools listing.
	Purpose string

	// Required marks tools whose absence aborts the run. Feature-gated
	// tools become required only when their feature is enabled.
	Required bool

	// Feature names the ScanConfig toggle that gates this tool. Empty
	// means the tool is part of the base set.
	Feature string

	// Platform restricts the tool to one GOOS (e.g. "darwin"). Empty
	// means all platforms.
	Platform string
}

// Status is the availability of one tool on the current system.
type Status struct {
	Tool  Tool
	Path  string
	Found bool
}

// catalog is the fixed tool table. Order is the listing order.
var catalog = []Tool{
	{Binary: "pdfinfo", Purpose: "document info and metadata", Required: true},
	{Binary: "exiftool", Purpose: "embedded metadata extraction", Required: true},
	{Binary: "pdftotext", Purpose: "text layer extraction", Required: true},
	{Binary: "qpdf", Purpose: "structure checks and stream decoding", Required: true},
	{Binary: "mutool", Purpose: "object info, extraction, page merge", Required: true},
	{Binary: "pdfimages", Purpose: "embedded image extraction", Required: true},
	{Binary: "pdffonts", Purpose: "font listing", Required: true},
	{Binary: "pdfseparate", Purpose: "page separation", Required: true},
	{Binary: "pdfsig", Purpose: "digital signature verification", Required: true},
	{Binary: "strings", Purpose: "printable string dump", Required: true},
	{Binary: "xxd", Purpose: "binary hex dump", Required: true},
	{Binary: "mdls", Purpose: "Spotlight metadata", Required: true, Platform: "darwin"},
	{Binary: "ocrmypdf", Purpose: "OCR reconstruction", Required: true, Feature: "ocr"},
	{Binary: "binwalk", Purpose: "embedded content scan", Required: true, Feature: "binwalk"},
	{Binary: "pdfcrack", Purpose: "password recovery", Required: true, Feature: "crack"},
	{Binary: "yara", Purpose: "rules-based static scan", Required: true, Feature: "yara"},
	{Binary: "pdf-parser.py", Purpose: "object statistics", Required: false},
}

// Catalog returns a copy of the tool table.
func Catalog() []Tool {
	out := make([]Tool, len(catalog))
	copy(out, catalog)
	return out
}

// Executor abstracts command execution for testing.
type Executor interface {
	// LookPath resolves a binary name on PATH.
	LookPath(file string) (string, error)

	// Run executes a command in dir (empty inherits the process working
	// directory), streaming stdout and stderr to the given writers. It
	// returns the process exit code. The error is non-nil only when the
	// process could not be started or did not run to an exit status.
	Run(name string, args []string, dir string, stdout, stderr io.Writer) (int, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(name string, args []string, dir string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Default returns the production executor.
func Default() Executor {
	return osExecutor{}
}

// featureEnabled maps a Tool.Feature key to its ScanConfig toggle.
func featureEnabled(cfg types.ScanConfig, feature string) bool {
	switch feature {
	case "":
		return true
	case "ocr":
		return cfg.OCR
	case "binwalk":
		return cfg.Binwalk
	case "crack":
		return cfg.Crack
	case "yara":
		return cfg.YaraRules != ""
	default:
		return false
	}
}

// Verify resolves every catalog tool relevant to cfg and goos on PATH.
// It returns the per-tool statuses and an error listing missing required
// tools. Per the fail-fast policy a non-nil error means no target may be
// processed.
func Verify(exec Executor, cfg types.ScanConfig, goos string) ([]Status, error) {
	var statuses []Status
	var missing []string

	for _, tool := range catalog {
		if tool.Platform != "" && tool.Platform != goos {
			continue
		}
		if !featureEnabled(cfg, tool.Feature) {
			continue
		}

		path, err := exec.LookPath(tool.Binary)
		st := Status{Tool: tool, Path: path, Found: err == nil}
		statuses = append(statuses, st)

		if tool.Required && !st.Found {
			missing = append(missing, tool.Binary)
		}
	}

	if len(missing) > 0 {
		return statuses, fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return statuses, nil
}
