// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the per-target Markdown reports and the
// run-level consolidated report. Writing is append-only and preserves
// stage order; a failed stage renders an explicit placeholder instead of
// being omitted.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pdforensic/pkg/types"
)

// Placeholder is rendered in place of a section body when the stage
// produced no usable output.
const Placeholder = "_Not available: stage did not produce output._"

// Section is one stage's block in a target report.
type Section struct {
	// Heading is the human-readable stage title.
	Heading string

	// Body is the captured output, already trimmed. Empty bodies render
	// the placeholder.
	Body string

	// Failed marks sections whose stage failed; the failure detail is
	// rendered alongside the placeholder.
	Failed bool

	// Detail carries the failure note (tool name and exit code).
	Detail string
}

// Target accumulates the report for one target. Sections are kept in the
// order they are added.
type Target struct {
	rec      types.TargetRecord
	sections []Section
}

// NewTarget starts a report for the given target record.
func NewTarget(rec types.TargetRecord) *Target {
	return &Target{rec: rec}
}

// Add appends a section.
func (t *Target) Add(s Section) {
	t.sections = append(t.sections, s)
}

// Text returns the concatenated section bodies. Risk scoring runs over
// this text.
func (t *Target) Text() string {
	var b strings.Builder
	for _, s := range t.sections {
		b.WriteString(s.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// Render writes the full Markdown report for the target.
func (t *Target) Render(w io.Writer, rec types.TargetRecord) {
	fmt.Fprintf(w, "# Forensic Analysis Report: %s\n\n", rec.ID)
	fmt.Fprintf(w, "- Source: `%s`\n", rec.SourcePath)
	fmt.Fprintf(w, "- Processed: %s\n", rec.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "- MD5: `%s`\n", rec.MD5)
	fmt.Fprintf(w, "- SHA-256: `%s`\n", rec.SHA256)
	fmt.Fprintf(w, "- Risk: %d (%s)\n\n", rec.RiskScore, rec.RiskBand)

	for _, s := range t.sections {
		fmt.Fprintf(w, "## %s\n\n", s.Heading)
		body := strings.TrimSpace(s.Body)
		switch {
		case body == "":
			fmt.Fprintf(w, "%s\n\n", Placeholder)
		default:
			fmt.Fprintf(w, "```\n%s\n```\n\n", body)
		}
		if s.Failed && s.Detail != "" {
			fmt.Fprintf(w, "Failure: %s\n\n", s.Detail)
		}
	}
}

// WriteFile renders the target report to path.
func (t *Target) WriteFile(path string, rec types.TargetRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()
	t.Render(f, rec)
	return nil
}

// AppendConsolidated appends the target's block to the run-level report.
func (t *Target) AppendConsolidated(w io.Writer, rec types.TargetRecord) {
	fmt.Fprintf(w, "\n---\n\n")
	t.Render(w, rec)
}

// WriteSummary writes the run-level summary index linking each target
// report, followed by the final counts line.
func WriteSummary(path string, summary types.RunSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Run Summary: %s\n\n", summary.ID)
	fmt.Fprintf(f, "Started %s, finished %s.\n\n",
		summary.StartedAt.Format(time.RFC3339), summary.FinishedAt.Format(time.RFC3339))

	if len(summary.Targets) > 0 {
		fmt.Fprintf(f, "| Target | Risk | Warnings | Report |\n")
		fmt.Fprintf(f, "|--------|------|----------|--------|\n")
		for _, rec := range summary.Targets {
			// Failed targets have no report to link.
			cell := string(rec.Status)
			if rec.Status == types.TargetDone {
				cell = fmt.Sprintf("[report](%s)", filepath.Join(rec.ID, "report.md"))
			}
			fmt.Fprintf(f, "| %s | %d (%s) | %d | %s |\n",
				rec.ID, rec.RiskScore, rec.RiskBand, rec.Warnings, cell)
		}
		fmt.Fprintf(f, "\n")
	}

	fmt.Fprintf(f, "Processed %d target(s), %d error(s), %d warning(s).\n",
		summary.Processed, summary.Errors, summary.Warnings)
	return nil
}
