// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan implements the forensic orchestrator: for each target PDF
// it creates an isolated output directory, drives the external tool
// stages in a fixed order, and assembles the per-target and run-level
// reports. Targets and stages run strictly sequentially; one stage's
// failure never stops the stages after it.
package scan

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdforensic/internal/report"
	"github.com/pdiddy/pdforensic/internal/risk"
	"github.com/pdiddy/pdforensic/internal/toolchain"
	"github.com/pdiddy/pdforensic/pkg/types"
)

const (
	consolidatedFile = "consolidated_report.md"
	runLogFile       = "pdforensic.log"
	summaryFile      = "summary.md"
	timestampLayout  = "20060102_150405"
)

// Runner executes one scan run. All fields are set at construction and
// never mutated during the run.
type Runner struct {
	Cfg  types.Config
	Exec toolchain.Executor

	// GOOS gates platform-specific stages. Defaults to runtime.GOOS.
	GOOS string

	// Client is used by the intel stage.
	Client *http.Client

	// Console receives live progress and warnings; the run log file gets
	// the same lines.
	Console io.Writer

	// Now is the clock, injectable for tests.
	Now func() time.Time

	stages []Stage
}

// New builds a Runner with production defaults.
func New(cfg types.Config, exec toolchain.Executor, console io.Writer) *Runner {
	timeout := cfg.Intel.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		Cfg:     cfg,
		Exec:    exec,
		GOOS:    runtime.GOOS,
		Client:  &http.Client{Timeout: timeout},
		Console: console,
		Now:     time.Now,
		stages:  stageTable(),
	}
}

// Run processes the targets in order under a fresh run root. It returns a
// fatal error only for run-level failures (root or log creation); target
// and stage failures are recorded in the summary and do not abort the run.
// resolveWarnings is the count of inputs the resolver rejected, folded
// into the summary's error count.
func (r *Runner) Run(targets []types.Target, resolveWarnings int) (types.RunSummary, error) {
	start := r.Now()
	runID := "run_" + start.Format(timestampLayout)
	root := filepath.Join(r.Cfg.Scan.OutputDir, runID)

	summary := types.RunSummary{
		ID:        runID,
		RootDir:   root,
		StartedAt: start,
		Errors:    resolveWarnings,
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return summary, fmt.Errorf("creating run root %s: %w", root, err)
	}

	logf, err := os.Create(filepath.Join(root, runLogFile))
	if err != nil {
		return summary, fmt.Errorf("creating run log: %w", err)
	}
	defer logf.Close()
	logw := io.MultiWriter(r.Console, logf)

	cons, err := os.Create(filepath.Join(root, consolidatedFile))
	if err != nil {
		return summary, fmt.Errorf("creating consolidated report: %w", err)
	}
	defer cons.Close()
	fmt.Fprintf(cons, "# Consolidated Forensic Report\n\nRun %s started %s.\n",
		runID, start.Format(time.RFC3339))

	used := make(map[string]int)
	for _, t := range targets {
		fmt.Fprintf(logw, "processing: %s\n", t.Path)
		rec := r.processTarget(t, root, used, logw, cons)
		summary.Targets = append(summary.Targets, rec)
		if rec.Status == types.TargetDone {
			summary.Processed++
		} else {
			summary.Errors++
		}
		summary.Warnings += rec.Warnings
	}

	summary.FinishedAt = r.Now()

	if err := report.WriteSummary(filepath.Join(root, summaryFile), summary); err != nil {
		fmt.Fprintf(logw, "warning: %v\n", err)
	}
	fmt.Fprintf(logw, "Processed %d target(s), %d error(s), %d warning(s).\n",
		summary.Processed, summary.Errors, summary.Warnings)

	return summary, nil
}

// allocateID derives a collision-free output directory name. Two targets
// with the same stem in one run get _2, _3 suffixes instead of sharing a
// directory.
func allocateID(stem, ts string, used map[string]int) string {
	id := stem + "_" + ts
	used[id]++
	if n := used[id]; n > 1 {
		id = fmt.Sprintf("%s_%d", id, n)
	}
	return id
}

// processTarget runs the full stage pipeline for one target. Directory
// creation failure is terminal for the target but not for the run.
func (r *Runner) processTarget(t types.Target, root string, used map[string]int, logw io.Writer, cons io.Writer) types.TargetRecord {
	now := r.Now()
	id := allocateID(t.Stem, now.Format(timestampLayout), used)
	outDir := filepath.Join(root, id)

	rec := types.TargetRecord{
		ID:          id,
		Status:      types.TargetDone,
		SourcePath:  t.Path,
		OutputDir:   outDir,
		ProcessedAt: now,
	}

	dirs := newDirs(outDir)
	if err := dirs.create(); err != nil {
		rec.Status = types.TargetDirFailed
		fmt.Fprintf(logw, "error: %s: %v\n", t.Path, err)
		return rec
	}

	pdf := t.Path
	if abs, err := filepath.Abs(t.Path); err == nil {
		pdf = abs
	}

	if r.Cfg.Scan.CopyOriginal {
		if err := copyFile(pdf, filepath.Join(outDir, "original.pdf")); err != nil {
			rec.Warnings++
			fmt.Fprintf(logw, "warning: copying original for %s: %v\n", t.Path, err)
		}
	}

	// Stage diagnostics are teed into a per-target log next to the report.
	stageLog := logw
	if tlog, err := os.Create(filepath.Join(outDir, "scan.log")); err == nil {
		defer tlog.Close()
		stageLog = io.MultiWriter(logw, tlog)
	} else {
		rec.Warnings++
		fmt.Fprintf(logw, "warning: creating scan log for %s: %v\n", t.Path, err)
	}

	c := &Context{
		Cfg:    r.Cfg,
		Exec:   r.Exec,
		GOOS:   r.GOOS,
		PDF:    pdf,
		Dirs:   dirs,
		Rec:    &rec,
		Log:    stageLog,
		Client: r.Client,
	}

	rep := report.NewTarget(rec)
	for _, st := range r.stages {
		res, sec, include := r.runStage(st, c)
		if !include {
			continue
		}
		rec.Stages = append(rec.Stages, res)
		rep.Add(sec)
		if res.Status == types.StageFailed {
			rec.Warnings++
		}
	}

	score, matches := risk.Score(rep.Text(), r.Cfg.Risk)
	rec.RiskScore = score
	rec.RiskBand = risk.Band(score, r.Cfg.Risk)
	rep.Add(riskSection(score, rec.RiskBand, matches))

	if err := rep.WriteFile(filepath.Join(outDir, "report.md"), rec); err != nil {
		rec.Warnings++
		fmt.Fprintf(logw, "warning: %v\n", err)
	}
	rep.AppendConsolidated(cons, rec)

	if err := writeTargetYAML(filepath.Join(outDir, "target.yaml"), rec); err != nil {
		rec.Warnings++
		fmt.Fprintf(logw, "warning: %v\n", err)
	}

	fmt.Fprintf(logw, "done: %s (risk %d/%s, %d warning(s))\n",
		rec.ID, rec.RiskScore, rec.RiskBand, rec.Warnings)
	return rec
}

// runStage executes one stage with full isolation: any failure is turned
// into a warning section and the pipeline moves on. The third return
// value is false when the stage is not part of this run (disabled or
// wrong platform).
func (r *Runner) runStage(st Stage, c *Context) (types.StageResult, report.Section, bool) {
	if st.Platform != "" && st.Platform != r.GOOS {
		return types.StageResult{}, report.Section{}, false
	}
	if st.Enabled != nil && !st.Enabled(r.Cfg) {
		return types.StageResult{}, report.Section{}, false
	}

	if r.Cfg.Scan.Verbose {
		fmt.Fprintf(c.Log, "  stage: %s\n", st.Name)
	}

	res := types.StageResult{Name: st.Name, Status: types.StageDone}
	sec := report.Section{Heading: st.Heading}

	if st.Custom != nil {
		body, err := st.Custom(c)
		if err != nil {
			res.Status = types.StageFailed
			res.Detail = err.Error()
			sec.Failed = true
			sec.Detail = err.Error()
			fmt.Fprintf(c.Log, "warning: stage %s: %v\n", st.Name, err)
			return res, sec, true
		}
		sec.Body = body
		return res, sec, true
	}

	var parts []string
	for _, cmd := range st.Commands {
		if _, err := c.Exec.LookPath(cmd.Tool); err != nil {
			if st.Optional {
				res.Status = types.StageSkipped
				res.Detail = cmd.Tool + " not installed"
				fmt.Fprintf(c.Log, "notice: stage %s skipped: %s not installed\n", st.Name, cmd.Tool)
				return res, sec, true
			}
			res.Status = types.StageFailed
			res.Detail = cmd.Tool + " not found"
			sec.Failed = true
			sec.Detail = res.Detail
			fmt.Fprintf(c.Log, "warning: stage %s: %s not found\n", st.Name, cmd.Tool)
			continue
		}

		body, err := r.runCommand(cmd, c)
		if err != nil {
			res.Status = types.StageFailed
			res.Detail = err.Error()
			sec.Failed = true
			sec.Detail = err.Error()
			fmt.Fprintf(c.Log, "warning: stage %s: %v\n", st.Name, err)
			continue
		}
		if body != "" {
			parts = append(parts, body)
		}
	}
	sec.Body = strings.Join(parts, "\n\n")
	return res, sec, true
}

// runCommand executes one external invocation, routing stdout to the
// configured artifact and/or the report section, and stderr to the run
// log. A non-zero, non-benign exit is an error.
func (r *Runner) runCommand(cmd Command, c *Context) (string, error) {
	args := cmd.Args(c)
	dir := ""
	if cmd.Dir != nil {
		dir = cmd.Dir(c)
	}

	var capture bytes.Buffer
	var writers []io.Writer
	if cmd.Artifact != "" {
		path := filepath.Join(c.Dirs.Root, filepath.FromSlash(cmd.Artifact))
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("creating artifact %s: %w", cmd.Artifact, err)
		}
		defer f.Close()
		writers = append(writers, f)
	}
	if cmd.Embed {
		writers = append(writers, &capture)
	}
	var stdout io.Writer = io.Discard
	if len(writers) > 0 {
		stdout = io.MultiWriter(writers...)
	}

	exit, err := c.Exec.Run(cmd.Tool, args, dir, stdout, c.Log)
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd.Tool, err)
	}
	if exit != 0 && !benign(exit, cmd.BenignExits) {
		return "", fmt.Errorf("%s exited %d", cmd.Tool, exit)
	}

	var body string
	switch {
	case cmd.Embed:
		body = strings.TrimSpace(capture.String())
	case cmd.Creates != "":
		body = "wrote " + cmd.Creates
	case cmd.Artifact != "":
		body = "wrote " + cmd.Artifact
	}
	if exit != 0 {
		note := fmt.Sprintf("(%s exited %d)", cmd.Tool, exit)
		if body == "" {
			body = note
		} else {
			body += "\n" + note
		}
	}
	return body, nil
}

// riskSection renders the scoring result as the report's final section.
func riskSection(score int, band types.RiskBand, matches []risk.Match) report.Section {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d (%s)\n", score, band)
	if len(matches) == 0 {
		b.WriteString("No scored indicators present.")
	} else {
		for _, m := range matches {
			fmt.Fprintf(&b, "  %-14s +%d\n", m.Indicator, m.Weight)
		}
	}
	return report.Section{
		Heading: "Risk Assessment",
		Body:    strings.TrimRight(b.String(), "\n"),
	}
}

func writeTargetYAML(path string, rec types.TargetRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling target record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
