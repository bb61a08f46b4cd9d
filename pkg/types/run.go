// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdforensic pipeline.
package types

import "time"

// Target is one input PDF queued for analysis.
type Target struct {
	// Path is the filesystem path as resolved from the command line.
	Path string `json:"path" yaml:"path"`

	// Stem is the base name without the .pdf extension, used to derive
	// the output directory name.
	Stem string `json:"stem" yaml:"stem"`
}

// StageStatus is the outcome of one stage for one target.
type StageStatus string

const (
	// StageDone means the stage ran and produced output.
	StageDone StageStatus = "done"

	// StageFailed means the tool exited non-zero (excluding benign exits)
	// or could not be started.
	StageFailed StageStatus = "failed"

	// StageSkipped means an optional stage's tool was not installed.
	StageSkipped StageStatus = "skipped"
)

// StageResult records one stage invocation for the report and the
// target.yaml sidecar.
type StageResult struct {
	// Name is the stage identifier (e.g. "metadata", "ocr").
	Name string `json:"name" yaml:"name"`

	// Status is the stage outcome.
	Status StageStatus `json:"status" yaml:"status"`

	// Detail is a short human-readable note (error text, benign-exit
	// explanation). Empty on plain success.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// RiskBand classifies a heuristic risk score.
type RiskBand string

const (
	RiskLow    RiskBand = "low"
	RiskMedium RiskBand = "medium"
	RiskHigh   RiskBand = "high"
)

// TargetStatus is the terminal state of a target.
type TargetStatus string

const (
	// TargetDone means the target was processed and reported.
	TargetDone TargetStatus = "done"

	// TargetDirFailed means the output directory could not be created;
	// all stages were skipped for this target.
	TargetDirFailed TargetStatus = "dir_failed"
)

// TargetRecord is the persisted per-target summary. It is written as
// target.yaml in the output directory and mirrored into the run index.
type TargetRecord struct {
	// ID is the output directory base name, unique within the run.
	ID string `json:"id" yaml:"id"`

	// Status is the terminal state for this target.
	Status TargetStatus `json:"status" yaml:"status"`

	// SourcePath is the analyzed PDF's original location.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// OutputDir is the directory holding this target's artifacts.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MD5 and SHA256 are content digests of the source PDF.
	MD5    string `json:"md5" yaml:"md5"`
	SHA256 string `json:"sha256" yaml:"sha256"`

	// ProcessedAt is when stage processing started for this target.
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// Stages lists stage outcomes in execution order.
	Stages []StageResult `json:"stages" yaml:"stages"`

	// RiskScore is the heuristic indicator score (0..cap).
	RiskScore int `json:"risk_score" yaml:"risk_score"`

	// RiskBand is the classification of RiskScore.
	RiskBand RiskBand `json:"risk_band" yaml:"risk_band"`

	// Warnings counts stage failures for this target.
	Warnings int `json:"warnings" yaml:"warnings"`
}

// RunSummary aggregates one orchestrator invocation.
type RunSummary struct {
	// ID is the run root directory base name.
	ID string `json:"id" yaml:"id"`

	// RootDir is the run root directory path.
	RootDir string `json:"root_dir" yaml:"root_dir"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Processed counts targets that reached the report stage.
	Processed int `json:"processed" yaml:"processed"`

	// Errors counts target-level failures (directory creation) plus
	// resolver warnings.
	Errors int `json:"errors" yaml:"errors"`

	// Warnings counts stage-level failures across all targets.
	Warnings int `json:"warnings" yaml:"warnings"`

	// Targets holds the per-target records in processing order.
	Targets []TargetRecord `json:"targets" yaml:"targets"`
}
