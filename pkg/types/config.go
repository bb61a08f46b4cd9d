// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ScanConfig holds the core settings for a scan run.
type ScanConfig struct {
	// OutputDir is the base directory for run roots (default "forensic_results").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// CopyOriginal controls whether the input PDF is copied into the
	// target's output directory as original.pdf.
	CopyOriginal bool `json:"copy_original" yaml:"copy_original"`

	// Verbose enables per-stage progress output on the console.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// OCR enables the ocrmypdf reconstruction stage.
	OCR bool `json:"ocr" yaml:"ocr"`

	// DeepScan enables stream decompression plus keyword search.
	DeepScan bool `json:"deep_scan" yaml:"deep_scan"`

	// Binwalk enables the embedded-content scan stage.
	Binwalk bool `json:"binwalk" yaml:"binwalk"`

	// Crack enables the encryption check and password-recovery stage.
	Crack bool `json:"crack" yaml:"crack"`

	// Intel enables the reputation lookup stage.
	Intel bool `json:"intel" yaml:"intel"`

	// Composite enables decoded-copy generation and the composite PDF merge.
	Composite bool `json:"composite" yaml:"composite"`

	// YaraRules is the path to a YARA rules file. Empty disables the
	// yara stage.
	YaraRules string `json:"yara_rules,omitempty" yaml:"yara_rules,omitempty"`
}

// OCRConfig holds settings for the OCR stage.
type OCRConfig struct {
	// Languages is the tesseract language spec passed to ocrmypdf -l
	// (default "heb+eng").
	Languages string `json:"languages" yaml:"languages"`

	// DPI is the assumed image DPI for pages without one (default 600).
	DPI int `json:"dpi" yaml:"dpi"`

	// ForceOCR rasterizes and re-OCRs pages that already carry a text layer.
	ForceOCR bool `json:"force_ocr" yaml:"force_ocr"`
}

// DeepScanConfig holds settings for the decompress-and-grep stage.
type DeepScanConfig struct {
	// Keywords are matched case-insensitively against the decoded stream
	// text. Empty uses DefaultKeywords.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// MaxMatchesPerKeyword bounds how many matching lines are kept per
	// keyword (default 20).
	MaxMatchesPerKeyword int `json:"max_matches_per_keyword" yaml:"max_matches_per_keyword"`
}

// DefaultKeywords are the stream markers searched for by the deep-scan
// stage when no keyword list is configured.
var DefaultKeywords = []string{
	"javascript", "js", "launch", "openaction", "aa", "embeddedfile",
	"richmedia", "xfa", "uri", "acroform", "objstm", "hidden", "oc",
}

// IntelConfig holds settings for the reputation lookup stage.
type IntelConfig struct {
	// BaseURL is the threat-intel API endpoint base.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with lookups
	// (e.g. "pdforensic/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// APIKey authenticates lookups. Usually loaded from .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the retry budget for rate-limited requests (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RiskConfig holds the indicator weight table for heuristic scoring.
type RiskConfig struct {
	// Weights maps an indicator substring to its point value. Empty uses
	// DefaultWeights.
	Weights map[string]int `json:"weights" yaml:"weights"`

	// Cap is the maximum score (default 100).
	Cap int `json:"cap" yaml:"cap"`

	// MediumThreshold is the lowest score classified medium (default 30).
	MediumThreshold int `json:"medium_threshold" yaml:"medium_threshold"`

	// HighThreshold is the lowest score classified high (default 70).
	HighThreshold int `json:"high_threshold" yaml:"high_threshold"`
}

// IndexConfig holds settings for the run index.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite run index
	// (default "<output_dir>/index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`
}

// Config groups all sections for one orchestrator invocation. It is built
// once at startup and never mutated afterwards.
type Config struct {
	Scan     ScanConfig     `json:"scan" yaml:"scan"`
	OCR      OCRConfig      `json:"ocr" yaml:"ocr"`
	DeepScan DeepScanConfig `json:"deep_scan" yaml:"deep_scan"`
	Intel    IntelConfig    `json:"intel" yaml:"intel"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Index    IndexConfig    `json:"index" yaml:"index"`
}
