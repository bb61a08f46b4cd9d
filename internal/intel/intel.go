// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intel queries a threat-intelligence HTTP API for the reputation
// of a file hash. The API is consumed as a black box: the stage only
// renders the returned verdict into the report.
package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/pdforensic/internal/httputil"
	"github.com/pdiddy/pdforensic/pkg/types"
)

// Report is the reputation verdict for one file hash.
type Report struct {
	// SHA256 is the hash that was looked up.
	SHA256 string `json:"sha256" yaml:"sha256"`

	// Verdict is the API's classification ("clean", "malicious",
	// "suspicious") or "unknown" when the hash has never been seen.
	Verdict string `json:"verdict" yaml:"verdict"`

	// Positives is the number of engines flagging the file.
	Positives int `json:"positives" yaml:"positives"`

	// Total is the number of engines consulted.
	Total int `json:"total" yaml:"total"`
}

// String renders the report for a consolidated-report section.
func (r Report) String() string {
	if r.Verdict == "unknown" {
		return fmt.Sprintf("sha256 %s: not previously seen by the reputation service", r.SHA256)
	}
	return fmt.Sprintf("sha256 %s: verdict %s (%d/%d engines)", r.SHA256, r.Verdict, r.Positives, r.Total)
}

// Lookup fetches the reputation of sha256 from cfg.BaseURL. A 404 from the
// API means the hash is unknown and is not an error. Rate-limited requests
// are retried with backoff per httputil.DoWithRetry.
func Lookup(ctx context.Context, client *http.Client, sha256 string, cfg types.IntelConfig) (*Report, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("intel lookup: no base URL configured")
	}

	url := fmt.Sprintf("%s/files/%s", cfg.BaseURL, sha256)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating intel request: %w", err)
	}
	if cfg.APIKey != "" {
		req.Header.Set("x-apikey", cfg.APIKey)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("intel API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decode.
	case http.StatusNotFound:
		return &Report{SHA256: sha256, Verdict: "unknown"}, nil
	default:
		return nil, fmt.Errorf("intel API returned HTTP %d", resp.StatusCode)
	}

	var r Report
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing intel response: %w", err)
	}
	r.SHA256 = sha256
	if r.Verdict == "" {
		r.Verdict = "unknown"
	}
	return &r, nil
}
