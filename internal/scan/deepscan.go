// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/pdforensic/pkg/types"
)

const (
	// maxSampleLen truncates matched lines before they reach the report.
	maxSampleLen = 200

	defaultMaxMatches = 20
)

// keywordHit is one keyword's matches in a scanned byte stream.
type keywordHit struct {
	Keyword string
	Count   int
	Samples []string
}

// scanKeywords reads r line by line and collects lines containing any of
// the keywords, case-insensitively. At most maxSamples lines are kept per
// keyword; counting continues past the bound. Lines that cannot be split
// (no trailing newline, binary runs) are still matched against.
func scanKeywords(r io.Reader, keywords []string, maxSamples int) []keywordHit {
	if maxSamples <= 0 {
		maxSamples = defaultMaxMatches
	}

	hits := make([]keywordHit, len(keywords))
	for i, k := range keywords {
		hits[i] = keywordHit{Keyword: k}
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lowered := strings.ToLower(line)
			for i := range hits {
				if !strings.Contains(lowered, strings.ToLower(hits[i].Keyword)) {
					continue
				}
				hits[i].Count++
				if len(hits[i].Samples) < maxSamples {
					sample := truncateSample(strings.TrimSpace(line))
					hits[i].Samples = append(hits[i].Samples, sample)
				}
			}
		}
		if err != nil {
			break
		}
	}

	var found []keywordHit
	for _, h := range hits {
		if h.Count > 0 {
			found = append(found, h)
		}
	}
	return found
}

// truncateSample bounds a sample at maxSampleLen bytes without splitting
// a multi-byte rune.
func truncateSample(sample string) string {
	if len(sample) <= maxSampleLen {
		return sample
	}
	cut := maxSampleLen
	for cut > 0 && !utf8.RuneStart(sample[cut]) {
		cut--
	}
	return sample[:cut]
}

func formatHits(hits []keywordHit) string {
	if len(hits) == 0 {
		return "No indicator keywords found."
	}
	var b strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&b, "%s: %d match(es)\n", h.Keyword, h.Count)
		for _, s := range h.Samples {
			fmt.Fprintf(&b, "    %s\n", s)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// hiddenStage dumps printable strings from the PDF and searches the dump
// for hidden-layer markers.
func hiddenStage(c *Context) (string, error) {
	dumpPath := filepath.Join(c.Dirs.Hex, "strings_dump.txt")
	dump, err := os.Create(dumpPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dumpPath, err)
	}

	exit, err := c.Exec.Run("strings", []string{c.PDF}, "", dump, c.Log)
	dump.Close()
	if err != nil {
		return "", fmt.Errorf("strings: %w", err)
	}
	if exit != 0 {
		return "", fmt.Errorf("strings exited %d", exit)
	}

	f, err := os.Open(dumpPath)
	if err != nil {
		return "", fmt.Errorf("reopening %s: %w", dumpPath, err)
	}
	defer f.Close()

	hits := scanKeywords(f, []string{"hidden", "/oc"}, defaultMaxMatches)
	body := formatHits(hits)

	outPath := filepath.Join(c.Dirs.Hex, "hidden_text.txt")
	if err := os.WriteFile(outPath, []byte(body+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return body, nil
}

// deepScanStage decodes the PDF's streams into a temporary working copy,
// searches it for the configured keywords, and removes the copy before
// returning.
func deepScanStage(c *Context) (string, error) {
	keywords := c.Cfg.DeepScan.Keywords
	if len(keywords) == 0 {
		keywords = types.DefaultKeywords
	}

	work := filepath.Join(c.Dirs.Structure, "decoded_work.pdf")
	defer os.Remove(work)

	args := []string{"--qdf", "--object-streams=disable", c.PDF, work}
	exit, err := c.Exec.Run("qpdf", args, "", io.Discard, c.Log)
	if err != nil {
		return "", fmt.Errorf("qpdf: %w", err)
	}
	// Exit 3 is qpdf's "completed with warnings".
	if exit != 0 && exit != 3 {
		return "", fmt.Errorf("qpdf exited %d", exit)
	}

	f, err := os.Open(work)
	if err != nil {
		return "", fmt.Errorf("opening decoded copy: %w", err)
	}
	defer f.Close()

	hits := scanKeywords(f, keywords, c.Cfg.DeepScan.MaxMatchesPerKeyword)
	body := formatHits(hits)

	outPath := filepath.Join(c.Dirs.Structure, "deepscan.txt")
	if err := os.WriteFile(outPath, []byte(body+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return body, nil
}
