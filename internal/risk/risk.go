// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package risk assigns a heuristic score to a target from indicator
// keywords found in its consolidated scan output.
package risk

import (
	"sort"
	"strings"

	"github.com/pdiddy/pdforensic/pkg/types"
)

// DefaultWeights is the built-in indicator table. Keys are matched as
// case-insensitive substrings of the consolidated output. Short tokens
// keep their leading slash to avoid matching ordinary prose.
var DefaultWeights = map[string]int{
	"javascript":   30,
	"launch":       25,
	"openaction":   20,
	"embeddedfile": 15,
	"richmedia":    10,
	"acroform":     5,
	"objstm":       10,
	"xfa":          10,
	"/js":          20,
	"/aa":          10,
	"/uri":         5,
}

const (
	defaultCap             = 100
	defaultMediumThreshold = 30
	defaultHighThreshold   = 70
)

// Match is one indicator found in the output.
type Match struct {
	Indicator string
	Weight    int
}

// Score matches every configured indicator against text and returns the
// capped total plus the individual matches, sorted by descending weight
// then indicator name for stable report output.
func Score(text string, cfg types.RiskConfig) (int, []Match) {
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = DefaultWeights
	}
	cap := cfg.Cap
	if cap <= 0 {
		cap = defaultCap
	}

	lowered := strings.ToLower(text)
	total := 0
	var matches []Match
	for indicator, weight := range weights {
		if strings.Contains(lowered, strings.ToLower(indicator)) {
			total += weight
			matches = append(matches, Match{Indicator: indicator, Weight: weight})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Weight != matches[j].Weight {
			return matches[i].Weight > matches[j].Weight
		}
		return matches[i].Indicator < matches[j].Indicator
	})

	if total > cap {
		total = cap
	}
	return total, matches
}

// Band classifies a score into low, medium, or high.
func Band(score int, cfg types.RiskConfig) types.RiskBand {
	medium := cfg.MediumThreshold
	if medium <= 0 {
		medium = defaultMediumThreshold
	}
	high := cfg.HighThreshold
	if high <= 0 {
		high = defaultHighThreshold
	}

	switch {
	case score >= high:
		return types.RiskHigh
	case score >= medium:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}
