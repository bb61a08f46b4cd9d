// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package risk

import (
	"strings"
	"testing"

	"github.com/pdiddy/pdforensic/pkg/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		cfg  types.RiskConfig
		want int
	}{
		{
			name: "no indicators",
			text: "perfectly ordinary invoice text",
			want: 0,
		},
		{
			name: "two known indicators sum their weights",
			text: "found javascript and a launch action",
			want: DefaultWeights["javascript"] + DefaultWeights["launch"],
		},
		{
			name: "matching is case-insensitive",
			text: "/JavaScript /Launch",
			want: DefaultWeights["javascript"] + DefaultWeights["launch"],
		},
		{
			name: "duplicate occurrences count once",
			text: "launch launch launch",
			want: DefaultWeights["launch"],
		},
		{
			name: "total capped",
			text: strings.Join([]string{
				"javascript", "launch", "openaction", "embeddedfile",
				"richmedia", "acroform", "objstm", "xfa", "/js", "/aa", "/uri",
			}, " "),
			want: 100,
		},
		{
			name: "custom weights",
			text: "contains trigger here",
			cfg:  types.RiskConfig{Weights: map[string]int{"trigger": 42}},
			want: 42,
		},
		{
			name: "custom cap",
			text: "a b c",
			cfg: types.RiskConfig{
				Weights: map[string]int{"a": 30, "b": 30, "c": 30},
				Cap:     50,
			},
			want: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Score(tt.text, tt.cfg)
			if got != tt.want {
				t.Errorf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreMatchesSorted(t *testing.T) {
	_, matches := Score("javascript launch openaction", types.RiskConfig{})
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Weight < matches[i].Weight {
			t.Errorf("matches not sorted by descending weight: %v", matches)
		}
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		score int
		want  types.RiskBand
	}{
		{0, types.RiskLow},
		{29, types.RiskLow},
		{30, types.RiskMedium},
		{69, types.RiskMedium},
		{70, types.RiskHigh},
		{100, types.RiskHigh},
	}
	for _, tt := range tests {
		if got := Band(tt.score, types.RiskConfig{}); got != tt.want {
			t.Errorf("Band(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestBandCustomThresholds(t *testing.T) {
	cfg := types.RiskConfig{MediumThreshold: 10, HighThreshold: 20}
	if got := Band(15, cfg); got != types.RiskMedium {
		t.Errorf("Band(15) = %q, want medium", got)
	}
	if got := Band(20, cfg); got != types.RiskHigh {
		t.Errorf("Band(20) = %q, want high", got)
	}
}
