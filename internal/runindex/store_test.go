// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runindex

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/pdforensic/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.IndexConfig{IndexDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSummary(id string, started time.Time, targets ...types.TargetRecord) types.RunSummary {
	return types.RunSummary{
		ID:         id,
		RootDir:    "/tmp/" + id,
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Processed:  len(targets),
		Targets:    targets,
	}
}

func sampleTarget(id, source string, band types.RiskBand, processed time.Time) types.TargetRecord {
	return types.TargetRecord{
		ID:          id,
		Status:      types.TargetDone,
		SourcePath:  source,
		OutputDir:   "/tmp/out/" + id,
		SHA256:      "deadbeef",
		ProcessedAt: processed,
		RiskBand:    band,
		Stages: []types.StageResult{
			{Name: "hashes", Status: types.StageDone},
		},
	}
}

func TestRecordRunAndQueryRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := s.RecordRun(ctx, sampleSummary("run_a", t0)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(ctx, sampleSummary("run_b", t1)); err != nil {
		t.Fatal(err)
	}

	runs, err := s.Runs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ID != "run_b" || runs[1].ID != "run_a" {
		t.Errorf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}

	runs, err = s.Runs(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("limit ignored: got %d runs", len(runs))
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := s.RecordRun(ctx, sampleSummary("run_a", t0)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(ctx, sampleSummary("run_a", t0)); err == nil {
		t.Error("expected primary key violation for duplicate run ID")
	}
}

func TestTargetsFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	summary := sampleSummary("run_a", t0,
		sampleTarget("invoice_1", "/docs/invoice.pdf", types.RiskHigh, t0.Add(time.Second)),
		sampleTarget("memo_1", "/docs/memo.pdf", types.RiskLow, t0.Add(2*time.Second)),
		sampleTarget("invoice_2", "/mail/invoice.pdf", types.RiskLow, t0.Add(3*time.Second)),
	)
	if err := s.RecordRun(ctx, summary); err != nil {
		t.Fatal(err)
	}

	t.Run("no filters returns all newest first", func(t *testing.T) {
		rows, err := s.Targets(ctx, QueryOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 {
			t.Fatalf("got %d rows, want 3", len(rows))
		}
		if rows[0].ID != "invoice_2" {
			t.Errorf("first row = %s, want invoice_2", rows[0].ID)
		}
	})

	t.Run("risk band filter", func(t *testing.T) {
		rows, err := s.Targets(ctx, QueryOptions{RiskBand: "high"})
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 1 || rows[0].ID != "invoice_1" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})

	t.Run("target substring filter", func(t *testing.T) {
		rows, err := s.Targets(ctx, QueryOptions{Target: "invoice"})
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 2 {
			t.Errorf("got %d rows, want 2", len(rows))
		}
	})

	t.Run("combined filters", func(t *testing.T) {
		rows, err := s.Targets(ctx, QueryOptions{Target: "invoice", RiskBand: "low"})
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 1 || rows[0].ID != "invoice_2" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})

	t.Run("limit", func(t *testing.T) {
		rows, err := s.Targets(ctx, QueryOptions{Limit: 2})
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 2 {
			t.Errorf("got %d rows, want 2", len(rows))
		}
	})
}

func TestTargetRowFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rec := sampleTarget("doc_1", "/docs/doc.pdf", types.RiskMedium, t0)
	rec.RiskScore = 45
	rec.Warnings = 2
	if err := s.RecordRun(ctx, sampleSummary("run_a", t0, rec)); err != nil {
		t.Fatal(err)
	}

	rows, err := s.Targets(ctx, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.RunID != "run_a" || row.SourcePath != "/docs/doc.pdf" ||
		row.SHA256 != "deadbeef" || row.RiskScore != 45 ||
		row.RiskBand != "medium" || row.Warnings != 2 {
		t.Errorf("row fields wrong: %+v", row)
	}
}
