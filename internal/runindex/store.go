// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runindex persists run and target summaries in a SQLite database
// so past scans can be queried without re-reading run directories.
package runindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdforensic/pkg/types"
)

const dbFile = "pdforensic.db"

// Store manages the run index SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the run index at indexDir/pdforensic.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening run index: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root_dir TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			processed INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			warnings INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS targets (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source_path TEXT NOT NULL,
			output_dir TEXT,
			md5 TEXT,
			sha256 TEXT,
			status TEXT NOT NULL,
			risk_score INTEGER,
			risk_band TEXT,
			warnings INTEGER NOT NULL,
			processed_at TEXT,
			stages TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_targets_run_id ON targets(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_targets_risk_band ON targets(risk_band)`,
		`CREATE INDEX IF NOT EXISTS idx_targets_sha256 ON targets(sha256)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun inserts a completed run and its targets in one transaction.
func (s *Store) RecordRun(ctx context.Context, summary types.RunSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, root_dir, started_at, finished_at, processed, errors, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.RootDir,
		summary.StartedAt.Format(time.RFC3339),
		summary.FinishedAt.Format(time.RFC3339),
		summary.Processed, summary.Errors, summary.Warnings,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", summary.ID, err)
	}

	for _, rec := range summary.Targets {
		stages, err := json.Marshal(rec.Stages)
		if err != nil {
			return fmt.Errorf("marshaling stages for %s: %w", rec.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO targets (id, run_id, source_path, output_dir, md5, sha256,
			                      status, risk_score, risk_band, warnings, processed_at, stages)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, summary.ID, rec.SourcePath, rec.OutputDir, rec.MD5, rec.SHA256,
			string(rec.Status), rec.RiskScore, string(rec.RiskBand), rec.Warnings,
			rec.ProcessedAt.Format(time.RFC3339), string(stages),
		)
		if err != nil {
			return fmt.Errorf("inserting target %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// RunRow is one run as stored in the index.
type RunRow struct {
	ID         string `json:"id"`
	RootDir    string `json:"root_dir"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Processed  int    `json:"processed"`
	Errors     int    `json:"errors"`
	Warnings   int    `json:"warnings"`
}

// TargetRow is one target as stored in the index.
type TargetRow struct {
	ID          string `json:"id"`
	RunID       string `json:"run_id"`
	SourcePath  string `json:"source_path"`
	OutputDir   string `json:"output_dir"`
	SHA256      string `json:"sha256"`
	Status      string `json:"status"`
	RiskScore   int    `json:"risk_score"`
	RiskBand    string `json:"risk_band"`
	Warnings    int    `json:"warnings"`
	ProcessedAt string `json:"processed_at"`
}

// QueryOptions filters history queries.
type QueryOptions struct {
	// RiskBand filters targets by band ("low", "medium", "high").
	RiskBand string

	// Target substring-matches against the source path.
	Target string

	// Limit caps the number of rows. Zero uses 20.
	Limit int
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_dir, started_at, COALESCE(finished_at, ''), processed, errors, warnings
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.RootDir, &r.StartedAt, &r.FinishedAt,
			&r.Processed, &r.Errors, &r.Warnings); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Targets returns targets matching the filters, newest first.
func (s *Store) Targets(ctx context.Context, opts QueryOptions) ([]TargetRow, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, run_id, source_path, COALESCE(output_dir, ''), COALESCE(sha256, ''),
	                 status, COALESCE(risk_score, 0), COALESCE(risk_band, ''), warnings,
	                 COALESCE(processed_at, '')
	          FROM targets WHERE 1=1`
	var args []any
	if opts.RiskBand != "" {
		query += ` AND risk_band = ?`
		args = append(args, opts.RiskBand)
	}
	if opts.Target != "" {
		query += ` AND source_path LIKE ?`
		args = append(args, "%"+opts.Target+"%")
	}
	query += ` ORDER BY processed_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying targets: %w", err)
	}
	defer rows.Close()

	var out []TargetRow
	for rows.Next() {
		var t TargetRow
		if err := rows.Scan(&t.ID, &t.RunID, &t.SourcePath, &t.OutputDir, &t.SHA256,
			&t.Status, &t.RiskScore, &t.RiskBand, &t.Warnings, &t.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scanning target row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
