// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstore registers completed run reports in a SQLite database
// so duplicate triples can be accounted for across independent runs. The
// pipeline itself never touches this store; it is a post-processing
// surface for the merge/dedup stage.
package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/knowledge-engine/internal/pipeline"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "knowledge.db"
)

// Store manages the run registry database.
type Store struct {
	db *sql.DB
}

// New opens or creates the registry at storeDir/index/knowledge.db,
// creating the schema if it does not exist.
func New(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.StoreDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
			report_file TEXT NOT NULL,
			file_mod_time TEXT NOT NULL,
			started_at TEXT,
			finished_at TEXT,
			generations INTEGER,
			triple_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS triples (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			category TEXT,
			origin_id TEXT,
			confidence REAL,
			survival_fitness REAL,
			generation INTEGER,
			web_validated INTEGER,
			PRIMARY KEY (run_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_id ON triples(id)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a registry ingestion pass.
type IngestSummary struct {
	Ingested int
	Updated  int
	Skipped  int
	Failed   int
}

// Total returns the number of report files considered.
func (s IngestSummary) Total() int {
	return s.Ingested + s.Updated + s.Skipped + s.Failed
}

// Ingest reads run report YAML files from reportsDir and registers them.
// Unchanged files (by modification time) are skipped; changed reports are
// re-registered. A failing report never aborts the pass.
func (s *Store) Ingest(ctx context.Context, reportsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading reports directory %s: %w", reportsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := filepath.Join(reportsDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		report, err := pipeline.ReadReport(path)
		if err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		if report.Metadata.RunID == "" {
			fmt.Fprintf(w, "failed   %s: report has no run ID\n", entry.Name())
			summary.Failed++
			continue
		}

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM runs WHERE id = ?`, report.Metadata.RunID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped  %s\n", report.Metadata.RunID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		if err := s.ingestRun(ctx, report, entry.Name(), modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated  %s (%d triples)\n", report.Metadata.RunID, len(report.Triples))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "ingested %s (%d triples)\n", report.Metadata.RunID, len(report.Triples))
			summary.Ingested++
		}
	}

	fmt.Fprintf(w, "\ningested: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Ingested, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestRun(ctx context.Context, report *types.Report, file, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE run_id = ?`, report.Metadata.RunID); err != nil {
			return fmt.Errorf("deleting old triples: %w", err)
		}
	}

	md := report.Metadata
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, report_file, file_mod_time, started_at, finished_at, generations, triple_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			report_file=excluded.report_file, file_mod_time=excluded.file_mod_time,
			started_at=excluded.started_at, finished_at=excluded.finished_at,
			generations=excluded.generations, triple_count=excluded.triple_count`,
		md.RunID, file, modTime,
		md.StartedAt.Format(time.RFC3339Nano), md.FinishedAt.Format(time.RFC3339Nano),
		md.Generations, len(report.Triples),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO triples
		 (run_id, id, subject, predicate, object, category, origin_id, confidence, survival_fitness, generation, web_validated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range report.Triples {
		_, err := stmt.ExecContext(ctx,
			md.RunID, t.ID, t.Subject, t.Predicate, t.Object,
			t.Category, t.OriginID, t.Confidence, t.SurvivalFitness,
			t.Generation, t.WebValidated,
		)
		if err != nil {
			return fmt.Errorf("inserting triple %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// DuplicateEntry reports one triple ID present in more than one run.
type DuplicateEntry struct {
	ID        string
	Subject   string
	Predicate string
	Object    string
	RunCount  int
}

// Duplicates returns the triple IDs present in two or more registered
// runs, ordered by descending run count and then ID.
func (s *Store) Duplicates(ctx context.Context) ([]DuplicateEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, predicate, object, COUNT(DISTINCT run_id) AS runs
		 FROM triples
		 GROUP BY id
		 HAVING COUNT(DISTINCT run_id) > 1
		 ORDER BY runs DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying duplicates: %w", err)
	}
	defer rows.Close()

	var out []DuplicateEntry
	for rows.Next() {
		var e DuplicateEntry
		if err := rows.Scan(&e.ID, &e.Subject, &e.Predicate, &e.Object, &e.RunCount); err != nil {
			return nil, fmt.Errorf("scanning duplicate row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RunInfo summarizes one registered run.
type RunInfo struct {
	ID          string
	ReportFile  string
	Generations int
	TripleCount int
}

// Runs lists registered runs ordered by run ID.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_file, generations, triple_count FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.ReportFile, &r.Generations, &r.TripleCount); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadTriples returns the triples registered for one run, ordered by ID.
func (s *Store) LoadTriples(ctx context.Context, runID string) ([]types.Triple, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, predicate, object, category, origin_id, confidence, survival_fitness, generation, web_validated
		 FROM triples WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []types.Triple
	for rows.Next() {
		var t types.Triple
		if err := rows.Scan(&t.ID, &t.Subject, &t.Predicate, &t.Object, &t.Category,
			&t.OriginID, &t.Confidence, &t.SurvivalFitness, &t.Generation, &t.WebValidated); err != nil {
			return nil, fmt.Errorf("scanning triple row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
