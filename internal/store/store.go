// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists ingested records and daily reports in SQLite.
// It is the only owner of durable pipeline state: the ingestor appends
// records, the classifier writes tags back, and the orchestrator replaces
// reports. Every write is scoped to one logical step.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/brief-engine/pkg/types"
)

const dbFile = "brief.db"

// Store manages the briefing SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.DataDir/brief.db and creates
// the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
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
		`CREATE TABLE IF NOT EXISTS records (
			identity TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			excerpt TEXT,
			url TEXT NOT NULL,
			author TEXT,
			authored_at TEXT NOT NULL,
			ingested_at TEXT NOT NULL,
			tags TEXT,
			status INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_ingested_at ON records(ingested_at)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source ON records(source)`,
		`CREATE TABLE IF NOT EXISTS reports (
			report_date TEXT PRIMARY KEY,
			summary_markdown TEXT NOT NULL,
			macro_score INTEGER,
			tech_score INTEGER,
			created_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// InsertRecord stores a record unless one with the same identity already
// exists. It reports whether a row was actually inserted, so callers can
// count new records without a prior existence check.
func (s *Store) InsertRecord(ctx context.Context, rec types.Record) (bool, error) {
	tagsJSON, err := json.Marshal(rec.Tags)
	if err != nil {
		return false, fmt.Errorf("marshaling tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO records
			(identity, source, title, excerpt, url, author, authored_at, ingested_at, tags, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Identity, rec.Source, rec.Title, rec.Excerpt, rec.URL, rec.Author,
		rec.AuthoredAt.UTC().Format(time.RFC3339Nano),
		rec.IngestedAt.UTC().Format(time.RFC3339Nano),
		string(tagsJSON), int(rec.Status),
	)
	if err != nil {
		return false, fmt.Errorf("inserting record %s: %w", rec.Identity, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert result: %w", err)
	}
	return n > 0, nil
}

// HasRecord reports whether a record with the given identity exists.
func (s *Store) HasRecord(ctx context.Context, identity string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM records WHERE identity = ?`, identity).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying record %s: %w", identity, err)
	}
	return true, nil
}

// Window returns records whose ingestion time falls in [from, to),
// newest first, capped at limit.
func (s *Store) Window(ctx context.Context, from, to time.Time, limit int) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, source, title, excerpt, url, author, authored_at, ingested_at, tags, status
		 FROM records
		 WHERE ingested_at >= ? AND ingested_at < ?
		 ORDER BY ingested_at DESC
		 LIMIT ?`,
		from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, fmt.Errorf("querying record window: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// RecentRecords returns the most recently ingested records, newest first,
// skipping offset rows for paging.
func (s *Store) RecentRecords(ctx context.Context, limit, offset int) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, source, title, excerpt, url, author, authored_at, ingested_at, tags, status
		 FROM records
		 ORDER BY ingested_at DESC
		 LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying recent records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]types.Record, error) {
	var records []types.Record
	for rows.Next() {
		var (
			rec        types.Record
			excerpt    sql.NullString
			author     sql.NullString
			authoredAt string
			ingestedAt string
			tagsJSON   sql.NullString
			status     int
		)
		if err := rows.Scan(&rec.Identity, &rec.Source, &rec.Title, &excerpt, &rec.URL,
			&author, &authoredAt, &ingestedAt, &tagsJSON, &status); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Excerpt = excerpt.String
		rec.Author = author.String
		rec.Status = types.ProcessStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, authoredAt); err == nil {
			rec.AuthoredAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, ingestedAt); err == nil {
			rec.IngestedAt = t
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &rec.Tags); err != nil {
				return nil, fmt.Errorf("parsing tags for %s: %w", rec.Identity, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateTags writes classification results back for all touched records in
// a single transaction and marks them processed. The tag lists must
// already be merged and truncated by the classifier.
func (s *Store) UpdateTags(ctx context.Context, tags map[string][]string) error {
	if len(tags) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tag write-back: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE records SET tags = ?, status = ? WHERE identity = ?`)
	if err != nil {
		return fmt.Errorf("preparing tag update: %w", err)
	}
	defer stmt.Close()

	for identity, list := range tags {
		tagsJSON, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("marshaling tags for %s: %w", identity, err)
		}
		if _, err := stmt.ExecContext(ctx, string(tagsJSON), int(types.StatusProcessed), identity); err != nil {
			return fmt.Errorf("updating tags for %s: %w", identity, err)
		}
	}

	return tx.Commit()
}

// GetReport returns the report for the given date, or nil when none exists.
func (s *Store) GetReport(ctx context.Context, date time.Time) (*types.Report, error) {
	var (
		rep        types.Report
		macroScore sql.NullInt64
		techScore  sql.NullInt64
		createdAt  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT summary_markdown, macro_score, tech_score, created_at
		 FROM reports WHERE report_date = ?`, types.DateKey(date)).
		Scan(&rep.Markdown, &macroScore, &techScore, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying report for %s: %w", types.DateKey(date), err)
	}

	rep.Date = date
	if macroScore.Valid {
		v := int(macroScore.Int64)
		rep.MacroScore = &v
	}
	if techScore.Valid {
		v := int(techScore.Int64)
		rep.TechScore = &v
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rep.CreatedAt = t
	}
	return &rep, nil
}

// ListReports returns the most recent reports, newest date first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]types.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_date, summary_markdown, macro_score, tech_score, created_at
		 FROM reports
		 ORDER BY report_date DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []types.Report
	for rows.Next() {
		var (
			rep        types.Report
			dateKey    string
			macroScore sql.NullInt64
			techScore  sql.NullInt64
			createdAt  string
		)
		if err := rows.Scan(&dateKey, &rep.Markdown, &macroScore, &techScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if t, err := time.Parse("2006-01-02", dateKey); err == nil {
			rep.Date = t
		}
		if macroScore.Valid {
			v := int(macroScore.Int64)
			rep.MacroScore = &v
		}
		if techScore.Valid {
			v := int(techScore.Int64)
			rep.TechScore = &v
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rep.CreatedAt = t
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// DeleteReport removes the report for the given date if one exists.
func (s *Store) DeleteReport(ctx context.Context, date time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM reports WHERE report_date = ?`, types.DateKey(date)); err != nil {
		return fmt.Errorf("deleting report for %s: %w", types.DateKey(date), err)
	}
	return nil
}

// SaveReport stores a freshly generated report. The orchestrator deletes
// any previous report for the date first, so a conflict here is a bug.
func (s *Store) SaveReport(ctx context.Context, rep types.Report) error {
	var macroScore, techScore any
	if rep.MacroScore != nil {
		macroScore = *rep.MacroScore
	}
	if rep.TechScore != nil {
		techScore = *rep.TechScore
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (report_date, summary_markdown, macro_score, tech_score, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		types.DateKey(rep.Date), rep.Markdown, macroScore, techScore,
		rep.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving report for %s: %w", types.DateKey(rep.Date), err)
	}
	return nil
}
