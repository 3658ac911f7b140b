// Package history journals fetch outcomes to SQLite so earlier runs can be
// reviewed with `mtpget history`.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/mtpget/internal/models"
)

// OutcomeRecord is one journalled fetch outcome.
type OutcomeRecord struct {
	ID           int64
	RunID        string
	FileID       int64
	Name         string
	Size         *int64
	Destination  string
	Status       models.FetchStatus
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Store manages the SQLite fetch journal
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// In-memory databases are per connection
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// busy_timeout must come first so later statements wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}

		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordOutcome journals one fetch outcome under the given run id.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome models.FetchOutcome) error {
	query := `INSERT INTO fetch_outcomes
		(run_id, file_id, name, size, destination, status, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var size sql.NullInt64
	if outcome.Record.Size != nil {
		size = sql.NullInt64{Int64: *outcome.Record.Size, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		runID,
		outcome.Record.ID,
		outcome.Record.Name,
		size,
		outcome.Destination,
		string(outcome.Status),
		outcome.ErrorMessage(),
		outcome.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert fetch outcome: %w", err)
	}
	return nil
}

// RecentOutcomes returns up to limit outcomes, newest first.
// A limit <= 0 returns every outcome.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]*OutcomeRecord, error) {
	query := `SELECT ` + outcomeColumns + ` FROM fetch_outcomes ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryOutcomes(ctx, query, args...)
}

// RunOutcomes returns every outcome of one run in the order they were recorded.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]*OutcomeRecord, error) {
	query := `SELECT ` + outcomeColumns + ` FROM fetch_outcomes WHERE run_id = ? ORDER BY id ASC`
	return s.queryOutcomes(ctx, query, runID)
}

const outcomeColumns = `id, run_id, file_id, name, size, destination, status, error_message, duration_ms, created_at`

func (s *Store) queryOutcomes(ctx context.Context, query string, args ...interface{}) ([]*OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fetch outcomes: %w", err)
	}
	defer rows.Close()

	var records []*OutcomeRecord
	for rows.Next() {
		rec := &OutcomeRecord{}
		var size sql.NullInt64
		var status string
		var errorMessage sql.NullString
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.FileID, &rec.Name, &size,
			&rec.Destination, &status, &errorMessage, &durationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fetch outcome: %w", err)
		}
		if size.Valid {
			v := size.Int64
			rec.Size = &v
		}
		rec.Status = models.FetchStatus(status)
		rec.ErrorMessage = errorMessage.String
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fetch outcomes: %w", err)
	}

	return records, nil
}
