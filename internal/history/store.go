package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status values stored for each build.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// LocaleCount is the per-locale outcome of a build.
type LocaleCount struct {
	Locale      string `json:"locale"`
	FaceCount   int    `json:"face_count"`
	BinaryCount int    `json:"binary_count"`
}

// Record is one finished build.
type Record struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Status       string        `json:"status"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Entries      int           `json:"entries"`
	Locales      []LocaleCount `json:"locales,omitempty"`
}

// Duration returns the wall time the build took.
func (r Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists build records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordBuild stores a finished build and its locale counts in one transaction.
func (s *Store) RecordBuild(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record build: id is required")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO builds (id, started_at, finished_at, status, error_kind, error_message, entries)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID,
			formatTime(rec.StartedAt),
			formatTime(rec.FinishedAt),
			rec.Status,
			rec.ErrorKind,
			rec.ErrorMessage,
			rec.Entries,
		); err != nil {
			return fmt.Errorf("insert build: %w", err)
		}
		for i, loc := range rec.Locales {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO build_locales (build_id, position, locale, face_count, binary_count)
				 VALUES (?, ?, ?, ?, ?)`,
				rec.ID, i, loc.Locale, loc.FaceCount, loc.BinaryCount,
			); err != nil {
				return fmt.Errorf("insert build locale: %w", err)
			}
		}
		return tx.Commit()
	})
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, error_kind, error_message, entries
		 FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec               Record
			started, finished string
		)
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.Status, &rec.ErrorKind, &rec.ErrorMessage, &rec.Entries); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		rec.StartedAt = parseTime(started)
		rec.FinishedAt = parseTime(finished)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}

	for i := range records {
		locales, err := s.locales(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Locales = locales
	}
	return records, nil
}

func (s *Store) locales(ctx context.Context, buildID string) ([]LocaleCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT locale, face_count, binary_count FROM build_locales
		 WHERE build_id = ? ORDER BY position`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query build locales: %w", err)
	}
	defer rows.Close()

	var out []LocaleCount
	for rows.Next() {
		var loc LocaleCount
		if err := rows.Scan(&loc.Locale, &loc.FaceCount, &loc.BinaryCount); err != nil {
			return nil, fmt.Errorf("scan build locale: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// timeLayout has fixed-width fractions so stored values sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
