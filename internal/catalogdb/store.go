package catalogdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"crclear/internal/catalog"
	"crclear/internal/faults"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Older databases must
// be rebuilt with "crclear catalog index".
const schemaVersion = 2

// ErrSchemaMismatch indicates the database was built by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// DefaultBatchSize is how many entries one transaction inserts.
	DefaultBatchSize = 5000
)

// Store is a SQLite-backed catalog.Source.
type Store struct {
	db   *sql.DB
	path string
}

var _ catalog.Source = (*Store)(nil)

// Open creates or opens the database at path and verifies its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, faults.Wrap(faults.ErrIO, "catalogdb", "create directory", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "catalogdb", "open", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, faults.Wrap(faults.ErrIO, "catalogdb", "apply pragma", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file.
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return faults.Wrap(faults.ErrIO, "catalogdb", "check schema", "", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return faults.Wrap(faults.ErrIO, "catalogdb", "read schema version", "", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and rerun 'crclear catalog index')",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrIO, "catalogdb", "begin schema", "", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return faults.Wrap(faults.ErrIO, "catalogdb", "create schema", "", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return faults.Wrap(faults.ErrIO, "catalogdb", "record schema version", "", err)
	}
	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrIO, "catalogdb", "commit schema", "", err)
	}
	return nil
}

// Insert stores entries in one transaction.
func (s *Store) Insert(ctx context.Context, entries []catalog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO catalog_entries (
            title_key, identifier, title, author, year, url, source, rights_code, license_url,
            normalized_title, normalized_author
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx,
				e.Key,
				e.Identifier,
				e.Title,
				nullableString(e.Author),
				nullableInt(e.Year),
				nullableString(e.URL),
				nullableString(e.Source),
				nullableString(e.RightsCode),
				nullableString(e.LicenseURL),
				e.NormalizedTitle,
				nullableString(e.NormalizedAuthor),
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// Candidates implements catalog.Source.
func (s *Store) Candidates(ctx context.Context, key string) ([]catalog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
            title_key, identifier, title, author, year, url, source, rights_code, license_url,
            normalized_title, normalized_author
        FROM catalog_entries WHERE title_key = ? ORDER BY id`, key)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []catalog.Entry
	for rows.Next() {
		var (
			e                           catalog.Entry
			author, url, source, rights sql.NullString
			license, normalizedAuthor   sql.NullString
			year                        sql.NullInt64
		)
		if err := rows.Scan(&e.Key, &e.Identifier, &e.Title, &author, &year, &url, &source, &rights, &license,
			&e.NormalizedTitle, &normalizedAuthor); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		e.Author = author.String
		e.Year = int(year.Int64)
		e.URL = url.String
		e.Source = source.String
		e.RightsCode = rights.String
		e.LicenseURL = license.String
		e.NormalizedAuthor = normalizedAuthor.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

// Stats summarizes the stored entries.
type Stats struct {
	Entries int
	Keys    int
}

// Stats counts entries and distinct title keys.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COUNT(DISTINCT title_key) FROM catalog_entries",
	).Scan(&st.Entries, &st.Keys)
	if err != nil {
		return Stats{}, fmt.Errorf("count entries: %w", err)
	}
	return st, nil
}

// Clear removes every stored entry.
func (s *Store) Clear(ctx context.Context) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM catalog_entries")
		return err
	})
}

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

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}
