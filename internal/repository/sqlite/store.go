// Package sqlite implements the domain repositories on SQLite through
// mattn/go-sqlite3. It backs local runs and the integration tests.
//
// Amounts are stored as TEXT, scanned into decimal.Decimal and summed in Go. Timestamps
// are stored as fixed-width UTC TEXT so range predicates compare lexically.
// Writes that must read-then-insert (budget consumption) run inside an
// immediate transaction while holding the store mutex.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// timeLayout keeps every timestamp the same width
const timeLayout = "2006-01-02T15:04:05.000000Z"

// sq builds statements with ? placeholders
var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Store owns the SQLite handle shared by the repositories
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens the database at path (":memory:" for an in-memory database)
// and applies the embedded migrations.
func NewStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// A single connection keeps an in-memory database alive and makes
	// SQLite's single-writer rule explicit.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("SQLite store opened")
	return &Store{db: db}, nil
}

// buildDSN enables foreign keys, WAL and immediate write transactions
func buildDSN(path string) string {
	return path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
}

// DB exposes the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, qb squirrel.InsertBuilder) (int32, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building insert query: %w", err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}
	return int32(id), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestamp scans a TEXT column written by formatTime. Any other shape fails
// the scan so a corrupt row never reads as the zero time.
type timestamp struct {
	at time.Time
}

func (t *timestamp) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("sqlite: cannot scan %T into timestamp", src)
	}
	parsed, err := time.Parse(timeLayout, text)
	if err != nil {
		return fmt.Errorf("sqlite: corrupt timestamp %q: %w", text, err)
	}
	t.at = parsed
	return nil
}

// nullTimestamp is a timestamp column that may be NULL
type nullTimestamp struct {
	at    time.Time
	valid bool
}

func (n *nullTimestamp) Scan(src any) error {
	if src == nil {
		*n = nullTimestamp{}
		return nil
	}
	var t timestamp
	if err := t.Scan(src); err != nil {
		return err
	}
	*n = nullTimestamp{at: t.at, valid: true}
	return nil
}

func (n nullTimestamp) ptr() *time.Time {
	if !n.valid {
		return nil
	}
	at := n.at
	return &at
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// nowUTC is the creation timestamp for new rows
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
