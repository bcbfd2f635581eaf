// Package history records completions in a local SQLite database.
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

	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS completions (
		id          TEXT PRIMARY KEY,
		created_at  INTEGER NOT NULL,
		engine      TEXT NOT NULL,
		mode        TEXT NOT NULL,
		language    TEXT NOT NULL DEFAULT '',
		prompt      TEXT NOT NULL,
		completion  TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS completions_created_at ON completions (created_at)`,
}

// Entry is one recorded completion
type Entry struct {
	ID         string
	CreatedAt  time.Time
	Engine     string
	Mode       string
	Language   string
	Prompt     string
	Completion string
	Duration   time.Duration
}

// Store is a completion history backed by SQLite
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records e. A missing ID or timestamp is filled in; the stored entry
// is returned.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (id, created_at, engine, mode, language, prompt, completion, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UnixNano(), e.Engine, e.Mode, e.Language, e.Prompt, e.Completion, e.Duration.Milliseconds())
	if err != nil {
		return Entry{}, fmt.Errorf("insert completion: %w", err)
	}
	return e, nil
}

const selectColumns = `SELECT id, created_at, engine, mode, language, prompt, completion, duration_ms FROM completions`

// List returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry with the given id or id prefix. An exact id always
// wins over a prefix match.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	if id == "" {
		return Entry{}, fmt.Errorf("no completion with id %q", id)
	}

	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}

	// Two rows are enough to tell a unique prefix from an ambiguous one.
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE id LIKE ? || '%' ESCAPE '\' ORDER BY created_at DESC LIMIT 2`,
		likeEscaper.Replace(id))
	if err != nil {
		return Entry{}, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var found []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Entry{}, err
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("query completions: %w", err)
	}

	switch len(found) {
	case 0:
		return Entry{}, fmt.Errorf("no completion with id %q", id)
	case 1:
		return found[0], nil
	default:
		return Entry{}, fmt.Errorf("id prefix %q is ambiguous", id)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e          Entry
		createdAt  int64
		durationMs int64
	)
	if err := row.Scan(&e.ID, &createdAt, &e.Engine, &e.Mode, &e.Language, &e.Prompt, &e.Completion, &durationMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan completion: %w", err)
	}
	e.CreatedAt = time.Unix(0, createdAt)
	e.Duration = time.Duration(durationMs) * time.Millisecond
	return e, nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM completions`); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the database file path in priority order:
// 1. $XDG_DATA_HOME/codegen/history.db
// 2. ~/.local/share/codegen/history.db
func DefaultPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "codegen", "history.db"), nil
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
