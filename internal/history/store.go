// Package history persists creations locally. The store is a single SQLite
// database file; the cap keeps it bounded by evicting the oldest creation
// once the limit is reached.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"trainforge/internal/domain"
)

// DefaultLimit is the history cap applied when configuration supplies none.
const DefaultLimit = 50

// storedTimeLayout keeps the fractional seconds fixed-width so the TEXT
// column sorts chronologically. RFC3339Nano drops trailing zeros, which
// makes "10:00:00Z" sort after a later "10:00:00.5Z".
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS creations (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	html             TEXT NOT NULL,
	original_image   TEXT NOT NULL DEFAULT '',
	output_type      TEXT NOT NULL,
	source_file_type TEXT NOT NULL,
	metadata         TEXT NOT NULL DEFAULT '{}',
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_creations_created_at ON creations (created_at);
`

// Store is a bounded, most-recent-first creation archive backed by SQLite.
// Methods are safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	db    *sql.DB
	limit int
}

// Open opens (creating if needed) the database at path and applies the
// schema. A limit below one falls back to DefaultLimit.
func Open(path string, limit int) (*Store, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// The modernc driver serializes writes per connection; one connection
	// avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db, limit: limit}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Limit returns the configured cap.
func (s *Store) Limit() int {
	return s.limit
}

// Append stores a creation, evicting the oldest entries if the cap would be
// exceeded.
func (s *Store) Append(ctx context.Context, c domain.Creation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := json.Marshal(c.Meta)
	if err != nil {
		return fmt.Errorf("encode creation metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append creation: %w", err)
	}
	defer tx.Rollback()

	// INSERT OR REPLACE lets a re-imported export overwrite its older copy
	// instead of failing on the primary key.
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO creations (id, name, html, original_image, output_type, source_file_type, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.HTML, c.OriginalImage, c.OutputType, string(c.SourceFileType),
		string(meta), c.Timestamp.UTC().Format(storedTimeLayout))
	if err != nil {
		return fmt.Errorf("append creation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM creations WHERE id IN (
			SELECT id FROM creations ORDER BY created_at DESC, id LIMIT -1 OFFSET ?
		 )`, s.limit)
	if err != nil {
		return fmt.Errorf("evict old creations: %w", err)
	}

	return tx.Commit()
}

// Update replaces the html and timestamp of an existing creation, as a
// refinement does. It fails with domain.ErrNotFound for unknown ids.
func (s *Store) Update(ctx context.Context, id, html string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE creations SET html = ?, created_at = ? WHERE id = ?`,
		html, ts.UTC().Format(storedTimeLayout), id)
	if err != nil {
		return fmt.Errorf("update creation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update creation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: creation %s", domain.ErrNotFound, id)
	}
	return nil
}

// Get loads one creation by id.
func (s *Store) Get(ctx context.Context, id string) (domain.Creation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, html, original_image, output_type, source_file_type, metadata, created_at
		 FROM creations WHERE id = ?`, id)
	c, err := scanCreation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Creation{}, fmt.Errorf("%w: creation %s", domain.ErrNotFound, id)
	}
	return c, err
}

// List returns all creations, most recent first.
func (s *Store) List(ctx context.Context) ([]domain.Creation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, html, original_image, output_type, source_file_type, metadata, created_at
		 FROM creations ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list creations: %w", err)
	}
	defer rows.Close()

	var out []domain.Creation
	for rows.Next() {
		c, err := scanCreation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of stored creations.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM creations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count creations: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreation(row rowScanner) (domain.Creation, error) {
	var (
		c        domain.Creation
		srcType  string
		metaJSON string
		created  string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.HTML, &c.OriginalImage, &c.OutputType, &srcType, &metaJSON, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Creation{}, err
		}
		return domain.Creation{}, fmt.Errorf("scan creation: %w", err)
	}
	c.SourceFileType = domain.FileType(srcType)
	if err := json.Unmarshal([]byte(metaJSON), &c.Meta); err != nil {
		return domain.Creation{}, fmt.Errorf("decode creation metadata: %w", err)
	}
	ts, err := time.Parse(storedTimeLayout, created)
	if err != nil {
		return domain.Creation{}, fmt.Errorf("parse creation timestamp: %w", err)
	}
	c.Timestamp = ts
	return c, nil
}
