package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// DefaultKeepRevisions is how many past values per key survive a Flush.
const DefaultKeepRevisions = 5

// Revision is one stored value of a key.
type Revision struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Revision  int       `json:"revision"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// SQLiteStore implements Store using SQLite. Every SetString appends a new
// revision inside a transaction, so a failed write leaves the previous value
// readable.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	keep    int
	lock    *flock.Flock
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path and
// takes an exclusive lock on <path>.lock. keep <= 0 uses DefaultKeepRevisions.
func NewSQLiteStore(dbPath string, keep int) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	if keep <= 0 {
		keep = DefaultKeepRevisions
	}

	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock db: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", dbPath, ErrLocked)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		keep:    keep,
		lock:    lock,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_revisions (
		id          TEXT PRIMARY KEY,
		key         TEXT NOT NULL,
		revision    INTEGER NOT NULL,
		value       TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		UNIQUE (key, revision)
	);
	CREATE INDEX IF NOT EXISTS idx_kv_key_rev ON kv_revisions(key, revision DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SetString(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var prev sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(revision) FROM kv_revisions WHERE key = ?`, key).Scan(&prev); err != nil {
		return fmt.Errorf("read revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv_revisions (id, key, revision, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.newID(), key, prev.Int64+1, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetString(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_revisions WHERE key = ? ORDER BY revision DESC LIMIT 1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Flush drops revisions beyond the keep window and checkpoints the WAL.
func (s *SQLiteStore) Flush(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM kv_revisions
		WHERE revision <= (
			SELECT MAX(r.revision) FROM kv_revisions r WHERE r.key = kv_revisions.key
		) - ?`, s.keep)
	if err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Revisions lists the stored revisions of key, newest first.
func (s *SQLiteStore) Revisions(ctx context.Context, key string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, revision, LENGTH(value), created_at FROM kv_revisions
		 WHERE key = ? ORDER BY revision DESC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Key, &r.Revision, &r.Size, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}
