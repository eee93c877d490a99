package kv

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string     `json:"db_path"`
	DBSizeBytes int64      `json:"db_size_bytes"`
	Revisions   int        `json:"revisions"`
	Keys        []KeyStats `json:"keys"`
}

// KeyStats holds per-key counts.
type KeyStats struct {
	Key       string `json:"key"`
	Revisions int    `json:"revisions"`
	Latest    int    `json:"latest"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_revisions`).Scan(&st.Revisions)

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, COUNT(*) AS cnt, MAX(revision) AS latest
		FROM kv_revisions GROUP BY key ORDER BY key`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var k KeyStats
		if err := rows.Scan(&k.Key, &k.Revisions, &k.Latest); err != nil {
			return st, err
		}
		st.Keys = append(st.Keys, k)
	}

	return st, rows.Err()
}
