package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/artxeweb/comparaelprecio-api/internal/platform/cache"
	_ "modernc.org/sqlite"
)

// SQLiteCache persists worker responses in a local sqlite file so cached
// data survives restarts.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS worker_cache (
			op TEXT NOT NULL,
			cache_key TEXT NOT NULL,
			payload BLOB NOT NULL,
			fetched_at DATETIME NOT NULL,
			PRIMARY KEY (op, cache_key)
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteCache{db: db}, nil
}

func (s *SQLiteCache) Get(ctx context.Context, op, key string) ([]byte, time.Time, error) {
	var payload []byte
	var fetchedAt time.Time

	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM worker_cache WHERE op = ? AND cache_key = ?`,
		op, key,
	).Scan(&payload, &fetchedAt)
	if err != nil {
		// Missing rows and read failures both degrade to a refetch.
		return nil, time.Time{}, cache.ErrMiss
	}
	return payload, fetchedAt, nil
}

func (s *SQLiteCache) Set(ctx context.Context, op, key string, payload []byte, fetchedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO worker_cache (op, cache_key, payload, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(op, cache_key)
		 DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		op, key, payload, fetchedAt,
	)
	return err
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
