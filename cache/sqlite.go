package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ZaguanLabs/gotara"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS translations (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// SQLiteCache is a translation cache stored in a SQLite database. Expired
// rows are ignored on read and removed by Purge.
type SQLiteCache struct {
	db      *sql.DB
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewSQLiteCache opens (or creates) the database at path. Use ":memory:" for
// a throwaway database. If ttlSeconds is 0 or negative, entries never expire.
func NewSQLiteCache(path string, ttlSeconds int) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &gotara.CacheError{Message: "failed to open sqlite database", Cause: err}
	}
	// One connection: SQLite serializes writers anyway, and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &gotara.CacheError{Message: "failed to create schema", Cause: err}
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &SQLiteCache{
		db:      db,
		ttl:     ttl,
		timeout: 2 * time.Second,
		now:     time.Now,
	}, nil
}

// Get retrieves a value from the cache. Errors are treated as misses.
func (c *SQLiteCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var (
		value   string
		created int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT value, created_at FROM translations WHERE key = ?`, key,
	).Scan(&value, &created)
	if err != nil {
		return "", false
	}

	if c.expired(created, c.now()) {
		return "", false
	}
	return value, true
}

// Set stores a value in the cache, replacing any previous value and
// restarting its TTL.
func (c *SQLiteCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO translations (key, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		key, value, c.now().UnixNano(),
	)
	if err != nil {
		return &gotara.CacheError{
			Message:   "sqlite upsert failed",
			Cause:     err,
			Retryable: errors.Is(err, context.DeadlineExceeded),
		}
	}
	return nil
}

// Entries returns all non-expired entries as key-value pairs.
func (c *SQLiteCache) Entries() (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, `SELECT key, value, created_at FROM translations`)
	if err != nil {
		return nil, &gotara.CacheError{Message: "sqlite query failed", Cause: err}
	}
	defer rows.Close()

	now := c.now()
	result := make(map[string]string)
	for rows.Next() {
		var (
			key, value string
			created    int64
		)
		if err := rows.Scan(&key, &value, &created); err != nil {
			return nil, &gotara.CacheError{Message: "sqlite scan failed", Cause: err}
		}
		if c.expired(created, now) {
			continue
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, &gotara.CacheError{Message: "sqlite query failed", Cause: err}
	}

	return result, nil
}

// Purge deletes expired rows and reports how many were removed.
func (c *SQLiteCache) Purge() (int64, error) {
	if c.ttl == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cutoff := c.now().Add(-c.ttl).UnixNano()
	res, err := c.db.ExecContext(ctx, `DELETE FROM translations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, &gotara.CacheError{Message: "sqlite purge failed", Cause: err}
	}
	return res.RowsAffected()
}

// Len returns the number of stored rows, including expired ones.
func (c *SQLiteCache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM translations`).Scan(&n); err != nil {
		return 0, &gotara.CacheError{Message: "sqlite count failed", Cause: err}
	}
	return n, nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) expired(createdNanos int64, now time.Time) bool {
	return c.ttl > 0 && now.Sub(time.Unix(0, createdNanos)) > c.ttl
}

// Verify SQLiteCache implements ExportableCache
var _ ExportableCache = (*SQLiteCache)(nil)
