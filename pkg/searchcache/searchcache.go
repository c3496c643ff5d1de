// Package searchcache keeps raw search results in an sqlite file, so a
// second run on the same input does not wait for the same remote
// searches again.
package searchcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/andrew-torda/homologs/pkg/blast"
	"github.com/andrew-torda/homologs/pkg/metrics"
)

// Cache is an sqlite backed store of search results keyed by a hash of
// the search settings and query.
type Cache struct {
	mu      sync.Mutex
	db      *sql.DB
	Metrics *metrics.Manager // may be nil
}

// Open opens or creates the cache file.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening search cache: %w", err)
	}
	c := &Cache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing search cache %s: %w", path, err)
	}
	return c, nil
}

func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database.
func (c *Cache) Close() error { return c.db.Close() }

// Key hashes the settings prefix and the query. The prefix should hold
// whatever changes the answer, such as the database and E-value.
func Key(prefix string, query []byte) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write([]byte{0})
	h.Write(query)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a stored result. ok is false if there is none.
func (c *Cache) Get(ctx context.Context, key string) (body []byte, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row := c.db.QueryRowContext(ctx, `SELECT body FROM results WHERE key = ?`, key)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading search cache: %w", err)
	}
	return body, true, nil
}

// Put stores a result, replacing any older one.
func (c *Cache) Put(ctx context.Context, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO results (key, body) VALUES (?, ?)`, key, body)
	if err != nil {
		return fmt.Errorf("writing search cache: %w", err)
	}
	return nil
}

// Len is the number of stored results.
func (c *Cache) Len(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting search cache: %w", err)
	}
	return n, nil
}

// Wrap gives a runner which answers from the cache when it can and
// otherwise calls r and stores what it returns. Failed searches are not
// stored. A cache that cannot be read or written only costs time, so
// those errors are not passed on.
func (c *Cache) Wrap(r blast.Runner, prefix string) blast.Runner {
	return blast.RunnerFunc(func(ctx context.Context, query []byte) ([]byte, error) {
		key := Key(prefix, query)
		if body, ok, err := c.Get(ctx, key); err == nil && ok {
			c.Metrics.RecordCache(true)
			return body, nil
		}
		c.Metrics.RecordCache(false)
		body, err := r.Run(ctx, query)
		if err != nil {
			return nil, err
		}
		_ = c.Put(ctx, key, body)
		return body, nil
	})
}
