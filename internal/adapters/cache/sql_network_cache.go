package cache

import (
	"ambulance-route-service/internal/adapters/roadnet"
	"ambulance-route-service/internal/platform/db"
	"ambulance-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var _ roadnet.PayloadCache = (*SQLNetworkCache)(nil)

// SQLNetworkCache is a SQL-backed cache for raw network payloads, keyed by
// query hash. It works on both sqlite and postgres (see db.Rebind) and expects
// the network_cache table created by repositories.InitSchema.
type SQLNetworkCache struct {
	DB     *sql.DB
	Driver string
	TTL    time.Duration

	now func() time.Time
}

func NewSQLNetworkCache(conn *sql.DB, driver string, ttl time.Duration) *SQLNetworkCache {
	return &SQLNetworkCache{DB: conn, Driver: driver, TTL: ttl, now: time.Now}
}

// Get returns the payload stored under key. Entries older than TTL are misses.
func (s *SQLNetworkCache) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "network.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("network cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get network cache: key must not be empty")
	}

	q := db.Rebind(s.Driver, `
	SELECT payload, fetched_at
	FROM network_cache
	WHERE cache_key = ?;
	`)

	var payload string
	var fetchedAt int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get network cache: query network_cache table: %w", err)
	}

	if s.TTL > 0 && s.now().Sub(time.Unix(fetchedAt, 0)) > s.TTL {
		return nil, false, nil
	}
	return []byte(payload), true, nil
}

// Put stores data under key, replacing any previous entry.
func (s *SQLNetworkCache) Put(ctx context.Context, key string, data []byte) error {
	if s.DB == nil {
		return errors.New("network cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert network cache: key must not be empty")
	}

	q := db.Rebind(s.Driver, `
	INSERT INTO network_cache (cache_key, payload, fetched_at)
	VALUES (?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE
	SET payload = excluded.payload,
		fetched_at = excluded.fetched_at;
	`)

	if _, err := s.DB.ExecContext(ctx, q, key, string(data), s.now().Unix()); err != nil {
		return fmt.Errorf("insert network cache key=%q: %w", key, err)
	}
	return nil
}
