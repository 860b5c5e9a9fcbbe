package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CaoDuyThanh/drtrace/internal/core"
)

// ErrMiss indicates the key was not present in L2.
var ErrMiss = errors.New("cache: key not found")

// L2 is a Redis-backed query-result cache shared across daemon
// instances/restarts. Enabling it is optional; when RedisConfig.Addr is
// empty the daemon runs with L1 only.
type L2 struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewL2 connects to Redis at addr and verifies reachability with Ping.
func NewL2(addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*L2, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("L2 query cache (redis) initialized", "addr", addr, "db", db, "ttl", ttl)
	return &L2{client: client, ttl: ttl, logger: logger}, nil
}

func (c *L2) Get(ctx context.Context, key string) ([]core.StoredRecord, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("l2 cache get failed: %w", err)
	}

	var records []core.StoredRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("l2 cache unmarshal failed: %w", err)
	}
	return records, nil
}

func (c *L2) Set(ctx context.Context, key string, records []core.StoredRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("l2 cache marshal failed: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("l2 cache set failed: %w", err)
	}
	return nil
}

// FlushAll clears every key, used when a clear/append invalidates the
// whole result set.
func (c *L2) FlushAll(ctx context.Context) error {
	return c.client.FlushDB(ctx).Err()
}

func (c *L2) Close() error {
	return c.client.Close()
}

func (c *L2) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
