package db

import (
	"context"
	"time"
)

// Store is the key-value database facade. Consumers depend on the narrow
// sub-interfaces they need.
type Store interface {
	Pinger
	KVStore
	HashStore
	SortedSetStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides string key operations and counters.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Incr and IncrBy return the value after the increment.
	Incr(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// HashStore provides hash operations.
type HashStore interface {
	// HSetIndexed writes the hash at key and adds member with score to every
	// index in one transaction.
	HSetIndexed(ctx context.Context, key string, fields map[string]string,
		score float64, member string, indexes ...string) error
	// HGetAll returns an empty map for a missing key.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// SortedSetStore provides ordered index operations.
type SortedSetStore interface {
	// ZRange returns members by rank, lowest score first unless rev.
	// stop -1 means the last member.
	ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]string, error)
}
