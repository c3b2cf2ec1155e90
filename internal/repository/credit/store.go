// Package credit keeps per-user daily upload counters in Redis.
package credit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/docsim/internal/db"
	"github.com/kailas-cloud/docsim/internal/domain"
)

// DefaultTTL keeps a day's counter past midnight in every timezone.
const DefaultTTL = 48 * time.Hour

// store is the consumer interface for the ledger (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Ledger counts credits spent per user per day. A new day starts on a new
// key, so the allowance resets without a sweeper.
type Ledger struct {
	store store
	ttl   time.Duration
}

// New creates a ledger. ttl <= 0 selects DefaultTTL.
func New(s store, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{store: s, ttl: ttl}
}

// Used returns the credits userID spent on day (YYYY-MM-DD).
func (l *Ledger) Used(ctx context.Context, userID, day string) (int64, error) {
	key := counterKey(userID, day)
	data, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("credits GET %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("credits GET %s parse: %w", key, err)
	}
	return n, nil
}

// Add atomically adds n (negative to refund) and returns the new total.
func (l *Ledger) Add(ctx context.Context, userID, day string, n int64) (int64, error) {
	key := counterKey(userID, day)
	total, err := l.store.IncrBy(ctx, key, n)
	if err != nil {
		return 0, fmt.Errorf("credits INCRBY %s: %w", key, err)
	}
	// NX: the first write of the day fixes the expiry.
	if err := l.store.Expire(ctx, key, l.ttl, true); err != nil {
		return 0, fmt.Errorf("credits EXPIRE %s: %w", key, err)
	}
	return total, nil
}

func counterKey(userID, day string) string {
	return domain.KeyPrefix + "credits:" + userID + ":" + day
}
