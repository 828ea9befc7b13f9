package fetch

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/posting"
)

const seenKeysSet = "job-hunter:seen-postings"

// Deduper drops postings that were already seen, by dedup key. Within a run
// it always uses an in-memory set; with a Redis client it also remembers
// keys across runs.
type Deduper struct {
	rdb    *redis.Client
	seen   map[string]bool
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		seen:   make(map[string]bool),
		logger: logger,
	}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Filter removes duplicates in place and returns the number dropped.
func (d *Deduper) Filter(ctx context.Context, p *posting.Postings) (int, error) {
	kept := p.Items[:0]
	dropped := 0

	for _, item := range p.Items {
		key := item.Key()

		if d.seen[key] {
			dropped++
			continue
		}

		if d.rdb != nil {
			known, err := d.rdb.SIsMember(ctx, seenKeysSet, key).Result()
			if err != nil {
				return dropped, fmt.Errorf("redis SISMEMBER: %w", err)
			}
			if known {
				d.seen[key] = true
				dropped++
				continue
			}
		}

		d.seen[key] = true
		kept = append(kept, item)
	}
	p.Items = kept

	return dropped, nil
}

// Remember persists the current postings' keys so later runs skip them.
// No-op without Redis.
func (d *Deduper) Remember(ctx context.Context, p *posting.Postings) error {
	if d.rdb == nil || p.Len() == 0 {
		return nil
	}

	keys := make([]any, 0, p.Len())
	for _, item := range p.Items {
		keys = append(keys, item.Key())
	}

	if err := d.rdb.SAdd(ctx, seenKeysSet, keys...).Err(); err != nil {
		return fmt.Errorf("redis SADD: %w", err)
	}

	d.logger.Debug("remembered postings in dedup cache", zap.Int("count", len(keys)))
	return nil
}
