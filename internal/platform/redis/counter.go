// Package redis keeps per-learner daily usage counters in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// counterTTL outlives the day a counter belongs to, so late readers in other
// time zones still see it.
const counterTTL = 48 * time.Hour

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// UsageCounter implements store.UsageCounter with INCR/EXPIRE.
type UsageCounter struct {
	client goredis.Cmdable
	logger *slog.Logger
}

// NewUsageCounter creates a counter on client.
func NewUsageCounter(client goredis.Cmdable, logger *slog.Logger) *UsageCounter {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UsageCounter{
		client: client,
		logger: logger.With(slog.String("component", "redis_usage_counter")),
	}
}

var _ store.UsageCounter = (*UsageCounter)(nil)

func counterKey(learnerID uuid.UUID, feature string, day time.Time) string {
	return fmt.Sprintf("usage:%s:%s:%s", feature, learnerID, day.UTC().Format(domain.DateLayout))
}

// Count implements store.UsageCounter.Count.
func (c *UsageCounter) Count(ctx context.Context, learnerID uuid.UUID, feature string, day time.Time) (int, error) {
	n, err := c.client.Get(ctx, counterKey(learnerID, feature, day)).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to read usage counter",
			slog.String("error", err.Error()),
			slog.String("feature", feature))
		return 0, err
	}
	return n, nil
}

// IncrementWithin implements store.UsageCounter.IncrementWithin.
//
// INCR is atomic, so every caller sees a distinct value. A caller whose value
// lands past the limit gives its increment back with DECR.
func (c *UsageCounter) IncrementWithin(
	ctx context.Context,
	learnerID uuid.UUID,
	feature string,
	day time.Time,
	limit int,
) (int, bool, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	key := counterKey(learnerID, feature, day)

	if limit == 0 {
		count, err := c.Count(ctx, learnerID, feature, day)
		return count, false, err
	}

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		log.Error("failed to increment usage counter",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return 0, false, err
	}

	if count == 1 {
		if err := c.client.Expire(ctx, key, counterTTL).Err(); err != nil {
			log.Warn("failed to set usage counter expiry",
				slog.String("error", err.Error()),
				slog.String("key", key))
		}
	}

	if limit > 0 && count > int64(limit) {
		if err := c.client.Decr(ctx, key).Err(); err != nil {
			log.Error("failed to roll back usage counter",
				slog.String("error", err.Error()),
				slog.String("key", key))
			return int(count), false, err
		}
		return limit, false, nil
	}

	return int(count), true, nil
}
