package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/justsurfingit/vacancy-parser/internal/retry"
	redis "github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix    = "ratelimit:"
	redisMaxTxRetries = 5
	redisTxBackoff    = 2 * time.Millisecond

	fieldCount   = "count"
	fieldWindow  = "window_reset_at"
	fieldBlocked = "blocked_until"
)

// RedisStore shares records between instances. Keys expire on their own,
// so Sweep has nothing to do.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Update(ctx context.Context, key string, fn func(rec *Record)) (Record, error) {
	redisKey := redisKeyPrefix + key
	var out Record

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, redisKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		rec, err := decodeRecord(vals)
		if err != nil {
			return err
		}

		fn(&rec)

		expireAt := rec.WindowResetAt
		if rec.BlockedUntil.After(expireAt) {
			expireAt = rec.BlockedUntil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisKey, map[string]any{
				fieldCount:   rec.Count,
				fieldWindow:  rec.WindowResetAt.UnixMilli(),
				fieldBlocked: unixMilliOrZero(rec.BlockedUntil),
			})
			pipe.PExpireAt(ctx, redisKey, expireAt)
			return nil
		})
		if err == nil {
			out = rec
		}
		return err
	}

	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: redisMaxTxRetries,
		Backoff:     retry.Exponential(redisTxBackoff, 20*redisTxBackoff),
		IsRetryable: func(err error) bool { return errors.Is(err, redis.TxFailedErr) },
	}, func(ctx context.Context) error {
		return s.client.Watch(ctx, txf, redisKey)
	})
	if err != nil {
		return Record{}, fmt.Errorf("update rate limit record %q: %w", key, err)
	}
	return out, nil
}

func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func decodeRecord(vals map[string]string) (Record, error) {
	var rec Record
	if len(vals) == 0 {
		return rec, nil
	}

	count, err := strconv.Atoi(vals[fieldCount])
	if err != nil {
		return rec, fmt.Errorf("decode %s: %w", fieldCount, err)
	}
	window, err := strconv.ParseInt(vals[fieldWindow], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("decode %s: %w", fieldWindow, err)
	}
	blocked, err := strconv.ParseInt(vals[fieldBlocked], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("decode %s: %w", fieldBlocked, err)
	}

	rec.Count = count
	rec.WindowResetAt = time.UnixMilli(window)
	if blocked > 0 {
		rec.BlockedUntil = time.UnixMilli(blocked)
	}
	return rec, nil
}

func unixMilliOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
