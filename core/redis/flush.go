package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const flushBatchSize = 500

// Flush deletes every key matching pattern using SCAN, never KEYS or FLUSHDB.
// Matching keys are collected first and then removed in batches of
// flushBatchSize. It returns the number of keys removed.
func Flush(ctx context.Context, rdb goredis.Cmdable, pattern string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	if pattern == "" || pattern == "*" {
		return 0, errors.New("refusing to flush with an empty or match-all pattern")
	}

	var keys []string
	iter := rdb.Scan(ctx, 0, pattern, flushBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan keys %q: %w", pattern, err)
	}

	var removed int64
	for start := 0; start < len(keys); start += flushBatchSize {
		end := min(start+flushBatchSize, len(keys))
		n, err := rdb.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to delete %d keys: %w", end-start, err)
		}
		removed += n
	}
	return removed, nil
}
