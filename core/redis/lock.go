package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"go.uber.org/zap"
)

// ErrScopeLocked is returned when another job already holds a scope lock.
var ErrScopeLocked = errors.New("scope is locked by another regeneration job")

// ScopeLocker guards (entity type, store) scopes with Redis leases.
type ScopeLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewScopeLocker wraps a redislock client. A non-positive ttl defaults to five minutes.
func NewScopeLocker(client redislock.RedisClient, ttl time.Duration, l *zap.Logger) *ScopeLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &ScopeLocker{locker: redislock.New(client), ttl: ttl, logger: l}
}

// LockKey builds the Redis key of one scope.
func LockKey(entityType string, storeID int64) string {
	return fmt.Sprintf("lock:rewrite-regen:%s:%d", entityType, storeID)
}

// Lock obtains one lease per store, in the given order. Leases are refreshed at
// half their ttl until the returned release function is called. If any lease
// cannot be obtained, the ones already held are released.
func (s *ScopeLocker) Lock(ctx context.Context, entityType string, storeIDs []int64) (func(context.Context) error, error) {
	held := make([]*redislock.Lock, 0, len(storeIDs))

	releaseAll := func(ctx context.Context) error {
		var errs []error
		for _, l := range held {
			if err := l.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, storeID := range storeIDs {
		key := LockKey(entityType, storeID)
		l, err := s.locker.Obtain(ctx, key, s.ttl, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			_ = releaseAll(ctx)
			return nil, fmt.Errorf("%w: %s", ErrScopeLocked, key)
		}
		if err != nil {
			_ = releaseAll(ctx)
			return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
		}
		held = append(held, l)
	}

	refreshCtx, stop := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				for _, l := range held {
					s.refresh(refreshCtx, l)
				}
			}
		}
	}()

	return func(ctx context.Context) error {
		stop()
		wg.Wait()
		return releaseAll(ctx)
	}, nil
}

// refresh extends one lease. A lease that is gone is logged as lost; the run
// keeps going but the scope is no longer guarded.
func (s *ScopeLocker) refresh(ctx context.Context, l *redislock.Lock) {
	err := l.Refresh(ctx, s.ttl, nil)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, redislock.ErrNotObtained):
		s.logger.Warn("Lost scope lock, another job may now regenerate this scope", zap.String("key", l.Key()))
	default:
		s.logger.Warn("Failed to refresh scope lock", zap.String("key", l.Key()), zap.Error(err))
	}
}
