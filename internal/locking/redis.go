package locking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pet-auction/internal/biddingerrors"
)

// unlockLua deletes the lock key only if it still holds the caller's token,
// so a holder whose TTL lapsed cannot release someone else's lock.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

const (
	minBackoff = 5 * time.Millisecond
	maxBackoff = 100 * time.Millisecond
)

// RedisLocker implements Locker with SET NX PX and a token-checked unlock.
// Acquire polls with capped exponential backoff until ctx is done.
type RedisLocker struct {
	rdb      redis.UniversalClient
	unlockSc *redis.Script
}

func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		rdb:      rdb,
		unlockSc: redis.NewScript(unlockLua),
	}
}

func lockKey(key string) string {
	return "lock:" + key
}

// TryAcquire makes a single attempt and returns ErrLockHeld if another party holds the key
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	lk := lockKey(key)

	ok, err := l.rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, biddingerrors.Dependency("redis", fmt.Errorf("acquire lock %s: %w", key, err))
	}
	if !ok {
		return nil, fmt.Errorf("acquire lock %s: %w", key, biddingerrors.ErrLockHeld)
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			// background context: the caller's may already be cancelled
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = l.unlockSc.Run(unlockCtx, l.rdb, []string{lk}, token).Err()
		})
	}
	return unlock, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	backoff := minBackoff
	for {
		unlock, err := l.TryAcquire(ctx, key, ttl)
		if err == nil {
			return unlock, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, ctx.Err())
		}
		if !errors.Is(err, biddingerrors.ErrLockHeld) {
			return nil, err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire %s: %w", key, ctx.Err())
		case <-timer.C:
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

var _ Locker = (*RedisLocker)(nil)
