package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock key only when it still holds our token, so a
// lock that expired and was re-acquired elsewhere is never released by us.
const unlockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`

// Locker is a Redis-backed distributed lock used to serialize work across
// instances, such as catalog snapshot refreshes.
type Locker struct {
	R            *redis.Client
	RetryBackoff time.Duration
}

// WithLock runs fn while holding the lock for key. Acquisition retries with
// backoff until the context is cancelled; the lock is released when fn
// returns, successfully or not.
func (l Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.R == nil {
		return errors.New("lock: redis client not configured")
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	backoff := l.RetryBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	token := uuid.NewString()

	for {
		acquired, err := l.R.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if acquired {
			defer l.unlock(key, token)
			return fn(ctx)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// unlock uses a fresh context so release still happens when the caller's
// context is already cancelled.
func (l Locker) unlock(key, token string) {
	ctx := context.Background()
	err := l.R.Eval(ctx, unlockScript, []string{key}, token).Err()
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "unknown command") {
		// Server without scripting support; best-effort delete.
		_ = l.R.Del(ctx, key).Err()
	}
}
