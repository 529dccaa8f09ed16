package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another owner is left alone.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// LockClient is the subset of redis.UniversalClient used by Locker.
type LockClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// Locker hands out expiring single-owner locks.
type Locker struct {
	client LockClient
}

// NewLocker creates a Locker on top of client.
func NewLocker(client LockClient) *Locker {
	return &Locker{client: client}
}

// TryLock takes key for ttl without waiting. It returns ErrLockHeld when
// another owner holds it. The returned function releases the lock.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, errors.Join(ErrLockFailed, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			return errors.Join(ErrLockFailed, err)
		}
		return nil
	}, nil
}
