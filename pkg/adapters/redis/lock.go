package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/dsg/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire connection lock")
)

// DefaultLockPoll is the interval between two acquisition attempts.
const DefaultLockPoll = 100 * time.Millisecond

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.ConnectionLocker using Redis SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
	poll   time.Duration
	now    func() time.Time
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		poll:   DefaultLockPoll,
		now:    time.Now,
	}
}

// Lock acquires the lock for key, polling until ctx is done.
// The unlock only deletes the key while it still holds this holder's token.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := fmt.Sprintf("%d", l.now().UnixNano())

	acquired, err := l.try(ctx, lockKey, token, ttl)
	if err != nil {
		return nil, err
	}

	if !acquired {
		ticker := time.NewTicker(l.poll)
		defer ticker.Stop()

		for !acquired {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrLockAcquire, ctx.Err())
			case <-ticker.C:
				if acquired, err = l.try(ctx, lockKey, token, ttl); err != nil {
					return nil, err
				}
			}
		}
	}

	return func(ctx context.Context) error {
		return l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err()
	}, nil
}

func (l *Locker) try(ctx context.Context, lockKey, token string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	return ok, nil
}
