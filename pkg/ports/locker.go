package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// ConnectionLocker ensures that a single engine drives a given DSG server.
// A DSG server accepts one scene client at a time; the lock makes a second
// engine fail fast instead of fighting over the stream.
type ConnectionLocker interface {
	// Lock attempts to acquire the lock for key (e.g., the server address).
	// It blocks until the lock is acquired or the context is canceled.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
