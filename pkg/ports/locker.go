package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes harness calls when several processes serve one session.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
