// Package locker provides named mutual exclusion, either inside one process
// or across processes through Redis.
package locker

import (
	"context"
	"errors"
)

// ErrLockLost is returned by a Release when the lock expired or was taken
// over before it was released.
var ErrLockLost = errors.New("lock no longer held")

// Release gives a lock back. It is safe to call more than once.
type Release func() error

// Locker hands out exclusive locks by key. Lock blocks until the lock is
// acquired or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (Release, error)
}
