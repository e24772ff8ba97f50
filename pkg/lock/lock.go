// Package lock provides keyed mutual exclusion for short critical sections.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock could not be taken before the wait deadline.
var ErrNotAcquired = errors.New("lock not acquired")

// Release frees a held lock. It is safe to call once.
type Release func()

// Locker serializes callers that use the same key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}
