package repository

import (
	"context"
	"sync"
)

type txMarkerKey struct{}

type unit struct {
	mu    sync.Mutex
	after []func()
}

// MarkTx records on ctx that a unit of work is in progress.
// TxManager implementations call it before handing ctx to the callback and
// call Finish on the returned ctx once the unit has committed or rolled back.
func MarkTx(ctx context.Context) context.Context {
	return context.WithValue(ctx, txMarkerKey{}, &unit{})
}

// InTx reports whether ctx belongs to a running unit of work.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txMarkerKey{}).(*unit)
	return ok
}

// AfterTx runs fn when the unit of work bound to ctx ends, or right away outside one.
func AfterTx(ctx context.Context, fn func()) {
	u, ok := ctx.Value(txMarkerKey{}).(*unit)
	if !ok {
		fn()
		return
	}
	u.mu.Lock()
	u.after = append(u.after, fn)
	u.mu.Unlock()
}

// Finish runs the callbacks registered with AfterTx on the unit bound to ctx.
func Finish(ctx context.Context) {
	u, ok := ctx.Value(txMarkerKey{}).(*unit)
	if !ok {
		return
	}
	u.mu.Lock()
	after := u.after
	u.after = nil
	u.mu.Unlock()

	for _, fn := range after {
		fn()
	}
}
