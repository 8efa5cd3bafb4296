package uow

import (
	"context"
	"sync"
)

type compensationKey struct{}

type compensations struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

// WithCompensations lets handlers register undo actions for side effects
// made outside the transaction. The returned func runs them newest first.
func WithCompensations(ctx context.Context) (context.Context, func(context.Context)) {
	c := &compensations{}
	run := func(ctx context.Context) {
		c.mu.Lock()
		fns := c.fns
		c.fns = nil
		c.mu.Unlock()
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i](ctx)
		}
	}
	return context.WithValue(ctx, compensationKey{}, c), run
}

// OnRollback registers fn to run when the unit bound to ctx is not
// committed, including when the commit itself fails. It reports false when
// nothing collects compensations; the caller then owns the cleanup.
func OnRollback(ctx context.Context, fn func(context.Context)) bool {
	c, ok := ctx.Value(compensationKey{}).(*compensations)
	if !ok || c == nil {
		return false
	}
	c.mu.Lock()
	c.fns = append(c.fns, fn)
	c.mu.Unlock()
	return true
}
