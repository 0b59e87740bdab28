package resilience

import (
	"context"
	"sync"
)

// Limiter bounds the number of concurrently executing units of work.
// Excess admissions queue in strict submission order and are released
// one-for-one as running work finishes, whether it succeeded or failed.
//
// A single Limiter instance is shared by every caller that drives the
// transcription provider, so no path can exceed the provider budget.
// Construct it once at process start and pass it explicitly.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	active  int
	waiters []chan struct{}
}

// NewLimiter creates a limiter admitting at most limit concurrent executions.
func NewLimiter(limit int) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	return &Limiter{limit: limit}
}

// Acquire blocks until a slot is available or ctx is canceled.
// Waiters are granted slots in FIFO order.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.active < l.limit {
		l.active++
		l.mu.Unlock()
		return nil
	}

	grant := make(chan struct{})
	l.waiters = append(l.waiters, grant)
	l.mu.Unlock()

	select {
	case <-grant:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range l.waiters {
			if w == grant {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				l.mu.Unlock()
				return ctx.Err()
			}
		}
		l.mu.Unlock()
		// The grant raced with cancellation; the slot is ours, hand it on.
		l.Release()
		return ctx.Err()
	}
}

// Release returns a slot. If anyone is waiting, the slot transfers directly
// to the head of the queue.
func (l *Limiter) Release() {
	l.mu.Lock()
	if len(l.waiters) > 0 {
		grant := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.mu.Unlock()
		close(grant)
		return
	}
	l.active--
	l.mu.Unlock()
}

// Run executes fn within a limiter slot, blocking until one is granted.
// The slot is released when fn returns, regardless of outcome.
func (l *Limiter) Run(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// RunWith executes a function that returns a value within a limiter slot.
func RunWith[T any](ctx context.Context, l *Limiter, fn func() (T, error)) (T, error) {
	var result T
	err := l.Run(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

// InFlight returns the number of slots currently in use.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Waiting returns the number of queued admissions.
func (l *Limiter) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiters)
}

// Limit returns the maximum concurrent executions allowed.
func (l *Limiter) Limit() int {
	return l.limit
}
