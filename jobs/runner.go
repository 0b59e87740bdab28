package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/geniuslabs/voiceapi/logger"
)

// Handle tracks one background task. The task's outcome is observable through
// Done and Err; kickoff callers that don't care may discard the handle.
type Handle struct {
	done chan struct{}
	err  error
}

// Done is closed when the task has settled.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the task's error. Only valid after Done is closed.
func (h *Handle) Err() error { return h.err }

// Runner launches fire-and-forget tasks with panic recovery and logged
// failures, and can wait for all of them on shutdown.
type Runner struct {
	log *logger.Logger
	wg  sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{log: log.WithComponent("runner")}
}

// Go starts fn in the background and returns immediately with a handle.
func (r *Runner) Go(ctx context.Context, name string, fn func(context.Context) error) *Handle {
	h := &Handle{done: make(chan struct{})}
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer close(h.done)
		defer func() {
			if rec := recover(); rec != nil {
				h.err = fmt.Errorf("task panicked: %v", rec)
				r.log.Error("Background task panicked", map[string]interface{}{
					"task":  name,
					"panic": fmt.Sprintf("%v", rec),
				})
			}
		}()

		if err := fn(ctx); err != nil {
			h.err = err
			r.log.Error("Background task failed", map[string]interface{}{
				"task":  name,
				"error": err.Error(),
			})
		}
	}()

	return h
}

// Wait blocks until every launched task has settled.
func (r *Runner) Wait() {
	r.wg.Wait()
}
