package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner executes fire-and-forget deferred tasks. A submitted task runs to
// completion independent of the request that scheduled it: there is no return
// channel, no cancellation from the caller, and panics are caught so a bad
// task can never take the process down. Wait lets tests observe completion
// deterministically instead of sleeping.
type Runner struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunner creates a Runner whose tasks are bounded by the given timeout.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Runner{timeout: timeout}
}

// Submit schedules fn to run in the background. The task gets its own context,
// deliberately detached from any request context so a client disconnect does
// not abort it.
func (r *Runner) Submit(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logrus.WithFields(logrus.Fields{
					"task":  name,
					"panic": rec,
				}).Error("Deferred task panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		fn(ctx)
	}()
}

// Wait blocks until all tasks submitted so far have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
