package runner

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Job is one unit of normal work for the main loop
type Job func(context.Context) error

// Checker is the self test safe point, see dispatcher.CheckTest
type Checker interface {
	CheckTest()
}

// Runner is the process main loop: it consumes queued jobs and, once per
// iteration, reaches the safe point where a pending self test may suspend
// it. Everything the process does goes through this single loop, so a
// paused runner means a quiescent process.
type Runner struct {
	jobs  chan Job
	tick  time.Duration
	check Checker
}

// New inits a runner around a safe point
func New(check Checker, tick time.Duration) *Runner {
	if tick <= 0 {
		tick = time.Second
	}
	return &Runner{
		jobs:  make(chan Job, 16),
		tick:  tick,
		check: check,
	}
}

// Submit queues a job for a future loop iteration, blocking when the
// queue is full
func (r *Runner) Submit(j Job) {
	r.jobs <- j
}

// Start is the main loop, it returns when ctx is done
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case j := <-r.jobs:
			if err := j(ctx); err != nil {
				log.WithError(err).Error("Job failed")
			}
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
		// safe point: this iteration's work is finished, a pending
		// self test may now interleave
		r.check.CheckTest()
	}
}
