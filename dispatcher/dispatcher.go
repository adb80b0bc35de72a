// Package dispatcher coordinates on-demand self tests for a long-running
// process. An external trigger (an HTTP handler, a cron entry) calls DoTest
// on its own goroutine; the process main loop calls CheckTest once per
// iteration at a point where it is safe to be paused. The two goroutines
// rendezvous: the trigger waits for the loop to acknowledge, the loop then
// waits for the tests to finish before resuming normal work.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/factorysh/selftest/owner"
	"github.com/factorysh/selftest/pubsub"
	"github.com/factorysh/selftest/status"
	"github.com/factorysh/selftest/task"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultWaitTimeout bounds the wait for the runner loop acknowledgment
const DefaultWaitTimeout = 10 * time.Second

var (
	// ErrTestPending is returned to a trigger overlapping a run already in flight
	ErrTestPending = errors.New("a self test is already pending")
	// ErrNotLive is returned when the process is shutting down, no test is run
	ErrNotLive = errors.New("process is not live, self test skipped")
)

// Report is the aggregated outcome of one self test run
type Report struct {
	RunID      uuid.UUID       `json:"run_id"`
	Identifier string          `json:"identifier"`
	Passed     bool            `json:"passed"`
	Statuses   []status.Record `json:"statuses"`
	Started    time.Time       `json:"started"`
	Elapsed    time.Duration   `json:"elapsed"`
}

// Dispatcher owns the registered tests and the trigger/runner handshake.
// Registration (Add, SetPretest, SetPosttest, inherited from task.Registry)
// must be finished before the first trigger can fire. Only one trigger may
// be in flight at a time, an overlapping one is rejected with ErrTestPending.
type Dispatcher struct {
	task.Registry

	// WaitTimeout bounds the wait for the runner acknowledgment,
	// DefaultWaitTimeout when zero. The timeout is a hard abort: the run
	// is reported failed, there is no retry.
	WaitTimeout time.Duration

	// Live, when set, is consulted after the rendezvous. If it returns
	// false no test runs and DoTest returns ErrNotLive.
	Live func() bool

	// Events, when set, receives one event per run transition
	Events *pubsub.PubSub

	// The state below is one run cycle. waiting and ready mirror the
	// trigger/acknowledge flags, the channels carry the two wake-ups:
	// readyCh is closed by CheckTest under mu (no trigger can miss it),
	// doneCh is closed when the run completes. A cycle is active iff
	// doneCh is non nil.
	mu      sync.Mutex
	waiting bool
	ready   bool
	readyCh chan struct{}
	doneCh  chan struct{}
	id      string
}

// New returns a dispatcher with the default wait timeout
func New() *Dispatcher {
	return &Dispatcher{
		WaitTimeout: DefaultWaitTimeout,
	}
}

// DoTest triggers a self test run. It blocks the calling goroutine until
// the main loop acknowledges through CheckTest, runs every registered test
// there, then releases the loop and returns the report.
//
// A timed out wait returns a failed report with a single synthesized
// status, not an error: the caller always gets a payload it can forward.
// The only error returns are an overlapping trigger (ErrTestPending), a
// canceled context, and a process no longer live (ErrNotLive).
func (d *Dispatcher) DoTest(ctx context.Context) (*Report, error) {
	runID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	started := time.Now()
	requester := ""
	if o, err := owner.FromCtx(ctx); err == nil {
		requester = o.Name
	}

	d.mu.Lock()
	if d.doneCh != nil {
		d.mu.Unlock()
		return nil, ErrTestPending
	}
	d.waiting = true
	d.ready = false
	d.id = ""
	d.readyCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	readyCh := d.readyCh
	d.mu.Unlock()

	l := log.WithField("run_id", runID)
	if requester != "" {
		l = l.WithField("owner", requester)
	}

	timeout := d.WaitTimeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-readyCh:
	case <-timer.C:
		// the runner may have acknowledged while the timer fired,
		// the abort decision is made under the lock
		if d.abort() {
			l.Error("Timed out waiting to run self test")
			d.publish("timeout", runID, requester)
			return &Report{
				RunID:   runID,
				Passed:  false,
				Started: started,
				Elapsed: time.Since(started),
				Statuses: []status.Record{{
					Name:    "Wait for Node Ready",
					Level:   status.Error,
					Message: "Timed out waiting to run self test.",
				}},
			}, nil
		}
	case <-ctx.Done():
		if d.abort() {
			return nil, ctx.Err()
		}
	}

	l.Info("Beginning self test, normal operation is suspended")

	if d.Live != nil && !d.Live() {
		// the process is going away, release the runner and bail out
		d.complete()
		return nil, ErrNotLive
	}

	d.publish("started", runID, requester)

	if pretest := d.Pretest(); pretest != nil {
		pretest()
	}
	l.Info("Completed pretest")

	tasks := d.Tasks()
	records := make([]status.Record, 0, len(tasks))
	for _, t := range tasks {
		record := status.NewRecord(t.Name)
		runProc(t.Proc, &record)
		records = append(records, record)
	}

	d.mu.Lock()
	d.waiting = false
	identifier := d.id
	d.mu.Unlock()

	report := &Report{
		RunID:      runID,
		Identifier: identifier,
		Passed:     true,
		Statuses:   records,
		Started:    started,
	}
	for _, record := range records {
		if record.Level >= status.Error {
			report.Passed = false
		}
		if record.Level >= status.Warn {
			l.WithFields(log.Fields{
				"name":    record.Name,
				"level":   record.Level.String(),
				"message": record.Message,
			}).Warn("Self test status")
		}
	}

	if posttest := d.Posttest(); posttest != nil {
		posttest()
	}

	report.Elapsed = time.Since(started)
	l.WithField("passed", report.Passed).Info("Self test completed")
	if report.Passed {
		d.publish("passed", runID, requester)
	} else {
		d.publish("failed", runID, requester)
	}

	d.complete()
	return report, nil
}

// CheckTest is the safe point of the main loop. When no trigger is pending
// it costs a single lock acquisition and returns at once, so it can be
// called on every loop iteration. When a trigger is waiting it acknowledges
// it and blocks until the whole run is over, guaranteeing normal work does
// not resume mid-test.
func (d *Dispatcher) CheckTest() {
	d.mu.Lock()
	pending := d.waiting
	doneCh := d.doneCh
	if !d.ready {
		d.ready = true
		if d.readyCh != nil {
			// closed under mu: the trigger cannot miss the wake-up
			close(d.readyCh)
		}
	}
	d.mu.Unlock()

	if pending {
		<-doneCh
	}
}

// SetID records the identifier of the unit under test. One of the tasks is
// expected to call it during the run, last write wins. It is reset at the
// start of each cycle.
func (d *Dispatcher) SetID(id string) {
	d.mu.Lock()
	d.id = id
	d.mu.Unlock()
}

// abort abandons the cycle, unless the runner acknowledged in the same
// instant: once ready is set the runner is committed to waiting on doneCh
// and the run must go on. The check and the reset share one critical
// section so the runner cannot slip in between them.
func (d *Dispatcher) abort() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return false
	}
	d.waiting = false
	d.readyCh = nil
	d.doneCh = nil
	return true
}

// complete ends the cycle and wakes the runner blocked in CheckTest
func (d *Dispatcher) complete() {
	d.mu.Lock()
	d.waiting = false
	close(d.doneCh)
	d.doneCh = nil
	d.readyCh = nil
	d.mu.Unlock()
}

func (d *Dispatcher) publish(action string, runID uuid.UUID, requester string) {
	if d.Events == nil {
		return
	}
	d.Events.Publish(pubsub.Event{
		Action: action,
		RunID:  runID,
		Owner:  requester,
	})
}

// runProc executes one test against its record. A panic or a returned error
// is downgraded to an Error level status, it never aborts the run.
func runProc(proc task.Proc, record *status.Record) {
	defer func() {
		if r := recover(); r != nil {
			record.Level = status.Error
			record.Message = fmt.Sprintf("Uncaught exception: %v", r)
		}
	}()
	if err := proc(record); err != nil {
		record.Level = status.Error
		record.Message = "Uncaught exception: " + err.Error()
	}
}
