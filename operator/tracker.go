package operator

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/sequencer"
)

// RunState is the coarse state of the runner.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StatePaused    RunState = "paused"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
)

// Status is what GET /status reports.
type Status struct {
	State     RunState   `json:"state"`
	RunID     string     `json:"run_id,omitempty"`
	Protocol  string     `json:"protocol,omitempty"`
	Phase     string     `json:"phase,omitempty"`
	Message   string     `json:"message,omitempty"`
	Transfers int        `json:"transfers"`
	LastWell  string     `json:"last_well,omitempty"`
	Error     string     `json:"error,omitempty"`
	ErrorCode string     `json:"error_code,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Tracker holds the live status of the current run. It is safe for
// concurrent use by the runner and the API.
type Tracker struct {
	mu          sync.RWMutex
	status      Status
	now         func() time.Time
	subscribers []func(Status)
}

var _ sequencer.Recorder = (*Tracker)(nil)

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.status = Status{State: StateIdle, UpdatedAt: t.now()}
	return t
}

// Subscribe calls fn with a snapshot after every change. fn runs on the
// updating goroutine and must not block.
func (t *Tracker) Subscribe(fn func(Status)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

func (t *Tracker) update(fn func(s *Status)) {
	t.mu.Lock()
	fn(&t.status)
	t.status.UpdatedAt = t.now()
	snapshot, subs := t.status, t.subscribers
	t.mu.Unlock()
	for _, sub := range subs {
		sub(snapshot)
	}
}

// Begin marks a new run as running.
func (t *Tracker) Begin(runID, protocol string) {
	t.update(func(s *Status) {
		started := t.now()
		*s = Status{State: StateRunning, RunID: runID, Protocol: protocol, StartedAt: &started}
	})
}

// Phase records the current phase.
func (t *Tracker) Phase(name string) {
	t.update(func(s *Status) { s.Phase, s.Message = name, "" })
}

// Paused marks the run as waiting on the operator.
func (t *Tracker) Paused(message string) {
	t.update(func(s *Status) { s.State, s.Message = StatePaused, message })
}

// Resumed marks the run as running again.
func (t *Tracker) Resumed() {
	t.update(func(s *Status) { s.State, s.Message = StateRunning, "" })
}

// RecordTransfer counts a completed transfer.
func (t *Tracker) RecordTransfer(_ context.Context, rec sequencer.TransferRecord) error {
	t.update(func(s *Status) {
		s.Transfers++
		s.LastWell = rec.Destination
	})
	return nil
}

// Finish records how the run ended.
func (t *Tracker) Finish(err error) {
	t.update(func(s *Status) {
		s.Message = ""
		switch {
		case err == nil:
			s.State = StateCompleted
		case stderrors.Is(err, context.Canceled):
			s.State, s.Error = StateCancelled, err.Error()
		default:
			s.State, s.Error = StateFailed, err.Error()
			s.ErrorCode = string(errors.CodeOf(err))
		}
	})
}

// Status returns a copy of the current status.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
