package protocol

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/liquidkit/deck"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/journal"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/logger"
	"github.com/kbukum/liquidkit/observability"
	"github.com/kbukum/liquidkit/operator"
	"github.com/kbukum/liquidkit/picklist"
	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/sequencer"
)

// Journal persists runs. *journal.Journal implements it.
type Journal interface {
	sequencer.Recorder
	Begin(ctx context.Context, protocol string, params any, simulated bool) (string, error)
	RecordEvent(ctx context.Context, kind journal.EventKind, phase, message string) error
	Finish(ctx context.Context, cause error) (journal.Run, error)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLabware sets the labware registry. The built-in one is used otherwise.
func WithLabware(reg *labware.Registry) RunnerOption {
	return func(r *Runner) { r.labware = reg }
}

// WithPickLists sets the store protocols load pick-lists from.
func WithPickLists(s *picklist.Store) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithOperator sets who is asked at pauses. Runs resume immediately otherwise.
func WithOperator(op operator.Operator) RunnerOption {
	return func(r *Runner) { r.operator = op }
}

// WithJournal records runs, phases and transfers in j.
func WithJournal(j Journal) RunnerOption {
	return func(r *Runner) { r.journal = j }
}

// WithTracker publishes run status to t.
func WithTracker(t *operator.Tracker) RunnerOption {
	return func(r *Runner) { r.tracker = t }
}

// WithMetrics records phase, transfer and tip metrics on m.
func WithMetrics(m *observability.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// Simulated marks runs as simulated in the journal.
func Simulated(simulated bool) RunnerOption {
	return func(r *Runner) { r.simulated = simulated }
}

// Runner executes protocols against a controller, one at a time.
type Runner struct {
	ctrl      hardware.Controller
	labware   *labware.Registry
	store     *picklist.Store
	operator  operator.Operator
	journal   Journal
	tracker   *operator.Tracker
	metrics   *observability.Metrics
	log       *logger.Logger
	simulated bool
}

// NewRunner creates a Runner.
func NewRunner(ctrl hardware.Controller, opts ...RunnerOption) *Runner {
	r := &Runner{
		ctrl: ctrl,
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.labware == nil {
		r.labware = labware.NewRegistry()
	}
	if r.operator == nil {
		r.operator = operator.Auto{Log: r.log}
	}
	r.log = r.log.WithComponent("runner")
	return r
}

// Result summarises a run, complete or not.
type Result struct {
	RunID     string
	Protocol  string
	Phases    []string // completed phases, in order
	Transfers int
	Duration  time.Duration
	Pipettes  map[string]pipette.Stats
}

// Run loads the protocol's deck and runs its phases. The returned Result is
// never nil and describes how far the run got.
func (r *Runner) Run(ctx context.Context, p Protocol) (*Result, error) {
	start := time.Now()
	res := &Result{Protocol: p.Name(), Pipettes: make(map[string]pipette.Stats)}

	if r.journal != nil {
		id, err := r.journal.Begin(ctx, p.Name(), p.Parameters(), r.simulated)
		if err != nil {
			return res, err
		}
		res.RunID = id
	} else {
		res.RunID = uuid.NewString()
	}

	ctx = logger.ContextWithRun(ctx, res.RunID)
	log := r.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldProtocol, p.Name()))
	if r.tracker != nil {
		r.tracker.Begin(res.RunID, p.Name())
	}
	log.Info("run started", logger.Fields("simulated", r.simulated))

	ctx, span := observability.StartSpan(ctx, observability.SpanRun, trace.WithAttributes(
		attribute.String(observability.AttrProtocol, p.Name()),
		attribute.String(observability.AttrRunID, res.RunID),
	))
	err := r.run(ctx, p, res, log)
	observability.EndSpan(span, err)

	if r.tracker != nil {
		r.tracker.Finish(err)
	}
	if r.journal != nil {
		if _, jerr := r.journal.Finish(ctx, err); jerr != nil {
			log.Error("failed to close run in journal", logger.Fields(logger.FieldError, jerr.Error()))
			if err == nil {
				err = jerr
			}
		}
	}
	res.Duration = time.Since(start)

	if err != nil {
		r.metrics.RecordError(ctx, string(errors.CodeOf(err)), "runner")
		log.Error("run failed", logger.Fields(
			logger.FieldError, err.Error(),
			"code", string(errors.CodeOf(err)),
			"transfers", res.Transfers,
			logger.FieldDuration, res.Duration.Milliseconds(),
		))
		return res, err
	}
	log.Info("run finished", logger.Fields(
		"phases", len(res.Phases),
		"transfers", res.Transfers,
		logger.FieldDuration, res.Duration.Milliseconds(),
	))
	return res, nil
}

func (r *Runner) run(ctx context.Context, p Protocol, res *Result, log *logger.Logger) error {
	d, err := deck.Load(ctx, r.ctrl, r.labware, p.Layout(), r.log)
	if err != nil {
		return err
	}
	defer func() {
		for _, spec := range p.Layout().Pipettes {
			if pip, err := d.Pipette(spec.Name); err == nil {
				res.Pipettes[spec.Name] = pip.Stats()
			}
		}
	}()

	phases, err := p.Plan(d)
	if err != nil {
		return err
	}

	s := r.session(res, p.Name(), d, log)
	for _, ph := range phases {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled", logger.Fields(logger.FieldPhase, ph.Name))
			return err
		}
		if err := s.runPhase(ctx, ph); err != nil {
			return err
		}
		res.Phases = append(res.Phases, ph.Name)
	}
	return nil
}

func (r *Runner) session(res *Result, protocol string, d *deck.Deck, log *logger.Logger) *Session {
	s := &Session{
		runID:    res.RunID,
		protocol: protocol,
		ctrl:     r.ctrl,
		deck:     d,
		store:    r.store,
		operator: r.operator,
		journal:  r.journal,
		tracker:  r.tracker,
		metrics:  r.metrics,
		log:      log,
	}
	recorders := []sequencer.Recorder{sequencer.RecorderFunc(func(context.Context, sequencer.TransferRecord) error {
		res.Transfers++
		return nil
	})}
	if r.journal != nil {
		recorders = append(recorders, r.journal)
	}
	if r.tracker != nil {
		recorders = append(recorders, r.tracker)
	}
	s.recorder = sequencer.Recorders(recorders...)
	return s
}
