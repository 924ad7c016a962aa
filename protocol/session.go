package protocol

import (
	"context"
	"time"

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

// Session is what a phase runs with: the loaded deck and the run's
// collaborators.
type Session struct {
	runID    string
	protocol string
	ctrl     hardware.Controller
	deck     *deck.Deck
	store    *picklist.Store
	operator operator.Operator
	journal  Journal
	tracker  *operator.Tracker
	metrics  *observability.Metrics
	recorder sequencer.Recorder
	log      *logger.Logger

	phase string
	row   int
}

// RunID returns the ID of the run.
func (s *Session) RunID() string { return s.runID }

// Deck returns the loaded deck.
func (s *Session) Deck() *deck.Deck { return s.deck }

// Logger returns the run logger tagged with the current phase.
func (s *Session) Logger() *logger.Logger {
	if s.phase == "" {
		return s.log
	}
	return s.log.WithFields(logger.Fields(logger.FieldPhase, s.phase))
}

func (s *Session) runPhase(ctx context.Context, ph Phase) error {
	s.phase, s.row = ph.Name, 0
	defer func() { s.phase = "" }()

	ctx = logger.ContextWithPhase(ctx, ph.Name)
	ctx, pc := observability.StartPhase(ctx, s.protocol, ph.Name, s.runID, s.metrics)
	log := s.Logger()
	if s.tracker != nil {
		s.tracker.Phase(ph.Name)
	}
	s.event(ctx, journal.EventPhaseStarted, "")
	log.Info("phase started")

	err := ph.Run(ctx, s)
	pc.End(ctx, err)
	if err != nil {
		s.event(ctx, journal.EventPhaseFailed, err.Error())
		log.Error("phase failed", logger.Fields(logger.FieldError, err.Error(), logger.FieldDuration, pc.Duration().Milliseconds()))
		return err
	}
	s.event(ctx, journal.EventPhaseFinished, "")
	log.Info("phase finished", logger.Fields(logger.FieldDuration, pc.Duration().Milliseconds()))
	return nil
}

// event journals a milestone. Journal failures here are logged, not fatal:
// the transfer records are what an aborted run is reconstructed from.
func (s *Session) event(ctx context.Context, kind journal.EventKind, message string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordEvent(ctx, kind, s.phase, message); err != nil {
		s.log.Warn("failed to journal event", logger.Fields("kind", string(kind), logger.FieldError, err.Error()))
	}
}

// PickList loads a pick-list from the run's store.
func (s *Session) PickList(ctx context.Context, name string, opts picklist.Options) (*picklist.PickList, error) {
	if s.store == nil {
		return nil, errors.Config("picklists", errors.MissingField("storage"))
	}
	return s.store.Load(ctx, name, opts)
}

// Execute runs a pick-list with p, recording every transfer.
func (s *Session) Execute(ctx context.Context, list *picklist.PickList, p *pipette.Pipette, route sequencer.Route, policy sequencer.Policy) error {
	seq := sequencer.New(s.ctrl,
		sequencer.WithLogger(s.log),
		sequencer.WithMetrics(s.metrics),
		sequencer.WithRecorder(s.recorder),
	)
	return seq.Execute(ctx, list, p, route, policy)
}

// Transfer moves ul from src to dst with the tip p holds and records it
// under the current phase.
func (s *Session) Transfer(ctx context.Context, p *pipette.Pipette, ul float64, src, dst labware.Location, o pipette.TransferOptions, opts ...pipette.Option) error {
	tip := ""
	if t := p.Tip(); t != nil {
		tip = t.String()
	}
	if err := p.Transfer(ctx, ul, src, dst, o, opts...); err != nil {
		return err
	}
	s.row++
	s.metrics.RecordTransfer(ctx, p.Name(), ul)
	return s.recorder.RecordTransfer(ctx, sequencer.TransferRecord{
		Batch:       s.phase,
		Row:         s.row,
		Pipette:     p.Name(),
		Channels:    p.Model().Channels,
		Source:      src.String(),
		Destination: dst.String(),
		Volume:      ul,
		Tip:         tip,
		At:          time.Now(),
	})
}

// Pause stops for the operator and returns once they resume.
func (s *Session) Pause(ctx context.Context, message string) error {
	if err := s.ctrl.Pause(ctx, message); err != nil {
		return errors.Hardware("pause", err)
	}
	s.event(ctx, journal.EventPause, message)
	s.Logger().Info("waiting for operator", logger.Fields("message", message))

	err := operator.PauseAnnounced(ctx, s.operator, message, func() {
		if s.tracker != nil {
			s.tracker.Paused(message)
		}
	})
	if err != nil {
		return err
	}
	if s.tracker != nil {
		s.tracker.Resumed()
	}
	s.event(ctx, journal.EventResume, message)
	s.Logger().Info("resumed by operator")
	return nil
}

// Comment writes message to the robot's run log and the journal.
func (s *Session) Comment(ctx context.Context, message string) error {
	if err := s.ctrl.Comment(ctx, message); err != nil {
		return errors.Hardware("comment", err)
	}
	s.event(ctx, journal.EventComment, message)
	s.Logger().Info(message)
	return nil
}

// Delay waits for d on the robot. It is not interrupted by ctx.
func (s *Session) Delay(ctx context.Context, d time.Duration) error {
	s.Logger().Debug("delay", logger.DurationFields("delay", d))
	if err := s.ctrl.Delay(ctx, d); err != nil {
		return errors.Hardware("delay", err)
	}
	return nil
}

// Home homes the gantry.
func (s *Session) Home(ctx context.Context) error {
	if err := s.ctrl.Home(ctx); err != nil {
		return errors.Hardware("home", err)
	}
	return nil
}
