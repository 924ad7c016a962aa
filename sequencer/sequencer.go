package sequencer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/logger"
	"github.com/kbukum/liquidkit/observability"
	"github.com/kbukum/liquidkit/picklist"
	"github.com/kbukum/liquidkit/pipette"
)

// Policy is how a batch is executed.
type Policy struct {
	// Tips overrides the tip policy of every row when set.
	Tips picklist.TipPolicy
	// Release is how tips are let go: dropped in the trash or returned.
	Release pipette.ReleaseMode
	// Volume overrides the row volume when greater than zero.
	Volume float64
	// Transfer holds the liquid-class settings. A row's own air gap and
	// blow-out take precedence.
	Transfer pipette.TransferOptions
	// Settings apply to every motion of the batch.
	Settings []pipette.Option
	// Settle is waited after each transfer.
	Settle time.Duration
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Sequencer) { s.log = log.WithComponent("sequencer") }
}

// WithMetrics counts transfers and tips on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Sequencer) { s.metrics = m }
}

// WithRecorder reports every completed transfer to r.
func WithRecorder(r Recorder) Option {
	return func(s *Sequencer) { s.recorder = r }
}

// WithClock replaces the wall clock used for transfer records.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// Sequencer executes pick-lists against a controller.
type Sequencer struct {
	ctrl     hardware.Controller
	log      *logger.Logger
	metrics  *observability.Metrics
	recorder Recorder
	now      func() time.Time
}

// New returns a Sequencer that issues delays through ctrl.
func New(ctrl hardware.Controller, opts ...Option) *Sequencer {
	s := &Sequencer{
		ctrl: ctrl,
		log:  logger.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// step is a row resolved to physical locations.
type step struct {
	ins     picklist.Instruction
	policy  picklist.TipPolicy
	volume  float64
	src     labware.Location
	dst     labware.Location
	options pipette.TransferOptions
}

// Execute runs list with p. The pipette must start without a tip; it ends
// without one unless an error stops the batch.
func (s *Sequencer) Execute(ctx context.Context, list *picklist.PickList, p *pipette.Pipette, route Route, policy Policy) error {
	if p.State() != pipette.Empty {
		return errors.ResourceState(p.Name(), "start a pick-list", p.State().String())
	}

	steps, err := s.resolve(list, p, route, policy)
	if err != nil {
		s.log.Error("pick-list rejected", logger.Fields(logger.FieldBatch, list.Name(), logger.FieldError, err.Error()))
		s.metrics.RecordError(ctx, string(errors.CodeOf(err)), "sequencer")
		return err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanBatch, trace.WithAttributes(
		attribute.String(observability.AttrPicklist, list.Name()),
		attribute.String(observability.AttrPipette, p.Name()),
		attribute.Int("picklist.rows", len(steps)),
	))
	err = s.run(ctx, list.Name(), p, steps, policy)
	observability.EndSpan(span, err)
	if err != nil {
		s.metrics.RecordError(ctx, string(errors.CodeOf(err)), "sequencer")
	}
	return err
}

// resolve turns every row into a step before anything moves.
func (s *Sequencer) resolve(list *picklist.PickList, p *pipette.Pipette, route Route, policy Policy) ([]step, error) {
	channels := p.Model().Channels
	steps := make([]step, 0, list.Len())
	for _, ins := range list.Instructions() {
		st := step{ins: ins, policy: ins.TipPolicy, volume: ins.Volume, options: policy.Transfer}
		if policy.Tips != "" {
			st.policy = policy.Tips
		}
		if policy.Volume > 0 {
			st.volume = policy.Volume
		}

		var err error
		if st.src, err = route.Source.Resolve(ins.Source); err != nil {
			return nil, rowError(ins, "source", err)
		}
		if st.dst, err = route.Destination.Resolve(ins.Destination); err != nil {
			return nil, rowError(ins, "destination", err)
		}
		for _, loc := range []labware.Location{st.src, st.dst} {
			if loc.IsTrash() {
				continue
			}
			if _, err := labware.ChannelWells(loc.Well, channels); err != nil {
				return nil, rowError(ins, "channels", err)
			}
		}

		if ins.AirGap > 0 {
			st.options.AirGap = ins.AirGap
		}
		if ins.BlowOut {
			st.options.BlowOut = true
			if ins.BlowOutAt != "" {
				target, err := pipette.ParseBlowOutTarget(string(ins.BlowOutAt))
				if err != nil {
					return nil, rowError(ins, "blow_out_at", err)
				}
				st.options.BlowOutAt = target
			}
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func rowError(ins picklist.Instruction, what string, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		appErr.WithDetail("row", ins.Row)
	}
	return fmt.Errorf("row %d %s: %w", ins.Row, what, err)
}

func (s *Sequencer) run(ctx context.Context, batch string, p *pipette.Pipette, steps []step, policy Policy) error {
	log := s.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldBatch, batch, logger.FieldPipette, p.Name()))
	log.Info("pick-list started", logger.Fields("rows", len(steps)))
	start := time.Now()

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			log.Warn("pick-list cancelled", logger.Fields(logger.FieldRow, st.ins.Row))
			return err
		}

		if st.policy == picklist.AlwaysNew && p.State() == pipette.TipHeld {
			if err := s.release(ctx, p, policy.Release); err != nil {
				return err
			}
		}
		if p.State() == pipette.Empty {
			if err := s.acquire(ctx, p); err != nil {
				return err
			}
		}

		if err := s.transfer(ctx, p, batch, st, policy); err != nil {
			log.Error("transfer failed", logger.Fields(
				logger.FieldRow, st.ins.Row,
				logger.FieldDest, st.ins.Destination,
				logger.FieldError, err.Error(),
			))
			return err
		}

		if st.policy == picklist.AlwaysNew {
			if err := s.release(ctx, p, policy.Release); err != nil {
				return err
			}
		}
		if policy.Settle > 0 {
			if err := s.ctrl.Delay(ctx, policy.Settle); err != nil {
				return errors.Hardware("delay", err)
			}
		}
	}

	if p.State() == pipette.TipHeld {
		if err := s.release(ctx, p, policy.Release); err != nil {
			return err
		}
	}
	log.Info("pick-list finished", logger.Fields("rows", len(steps), logger.FieldDuration, time.Since(start).Milliseconds()))
	return nil
}

func (s *Sequencer) transfer(ctx context.Context, p *pipette.Pipette, batch string, st step, policy Policy) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanTransfer, trace.WithAttributes(
		attribute.Int(observability.AttrRow, st.ins.Row),
		attribute.String(observability.AttrSource, st.src.String()),
		attribute.String(observability.AttrDestination, st.dst.String()),
		attribute.Float64(observability.AttrVolume, st.volume),
		attribute.String(observability.AttrTipPolicy, string(st.policy)),
	))
	tip := ""
	if t := p.Tip(); t != nil {
		tip = t.String()
	}

	err := p.Transfer(ctx, st.volume, st.src, st.dst, st.options, policy.Settings...)
	if err == nil && s.recorder != nil {
		err = s.recorder.RecordTransfer(ctx, TransferRecord{
			Batch:       batch,
			Row:         st.ins.Row,
			Pipette:     p.Name(),
			Channels:    p.Model().Channels,
			Source:      st.src.String(),
			Destination: st.dst.String(),
			Volume:      st.volume,
			Tip:         tip,
			At:          s.now(),
		})
	}
	observability.EndSpan(span, err)
	if err != nil {
		return err
	}

	s.metrics.RecordTransfer(ctx, p.Name(), st.volume)
	s.log.Debug("transfer done", logger.Fields(
		logger.FieldBatch, batch,
		logger.FieldRow, st.ins.Row,
		logger.FieldSource, st.src.String(),
		logger.FieldDest, st.dst.String(),
		logger.FieldVolume, st.volume,
	))
	return nil
}

func (s *Sequencer) acquire(ctx context.Context, p *pipette.Pipette) error {
	if err := p.AcquireTip(ctx); err != nil {
		return err
	}
	s.metrics.RecordTip(ctx, p.Name(), "pick_up")
	return nil
}

func (s *Sequencer) release(ctx context.Context, p *pipette.Pipette, mode pipette.ReleaseMode) error {
	if err := p.ReleaseTip(ctx, mode); err != nil {
		return err
	}
	s.metrics.RecordTip(ctx, p.Name(), mode.String())
	return nil
}
