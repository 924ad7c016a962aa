package pipette

import (
	"context"
	"fmt"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/logger"
)

// volumeTolerance absorbs float rounding when volumes are split and summed.
const volumeTolerance = 1e-6

// State is the tip state of a pipette.
type State int

const (
	Empty State = iota
	TipHeld
)

func (s State) String() string {
	if s == TipHeld {
		return "tip held"
	}
	return "empty"
}

// ReleaseMode says where a released tip goes.
type ReleaseMode int

const (
	// Drop discards the tip in the trash.
	Drop ReleaseMode = iota
	// Return puts the tip back in the rack position it came from.
	Return
)

func (m ReleaseMode) String() string {
	if m == Return {
		return "return"
	}
	return "drop"
}

// ParseReleaseMode parses "drop" or "return".
func ParseReleaseMode(s string) (ReleaseMode, error) {
	switch s {
	case "drop", "":
		return Drop, nil
	case "return":
		return Return, nil
	}
	return Drop, errors.InvalidInput("release", fmt.Sprintf("unknown release mode %q", s))
}

// Config describes a pipette to load.
type Config struct {
	Name  string
	Model Model
	Mount hardware.Mount
	// Defaults override the model's flow rates for every operation.
	Defaults Settings
}

// Stats counts the operations a pipette has performed.
type Stats struct {
	PickUps   int
	Drops     int
	Returns   int
	Aspirated float64
	Dispensed float64
}

// Pipette is a single pipette and the tip it holds. It is not safe for
// concurrent use; a run owns its pipettes.
type Pipette struct {
	name     string
	model    Model
	mount    hardware.Mount
	ctrl     hardware.Controller
	tips     *TipTracker
	log      *logger.Logger
	defaults Settings

	state    State
	tip      *labware.Well
	liquid   float64
	air      float64
	lastWell *labware.Well
	stats    Stats
}

// New returns an empty pipette that takes tips from tips.
func New(cfg Config, ctrl hardware.Controller, tips *TipTracker, log *logger.Logger) *Pipette {
	if log == nil {
		log = logger.Nop()
	}
	name := cfg.Name
	if name == "" {
		name = cfg.Model.Name
	}
	defaults := Settings{
		AspirateRate: cfg.Model.AspirateRate,
		DispenseRate: cfg.Model.DispenseRate,
		BlowOutRate:  cfg.Model.BlowOutRate,
	}
	WithSettings(cfg.Defaults)(&defaults)

	return &Pipette{
		name:     name,
		model:    cfg.Model,
		mount:    cfg.Mount,
		ctrl:     ctrl,
		tips:     tips,
		log:      log.WithComponent("pipette").WithFields(logger.Fields(logger.FieldPipette, name)),
		defaults: defaults,
	}
}

func (p *Pipette) Name() string          { return p.name }
func (p *Pipette) Model() Model          { return p.model }
func (p *Pipette) Mount() hardware.Mount { return p.mount }
func (p *Pipette) State() State          { return p.state }
func (p *Pipette) Tips() *TipTracker     { return p.tips }
func (p *Pipette) Stats() Stats          { return p.stats }

// Tip returns the held tip (the first tip of the column for multi-channel
// pipettes), or nil.
func (p *Pipette) Tip() *labware.Well { return p.tip }

// Contents returns the liquid and air currently in the tip, per channel.
func (p *Pipette) Contents() (liquid, air float64) { return p.liquid, p.air }

// Capacity returns the most a tip can hold: the smaller of the pipette's
// maximum and the tip's own volume.
func (p *Pipette) Capacity() float64 {
	c := p.model.MaxVolume
	if p.tips == nil {
		return c
	}
	if tv := p.tips.TipVolume(); tv > 0 && tv < c {
		c = tv
	}
	return c
}

func (p *Pipette) requireTip(op string) error {
	if p.state != TipHeld {
		return errors.ResourceState(p.name, op, p.state.String())
	}
	return nil
}

// AcquireTip picks up the next tip. It fails with a RESOURCE_STATE_ERROR if
// a tip is already held and with OUT_OF_TIPS if the racks are exhausted.
func (p *Pipette) AcquireTip(ctx context.Context) error {
	if p.state == TipHeld {
		return errors.ResourceState(p.name, "acquire a tip", p.state.String())
	}
	tip, ok := p.tips.Next()
	if !ok {
		return errors.OutOfTips(p.name, p.tips.Racks())
	}
	if err := p.ctrl.PickUpTip(ctx, p.mount, tip.Top(0)); err != nil {
		return errors.Hardware("pick up tip", err)
	}
	p.tips.mark(tip, tipInUse)
	p.state, p.tip = TipHeld, tip
	p.liquid, p.air = 0, 0
	p.stats.PickUps++
	p.log.Debug("tip acquired", logger.Fields(logger.FieldTip, tip.String()))
	return nil
}

// ReleaseTip drops or returns the held tip. It fails with a
// RESOURCE_STATE_ERROR if no tip is held.
func (p *Pipette) ReleaseTip(ctx context.Context, mode ReleaseMode) error {
	if p.state != TipHeld {
		return errors.ResourceState(p.name, "release a tip", p.state.String())
	}
	loc := labware.Location{}
	next := tipConsumed
	if mode == Return {
		loc = p.tip.Top(0)
		next = tipReturned
	}
	if err := p.ctrl.DropTip(ctx, p.mount, loc); err != nil {
		return errors.Hardware("drop tip", err)
	}
	p.tips.mark(p.tip, next)
	if mode == Return {
		p.stats.Returns++
	} else {
		p.stats.Drops++
	}
	p.log.Debug("tip released", logger.Fields(logger.FieldTip, p.tip.String(), "mode", mode.String()))
	p.state, p.tip = Empty, nil
	p.liquid, p.air = 0, 0
	return nil
}

// WithTip acquires a tip, runs fn and releases the tip with mode. When fn
// fails the tip stays on: the error aborts the run and the deck is left as
// it was for the operator to inspect.
func (p *Pipette) WithTip(ctx context.Context, mode ReleaseMode, fn func(ctx context.Context) error) error {
	if err := p.AcquireTip(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return p.ReleaseTip(ctx, mode)
}

// channelWells validates that loc can be reached by every channel.
func (p *Pipette) channelWells(loc labware.Location) ([]*labware.Well, error) {
	if loc.IsTrash() {
		return nil, nil
	}
	return labware.ChannelWells(loc.Well, p.model.Channels)
}

func checkVolume(field string, ul float64) error {
	if !(ul > 0) {
		return errors.InvalidInput(field, fmt.Sprintf("volume must be greater than 0, got %v", ul))
	}
	return nil
}

// Aspirate draws ul into the tip from loc.
func (p *Pipette) Aspirate(ctx context.Context, ul float64, loc labware.Location, opts ...Option) error {
	if err := p.requireTip("aspirate"); err != nil {
		return err
	}
	if err := checkVolume("volume", ul); err != nil {
		return err
	}
	if loc.IsTrash() {
		return errors.InvalidInput("location", "cannot aspirate from the trash")
	}
	if p.liquid+p.air+ul > p.Capacity()+volumeTolerance {
		return errors.InvalidInput("volume", fmt.Sprintf("%.2f µL does not fit in a %.0f µL tip holding %.2f µL",
			ul, p.Capacity(), p.liquid+p.air))
	}
	if ul < p.model.MinVolume {
		p.log.Warn("volume below pipette minimum", logger.Fields(logger.FieldVolume, ul, "min_ul", p.model.MinVolume))
	}
	wells, err := p.channelWells(loc)
	if err != nil {
		return err
	}
	s := p.settings(opts)
	if err := p.ctrl.Aspirate(ctx, p.mount, ul, loc, s.aspirate()); err != nil {
		return errors.Hardware("aspirate", err)
	}
	for _, w := range wells {
		w.Remove(ul)
	}
	p.liquid += ul
	p.lastWell = loc.Well
	p.stats.Aspirated += ul
	return nil
}

// AirGap draws ul of air above the last well the pipette visited.
func (p *Pipette) AirGap(ctx context.Context, ul float64, opts ...Option) error {
	if err := p.requireTip("draw an air gap"); err != nil {
		return err
	}
	if err := checkVolume("air_gap", ul); err != nil {
		return err
	}
	if p.lastWell == nil {
		return errors.InvalidInput("air_gap", "no well visited yet")
	}
	if p.liquid+p.air+ul > p.Capacity()+volumeTolerance {
		return errors.InvalidInput("air_gap", fmt.Sprintf("%.2f µL air gap does not fit in the tip", ul))
	}
	s := p.settings(opts)
	if err := p.ctrl.Aspirate(ctx, p.mount, ul, p.lastWell.Top(5), s.aspirate()); err != nil {
		return errors.Hardware("air gap", err)
	}
	p.air += ul
	return nil
}

// Dispense pushes ul out of the tip into loc. Air sits below the liquid
// and leaves the tip first.
func (p *Pipette) Dispense(ctx context.Context, ul float64, loc labware.Location, opts ...Option) error {
	if err := p.requireTip("dispense"); err != nil {
		return err
	}
	if err := checkVolume("volume", ul); err != nil {
		return err
	}
	if ul > p.liquid+p.air+volumeTolerance {
		return errors.InvalidInput("volume", fmt.Sprintf("cannot dispense %.2f µL, tip holds %.2f µL", ul, p.liquid+p.air))
	}
	wells, err := p.channelWells(loc)
	if err != nil {
		return err
	}
	s := p.settings(opts)
	if err := p.ctrl.Dispense(ctx, p.mount, ul, loc, s.dispense()); err != nil {
		return errors.Hardware("dispense", err)
	}
	fromAir := ul
	if fromAir > p.air {
		fromAir = p.air
	}
	fromLiquid := ul - fromAir
	if fromLiquid > p.liquid {
		fromLiquid = p.liquid
	}
	p.air -= fromAir
	p.liquid -= fromLiquid
	for _, w := range wells {
		w.Add(fromLiquid)
	}
	if loc.Well != nil {
		p.lastWell = loc.Well
	}
	p.stats.Dispensed += fromLiquid
	return nil
}

// DispenseAll empties the tip into loc.
func (p *Pipette) DispenseAll(ctx context.Context, loc labware.Location, opts ...Option) error {
	if err := p.requireTip("dispense"); err != nil {
		return err
	}
	total := p.liquid + p.air
	if total <= 0 {
		return nil
	}
	return p.Dispense(ctx, total, loc, opts...)
}

// BlowOut expels whatever is left in the tip at loc.
func (p *Pipette) BlowOut(ctx context.Context, loc labware.Location, opts ...Option) error {
	if err := p.requireTip("blow out"); err != nil {
		return err
	}
	wells, err := p.channelWells(loc)
	if err != nil {
		return err
	}
	s := p.settings(opts)
	if err := p.ctrl.BlowOut(ctx, p.mount, loc, s.blowOut()); err != nil {
		return errors.Hardware("blow out", err)
	}
	for _, w := range wells {
		w.Add(p.liquid)
	}
	p.stats.Dispensed += p.liquid
	p.liquid, p.air = 0, 0
	return nil
}

// Mix aspirates and dispenses ul at loc reps times.
func (p *Pipette) Mix(ctx context.Context, reps int, ul float64, loc labware.Location, opts ...Option) error {
	if err := p.requireTip("mix"); err != nil {
		return err
	}
	if reps < 1 {
		return errors.InvalidInput("repetitions", "mix needs at least one repetition")
	}
	for i := 0; i < reps; i++ {
		if err := p.Aspirate(ctx, ul, loc, opts...); err != nil {
			return err
		}
		if err := p.Dispense(ctx, ul, loc, opts...); err != nil {
			return err
		}
	}
	return nil
}

// MoveTo moves the pipette to loc without touching the plunger.
func (p *Pipette) MoveTo(ctx context.Context, loc labware.Location, opts ...Option) error {
	s := p.settings(opts)
	if err := p.ctrl.MoveTo(ctx, p.mount, loc, s.move()); err != nil {
		return errors.Hardware("move to", err)
	}
	return nil
}
