package pipette

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/hardware/sim"
	"github.com/kbukum/liquidkit/labware"
)

type rig struct {
	sim   *sim.Simulator
	p     *Pipette
	water *labware.Labware
	plate *labware.Labware
	racks []*labware.Labware
}

func newRig(t *testing.T, model string, plateName string, racks ...string) *rig {
	t.Helper()
	reg := labware.NewRegistry()
	load := func(name string, slot int, label string) *labware.Labware {
		def, err := reg.Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		return labware.New(def, slot, label)
	}
	r := &rig{sim: sim.New()}
	r.water = load("agilent_1_reservoir_290ml", 8, "Water")
	r.plate = load(plateName, 6, "Destination")
	for i, name := range racks {
		r.racks = append(r.racks, load(name, 2+i, ""))
	}
	m, err := LookupModel(model)
	if err != nil {
		t.Fatal(err)
	}
	tips, err := NewTipTracker(m.Channels, r.racks...)
	if err != nil {
		t.Fatal(err)
	}
	r.p = New(Config{Model: m, Mount: hardware.MountRight}, r.sim, tips, nil)
	return r
}

func (r *rig) well(t *testing.T, lw *labware.Labware, name string) *labware.Well {
	t.Helper()
	w, err := lw.WellByName(name)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestTipStateMachine(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "corning_384_wellplate_112ul_flat", "opentrons_96_tiprack_300ul")

	if r.p.State() != Empty {
		t.Fatalf("expected initial state Empty, got %s", r.p.State())
	}
	if err := r.p.ReleaseTip(ctx, Drop); !errors.Is(err, errors.ErrCodeResourceState) {
		t.Errorf("release while empty: expected resource state error, got %v", err)
	}
	if err := r.p.AcquireTip(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.p.AcquireTip(ctx); !errors.Is(err, errors.ErrCodeResourceState) {
		t.Errorf("acquire twice: expected resource state error, got %v", err)
	}
	if r.p.State() != TipHeld || r.p.Tip().Name() != "A1" {
		t.Errorf("expected tip A1 held, got %s %v", r.p.State(), r.p.Tip())
	}
	if err := r.p.ReleaseTip(ctx, Drop); err != nil {
		t.Fatal(err)
	}
	if r.p.State() != Empty {
		t.Errorf("expected Empty after release, got %s", r.p.State())
	}
	if err := r.p.AcquireTip(ctx); err != nil {
		t.Fatal(err)
	}
	if r.p.Tip().Name() != "B1" {
		t.Errorf("expected second tip B1, got %s", r.p.Tip().Name())
	}
	if s := r.p.Stats(); s.PickUps != 2 || s.Drops != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestLiquidOpsRequireTip(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "corning_384_wellplate_112ul_flat", "opentrons_96_tiprack_300ul")
	src := r.well(t, r.water, "A1").Bottom(6)
	dst := r.well(t, r.plate, "B2").Top(-6)

	ops := map[string]func() error{
		"aspirate": func() error { return r.p.Aspirate(ctx, 10, src) },
		"dispense": func() error { return r.p.Dispense(ctx, 10, dst) },
		"blow out": func() error { return r.p.BlowOut(ctx, dst) },
		"mix":      func() error { return r.p.Mix(ctx, 2, 10, src) },
		"air gap":  func() error { return r.p.AirGap(ctx, 10) },
		"transfer": func() error { return r.p.Transfer(ctx, 10, src, dst, TransferOptions{}) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, errors.ErrCodeResourceState) {
				t.Errorf("expected resource state error, got %v", err)
			}
		})
	}
	if len(r.sim.Commands()) != 0 {
		t.Errorf("no commands should reach the robot, got %v", r.sim.Names())
	}
}

func TestAspirateDispenseTracking(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "corning_384_wellplate_112ul_flat", "opentrons_96_tiprack_300ul")
	water := r.well(t, r.water, "A1")
	b2 := r.well(t, r.plate, "B2")

	if err := r.p.AcquireTip(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.p.Aspirate(ctx, 50, water.Bottom(6), WithAspirateRate(50)); err != nil {
		t.Fatal(err)
	}
	if err := r.p.Aspirate(ctx, 300, water.Bottom(6)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected overfill rejected, got %v", err)
	}
	if err := r.p.Dispense(ctx, 60, b2.Top(-6)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected over-dispense rejected, got %v", err)
	}
	if err := r.p.Dispense(ctx, 50, b2.Top(-6), WithZSpeed(30)); err != nil {
		t.Fatal(err)
	}
	if water.Volume() != -50 || b2.Volume() != 50 {
		t.Errorf("expected -50/+50, got %v/%v", water.Volume(), b2.Volume())
	}

	cmds := r.sim.Commands()
	asp, disp := cmds[1], cmds[2]
	if asp.Motion.FlowRate != 50 {
		t.Errorf("expected aspirate rate option 50, got %v", asp.Motion.FlowRate)
	}
	if disp.Motion.FlowRate != 92.86 || disp.Motion.ZSpeed != 30 {
		t.Errorf("expected default dispense rate with z cap, got %+v", disp.Motion)
	}
	if err := r.p.Aspirate(ctx, 0, water.Bottom(6)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected zero volume rejected, got %v", err)
	}
	if err := r.p.Aspirate(ctx, 10, labware.Location{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected aspirate from trash rejected, got %v", err)
	}
}

func TestOptionsDoNotLeak(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "corning_384_wellplate_112ul_flat", "opentrons_96_tiprack_300ul")
	water := r.well(t, r.water, "A1")

	_ = r.p.AcquireTip(ctx)
	_ = r.p.Aspirate(ctx, 20, water.Bottom(1), WithFlowRates(200, 200), WithZSpeed(25), WithSpeed(200))
	_ = r.p.Aspirate(ctx, 20, water.Bottom(1))

	cmds := r.sim.Commands()
	first, second := cmds[1].Motion, cmds[2].Motion
	if first.FlowRate != 200 || first.ZSpeed != 25 || first.Speed != 200 {
		t.Errorf("unexpected first motion %+v", first)
	}
	if second.FlowRate != 92.86 || second.ZSpeed != 0 || second.Speed != 0 {
		t.Errorf("settings leaked into the next call: %+v", second)
	}
}

func TestTransferSplitsByCapacity(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "usascientific_96_wellplate_2.4ml_deep", "opentrons_96_tiprack_300ul")
	water := r.well(t, r.water, "A1")
	a1 := r.well(t, r.plate, "A1")

	_ = r.p.AcquireTip(ctx)
	err := r.p.Transfer(ctx, 500, water.Bottom(6), a1.Top(-6), TransferOptions{AirGap: 10, BlowOut: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.sim.Count(sim.CmdDispense); got != 2 {
		t.Errorf("expected 2 cycles, got %d dispenses", got)
	}
	// two liquid aspirates + two air gaps
	if got := r.sim.Count(sim.CmdAspirate); got != 4 {
		t.Errorf("expected 4 aspirates, got %d", got)
	}
	if got := r.sim.Count(sim.CmdBlowOut); got != 2 {
		t.Errorf("expected 2 blow-outs, got %d", got)
	}
	if math.Abs(a1.Volume()-500) > 1e-9 || math.Abs(water.Volume()+500) > 1e-9 {
		t.Errorf("expected 500 moved, got dest %v src %v", a1.Volume(), water.Volume())
	}
	for _, c := range r.sim.Commands() {
		if c.Name == sim.CmdDispense && c.Volume != 260 {
			t.Errorf("expected 250 liquid + 10 air per dispense, got %v", c.Volume)
		}
	}
	if liquid, air := r.p.Contents(); liquid != 0 || air != 0 {
		t.Errorf("expected empty tip, got %v/%v", liquid, air)
	}
}

func TestTransferAirGapTooLarge(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_multi_gen2", "nest_96_wellplate_100ul_pcr_full_skirt", "opentrons_96_filtertiprack_200ul")
	_ = r.p.AcquireTip(ctx)
	a1 := r.well(t, r.plate, "A1")
	err := r.p.Transfer(ctx, 50, a1.Bottom(1), labware.Location{}, TransferOptions{AirGap: 200})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if r.p.Capacity() != 200 {
		t.Errorf("expected filter tip capacity 200, got %v", r.p.Capacity())
	}
}

func TestMultiChannelTracking(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_multi_gen2", "nest_96_wellplate_100ul_pcr_full_skirt", "opentrons_96_tiprack_300ul")
	water := r.well(t, r.water, "A1")
	a4 := r.well(t, r.plate, "A4")
	h4 := r.well(t, r.plate, "H4")

	_ = r.p.AcquireTip(ctx)
	if err := r.p.Transfer(ctx, 50, water.Bottom(6), a4.Bottom(1), TransferOptions{}); err != nil {
		t.Fatal(err)
	}
	if a4.Volume() != 50 || h4.Volume() != 50 {
		t.Errorf("expected every channel to fill, got A4=%v H4=%v", a4.Volume(), h4.Volume())
	}
	if water.Volume() != -400 {
		t.Errorf("expected 8 channels drawn from the reservoir, got %v", water.Volume())
	}
	b4 := r.well(t, r.plate, "B4")
	if err := r.p.Aspirate(ctx, 10, b4.Bottom(1)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected row B rejected for 8 channels, got %v", err)
	}
}

func TestMix(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "nest_96_wellplate_100ul_pcr_full_skirt", "opentrons_96_tiprack_300ul")
	a1 := r.well(t, r.plate, "A1")
	_ = r.p.AcquireTip(ctx)

	if err := r.p.Mix(ctx, 0, 40, a1.Bottom(1)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid repetitions, got %v", err)
	}
	if err := r.p.Mix(ctx, 10, 40, a1.Bottom(1)); err != nil {
		t.Fatal(err)
	}
	if r.sim.Count(sim.CmdAspirate) != 10 || r.sim.Count(sim.CmdDispense) != 10 {
		t.Errorf("expected 10 cycles, got %v", r.sim.Names())
	}
	if a1.Volume() != 0 {
		t.Errorf("mixing should not change the well, got %v", a1.Volume())
	}
}

func TestWithTip(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "nest_96_wellplate_100ul_pcr_full_skirt", "opentrons_96_tiprack_300ul")

	err := r.p.WithTip(ctx, Return, func(ctx context.Context) error {
		if r.p.State() != TipHeld {
			t.Error("expected tip inside scope")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.p.State() != Empty || r.p.Stats().Returns != 1 {
		t.Errorf("expected tip returned, got %s %+v", r.p.State(), r.p.Stats())
	}

	boom := fmt.Errorf("boom")
	if err := r.p.WithTip(ctx, Drop, func(context.Context) error { return boom }); err != boom {
		t.Fatalf("expected fn error, got %v", err)
	}
	if r.p.State() != TipHeld {
		t.Error("tip should stay on after a failure")
	}
}

func TestHardwareFault(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, "p300_single_gen2", "nest_96_wellplate_100ul_pcr_full_skirt", "opentrons_96_tiprack_300ul")
	r.sim.FailOn(sim.CmdPickUpTip, 0, fmt.Errorf("tip not detected"))

	if err := r.p.AcquireTip(ctx); !errors.Is(err, errors.ErrCodeHardware) {
		t.Fatalf("expected hardware error, got %v", err)
	}
	if r.p.State() != Empty {
		t.Error("state should not change on a failed pick-up")
	}
	if err := r.p.AcquireTip(ctx); err != nil {
		t.Fatal(err)
	}
	if r.p.Tip().Name() != "A1" {
		t.Errorf("failed pick-up should not consume A1, got %s", r.p.Tip().Name())
	}
}

func TestSplitVolume(t *testing.T) {
	tests := []struct {
		volume, per float64
		want        int
	}{
		{50, 300, 1},
		{300, 300, 1},
		{301, 300, 2},
		{500, 290, 2},
		{900, 300, 3},
		{0, 300, 0},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%v/%v", tc.volume, tc.per), func(t *testing.T) {
			parts := SplitVolume(tc.volume, tc.per)
			if len(parts) != tc.want {
				t.Fatalf("expected %d parts, got %v", tc.want, parts)
			}
			sum := 0.0
			for _, p := range parts {
				sum += p
				if p > tc.per+volumeTolerance {
					t.Errorf("part %v exceeds %v", p, tc.per)
				}
			}
			if tc.want > 0 && math.Abs(sum-tc.volume) > 1e-9 {
				t.Errorf("parts sum to %v, want %v", sum, tc.volume)
			}
		})
	}
}

func TestParseModes(t *testing.T) {
	if m, err := ParseReleaseMode("return"); err != nil || m != Return {
		t.Errorf("expected Return, got %v %v", m, err)
	}
	if _, err := ParseReleaseMode("toss"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if b, err := ParseBlowOutTarget("trash"); err != nil || b != BlowOutTrash {
		t.Errorf("expected trash, got %v %v", b, err)
	}
	if _, err := LookupModel("p10_single"); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("expected lookup error, got %v", err)
	}
}
