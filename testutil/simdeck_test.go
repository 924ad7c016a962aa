package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/liquidkit/component"
	"github.com/kbukum/liquidkit/hardware/sim"
)

func TestSimDeckLifecycle(t *testing.T) {
	d := NewSimDeck(SingleChannelLayout())
	if h := d.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	T(t).Setup(d)

	if h := d.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", h.Status)
	}
	if n := d.Sim.Count(sim.CmdLoadLabware); n != 4 {
		t.Errorf("expected 4 labware loads, got %d", n)
	}
	if p := d.MustPipette(t, "p300"); p.Model().Channels != 1 {
		t.Errorf("unexpected pipette %s", p.Model().Name)
	}
}

func TestSimDeckSnapshotRestore(t *testing.T) {
	d := NewSimDeck(SingleChannelLayout())
	h := T(t)
	h.Setup(d)

	src := d.MustWell(t, "water", "A1")
	src.Add(1000)
	snap := h.Snapshot(d)

	src.Remove(300)
	d.MustWell(t, "plate_96", "B2").Add(300)

	h.Restore(d, snap)
	if src.Volume() != 1000 {
		t.Errorf("expected source restored to 1000, got %v", src.Volume())
	}
	if v := d.MustWell(t, "plate_96", "B2").Volume(); v != 0 {
		t.Errorf("expected destination restored to 0, got %v", v)
	}

	if err := d.Restore(context.Background(), "bogus"); err == nil {
		t.Error("expected error for foreign snapshot")
	}
}

func TestSimDeckReset(t *testing.T) {
	d := NewSimDeck(MultiChannelLayout())
	h := T(t)
	h.Setup(d)

	p := d.MustPipette(t, "p300")
	if err := p.AcquireTip(context.Background()); err != nil {
		t.Fatalf("AcquireTip: %v", err)
	}
	h.Reset(d)

	if p2 := d.MustPipette(t, "p300"); p2 == p || p2.Tips().Remaining() != 12 {
		t.Errorf("expected a fresh pipette with 12 tip columns, got %d", p2.Tips().Remaining())
	}
	if n := d.Sim.Count(sim.CmdPickUpTip); n != 0 {
		t.Errorf("expected cleared command log, got %d pick-ups", n)
	}
}
