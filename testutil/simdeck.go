package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/liquidkit/component"
	"github.com/kbukum/liquidkit/deck"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/hardware/sim"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/pipette"
)

// SimDeck is a layout loaded onto a simulator.
type SimDeck struct {
	Layout   deck.Layout
	Registry *labware.Registry
	Sim      *sim.Simulator
	Deck     *deck.Deck
}

var _ TestComponent = (*SimDeck)(nil)

// NewSimDeck returns an unstarted SimDeck for layout.
func NewSimDeck(layout deck.Layout, opts ...sim.Option) *SimDeck {
	return &SimDeck{
		Layout:   layout,
		Registry: labware.NewRegistry(),
		Sim:      sim.New(opts...),
	}
}

// Name returns the component name.
func (d *SimDeck) Name() string { return "simdeck" }

// Start loads the layout onto the simulator.
func (d *SimDeck) Start(ctx context.Context) error {
	dk, err := deck.Load(ctx, d.Sim, d.Registry, d.Layout, nil)
	if err != nil {
		return err
	}
	d.Deck = dk
	return nil
}

// Stop drops the loaded deck.
func (d *SimDeck) Stop(_ context.Context) error {
	d.Deck = nil
	return nil
}

// Health reports whether the deck is loaded.
func (d *SimDeck) Health(_ context.Context) component.Health {
	if d.Deck == nil {
		return component.Health{Name: d.Name(), Status: component.StatusUnhealthy, Message: "not loaded"}
	}
	return component.Health{Name: d.Name(), Status: component.StatusHealthy}
}

// Reset clears the simulator and loads a fresh deck: full tip racks, empty wells.
func (d *SimDeck) Reset(ctx context.Context) error {
	d.Sim.Reset()
	return d.Start(ctx)
}

// WellVolumes maps "labware/well" to the tracked volume of every non-empty well.
type WellVolumes map[string]float64

// Snapshot captures the tracked volume of every well.
func (d *SimDeck) Snapshot(_ context.Context) (interface{}, error) {
	if d.Deck == nil {
		return nil, fmt.Errorf("simdeck: not started")
	}
	out := WellVolumes{}
	for _, name := range d.Deck.LabwareNames() {
		lw, _ := d.Deck.Labware(name)
		for _, w := range lw.Wells() {
			if v := w.Volume(); v != 0 {
				out[name+"/"+w.Name()] = v
			}
		}
	}
	return out, nil
}

// Restore sets every well back to the volume captured by Snapshot.
func (d *SimDeck) Restore(_ context.Context, snapshot interface{}) error {
	vols, ok := snapshot.(WellVolumes)
	if !ok {
		return fmt.Errorf("simdeck: unexpected snapshot %T", snapshot)
	}
	if d.Deck == nil {
		return fmt.Errorf("simdeck: not started")
	}
	for _, name := range d.Deck.LabwareNames() {
		lw, _ := d.Deck.Labware(name)
		for _, w := range lw.Wells() {
			w.Add(vols[name+"/"+w.Name()] - w.Volume())
		}
	}
	return nil
}

// MustLabware returns the named labware or fails the test.
func (d *SimDeck) MustLabware(t testing.TB, name string) *labware.Labware {
	t.Helper()
	lw, err := d.Deck.Labware(name)
	if err != nil {
		t.Fatalf("labware %s: %v", name, err)
	}
	return lw
}

// MustWell returns the named well of the named labware or fails the test.
func (d *SimDeck) MustWell(t testing.TB, lw, well string) *labware.Well {
	t.Helper()
	w, err := d.MustLabware(t, lw).WellByName(well)
	if err != nil {
		t.Fatalf("well %s of %s: %v", well, lw, err)
	}
	return w
}

// MustPipette returns the named pipette or fails the test.
func (d *SimDeck) MustPipette(t testing.TB, name string) *pipette.Pipette {
	t.Helper()
	p, err := d.Deck.Pipette(name)
	if err != nil {
		t.Fatalf("pipette %s: %v", name, err)
	}
	return p
}

// SingleChannelLayout is a p300 single-channel deck: a water reservoir in
// slot 8, a 96 deep-well plate in slot 5, a 384 plate in slot 6 and one
// 300 µL tip rack in slot 2.
func SingleChannelLayout() deck.Layout {
	return deck.Layout{
		Labware: []deck.LabwareSpec{
			{Name: "water", LoadName: "agilent_1_reservoir_290ml", Slot: 8},
			{Name: "plate_96", LoadName: "usascientific_96_wellplate_2.4ml_deep", Slot: 5},
			{Name: "plate_384", LoadName: "corning_384_wellplate_112ul_flat", Slot: 6},
			{Name: "tips", LoadName: "opentrons_96_tiprack_300ul", Slot: 2},
		},
		Pipettes: []deck.PipetteSpec{
			{Name: "p300", Model: "p300_single_gen2", Mount: hardware.MountRight, TipRacks: []string{"tips"}},
		},
	}
}

// MultiChannelLayout is a p300 8-channel deck: a 12-well reservoir in slot
// 7, a PCR plate in slot 2 and one 300 µL tip rack in slot 3.
func MultiChannelLayout() deck.Layout {
	return deck.Layout{
		Labware: []deck.LabwareSpec{
			{Name: "reagents", LoadName: "usascientific_12_reservoir_22ml", Slot: 7},
			{Name: "plate", LoadName: "nest_96_wellplate_100ul_pcr_full_skirt", Slot: 2},
			{Name: "tips", LoadName: "opentrons_96_tiprack_300ul", Slot: 3},
		},
		Pipettes: []deck.PipetteSpec{
			{Name: "p300", Model: "p300_multi_gen2", Mount: hardware.MountLeft, TipRacks: []string{"tips"}},
		},
	}
}
