package deck

import (
	"context"
	"testing"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/hardware/sim"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/pipette"
)

func cleanupLayout() Layout {
	return Layout{
		Modules: []ModuleSpec{
			{Name: "magnet", Model: hardware.MagneticModuleGen2, Slot: 1},
			{Name: "heater", Model: hardware.TemperatureModuleGen2, Slot: 10},
		},
		Labware: []LabwareSpec{
			{Name: "sample_plate", LoadName: "nest_96_wellplate_100ul_pcr_full_skirt", Module: "magnet"},
			{Name: "output_plate", LoadName: "nest_96_wellplate_100ul_pcr_full_skirt", Slot: 2},
			{Name: "tips_1", LoadName: "opentrons_96_tiprack_300ul", Slot: 3},
			{Name: "tips_2", LoadName: "opentrons_96_tiprack_300ul", Slot: 4},
			{Name: "reagents", LoadName: "usascientific_12_reservoir_22ml", Slot: 7},
		},
		Pipettes: []PipetteSpec{
			{Name: "p300", Model: "p300_multi_gen2", Mount: hardware.MountLeft, TipRacks: []string{"tips_1", "tips_2"},
				Defaults: pipette.Settings{ZSpeed: 25}},
		},
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := sim.New()
	d, err := Load(ctx, s, labware.NewRegistry(), cleanupLayout(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	plate, err := d.Labware("sample_plate")
	if err != nil {
		t.Fatalf("Labware: %v", err)
	}
	if plate.Slot() != 1 {
		t.Errorf("labware on a module should take its slot, got %d", plate.Slot())
	}
	p, err := d.Pipette("p300")
	if err != nil {
		t.Fatalf("Pipette: %v", err)
	}
	if p.Model().Channels != 8 || p.Tips().Racks() != 2 {
		t.Errorf("unexpected pipette %s with %d racks", p.Model().Name, p.Tips().Racks())
	}
	if _, err := d.Magnet("magnet"); err != nil {
		t.Errorf("Magnet: %v", err)
	}
	if _, err := d.Temperature("heater"); err != nil {
		t.Errorf("Temperature: %v", err)
	}
	if len(d.Components()) != 2 {
		t.Errorf("expected 2 module components, got %d", len(d.Components()))
	}

	want := []string{sim.CmdLoadModule, sim.CmdLoadModule,
		sim.CmdLoadLabware, sim.CmdLoadLabware, sim.CmdLoadLabware, sim.CmdLoadLabware, sim.CmdLoadLabware,
		sim.CmdLoadInstrument}
	got := s.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("command %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLookups(t *testing.T) {
	d, err := Load(context.Background(), sim.New(), nil, cleanupLayout(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := d.Labware("nope"); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("expected LOOKUP_ERROR, got %v", err)
	}
	if _, err := d.Pipette("p20"); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("expected LOOKUP_ERROR, got %v", err)
	}
	if _, err := d.Magnet("heater"); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("expected LOOKUP_ERROR, got %v", err)
	}
	names := d.LabwareNames()
	if len(names) != 5 || names[0] != "output_plate" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{"duplicate slot", func(l *Layout) { l.Labware[1].Slot = 3 }},
		{"labware on module slot", func(l *Layout) { l.Labware[1].Slot = 1 }},
		{"slot out of range", func(l *Layout) { l.Labware[1].Slot = 12 }},
		{"missing slot", func(l *Layout) { l.Labware[1].Slot = 0 }},
		{"unknown load name", func(l *Layout) { l.Labware[1].LoadName = "mystery_plate" }},
		{"unknown module reference", func(l *Layout) { l.Labware[0].Module = "shaker" }},
		{"module slot mismatch", func(l *Layout) { l.Labware[0].Slot = 5 }},
		{"tip rack not on deck", func(l *Layout) { l.Pipettes[0].TipRacks = []string{"tips_9"} }},
		{"tip rack is a plate", func(l *Layout) { l.Pipettes[0].TipRacks = []string{"output_plate"} }},
		{"unknown pipette model", func(l *Layout) { l.Pipettes[0].Model = "p5000_single" }},
		{"bad mount", func(l *Layout) { l.Pipettes[0].Mount = "middle" }},
		{"no tip racks", func(l *Layout) { l.Pipettes[0].TipRacks = nil }},
		{"duplicate name", func(l *Layout) { l.Labware[2].Name = "magnet" }},
		{"no pipettes", func(l *Layout) { l.Pipettes = nil }},
		{"unknown module model", func(l *Layout) { l.Modules[0].Model = "thermocycler" }},
		{"same mount twice", func(l *Layout) {
			l.Pipettes = append(l.Pipettes, PipetteSpec{Name: "p20", Model: "p20_single_gen2", Mount: hardware.MountLeft, TipRacks: []string{"tips_2"}})
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := cleanupLayout()
			tc.mutate(&l)
			s := sim.New()
			_, err := Load(context.Background(), s, labware.NewRegistry(), l, nil)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if n := len(s.Commands()); n != 0 {
				t.Errorf("expected no commands for an invalid layout, got %d", n)
			}
		})
	}
}

func TestParseLayout(t *testing.T) {
	data := []byte(`
labware:
  - name: reservoir
    load_name: agilent_1_reservoir_290ml
    slot: 8
  - name: tips
    load_name: opentrons_96_tiprack_300ul
    slot: 2
pipettes:
  - name: p300
    model: p300_single_gen2
    mount: right
    tip_racks: [tips]
    defaults:
      z_speed: 30
      speed: 200
`)
	l, err := ParseLayout(data)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if err := l.Validate(labware.NewRegistry()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if l.Pipettes[0].Defaults.ZSpeed != 30 || l.Pipettes[0].Defaults.Speed != 200 {
		t.Errorf("unexpected defaults %+v", l.Pipettes[0].Defaults)
	}
	if _, err := ParseLayout([]byte("labware: [")); err == nil {
		t.Error("expected YAML error")
	}
}
