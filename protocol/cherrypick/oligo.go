package cherrypick

import (
	"context"
	"fmt"

	"github.com/kbukum/liquidkit/deck"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/picklist"
	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/protocol"
	"github.com/kbukum/liquidkit/sequencer"
)

// Deck names shared by both protocols.
const (
	pipetteName = "p300"
	tipRackLoad = "opentrons_96_tiprack_300ul"
	waterLoad   = "agilent_1_reservoir_290ml"
)

// Plate is a destination plate and the pick-list that fills it.
type Plate struct {
	Name     string `yaml:"name" mapstructure:"name" validate:"required"`
	LoadName string `yaml:"load_name" mapstructure:"load_name" validate:"required"`
	Slot     int    `yaml:"slot" mapstructure:"slot" validate:"slot"`
	PickList string `yaml:"picklist" mapstructure:"picklist" validate:"required"`
}

// OligoConfig parameterises oligo-dilution. Zero fields take the defaults.
type OligoConfig struct {
	Plates []Plate `yaml:"plates" mapstructure:"plates" validate:"min=1,dive"`
	// WaterSlot holds the single-well water reservoir.
	WaterSlot int `yaml:"water_slot" mapstructure:"water_slot" validate:"slot"`
	// SourceHeight is how far above the reservoir bottom water is drawn, in mm.
	SourceHeight float64 `yaml:"source_height" mapstructure:"source_height" validate:"gt=0"`
	// DispenseDepth is how far below the well top water is dispensed, in mm.
	DispenseDepth float64 `yaml:"dispense_depth" mapstructure:"dispense_depth" validate:"gt=0"`
	ZSpeed        float64 `yaml:"z_speed" mapstructure:"z_speed" validate:"gt=0"`
	Speed         float64 `yaml:"speed" mapstructure:"speed" validate:"gt=0"`
	TipRackSlots  []int   `yaml:"tip_rack_slots" mapstructure:"tip_rack_slots" validate:"min=1,dive,slot"`
	Mount         string  `yaml:"mount" mapstructure:"mount" validate:"oneof=left right"`
}

// ApplyDefaults fills zero fields with the standard two-plate setup.
func (c *OligoConfig) ApplyDefaults() {
	if len(c.Plates) == 0 {
		c.Plates = []Plate{
			{Name: "oligos_1", LoadName: "usascientific_96_wellplate_2.4ml_deep", Slot: 5, PickList: "Picklist_Oligos_1.csv"},
			{Name: "oligos_2", LoadName: "corning_384_wellplate_112ul_flat", Slot: 6, PickList: "Picklist_Oligos_2.csv"},
		}
	}
	if c.WaterSlot == 0 {
		c.WaterSlot = 8
	}
	if c.SourceHeight == 0 {
		c.SourceHeight = 6
	}
	if c.DispenseDepth == 0 {
		c.DispenseDepth = 6
	}
	if c.ZSpeed == 0 {
		c.ZSpeed = 30
	}
	if c.Speed == 0 {
		c.Speed = 200
	}
	if len(c.TipRackSlots) == 0 {
		c.TipRackSlots = []int{2, 3, 4}
	}
	if c.Mount == "" {
		c.Mount = string(hardware.MountRight)
	}
}

// OligoDilution dispenses water into each plate following its pick-list,
// with one tip per plate.
type OligoDilution struct {
	cfg OligoConfig
}

// NewOligoDilution returns the protocol for a validated cfg.
func NewOligoDilution(cfg OligoConfig) *OligoDilution {
	return &OligoDilution{cfg: cfg}
}

func (o *OligoDilution) Name() string    { return OligoDilutionName }
func (o *OligoDilution) Parameters() any { return o.cfg }

func (o *OligoDilution) Layout() deck.Layout {
	l := deck.Layout{
		Labware: []deck.LabwareSpec{{Name: "water", LoadName: waterLoad, Slot: o.cfg.WaterSlot, Label: "Source"}},
	}
	for _, p := range o.cfg.Plates {
		l.Labware = append(l.Labware, deck.LabwareSpec{Name: p.Name, LoadName: p.LoadName, Slot: p.Slot})
	}
	racks := tipRacks(&l, o.cfg.TipRackSlots)
	l.Pipettes = []deck.PipetteSpec{{
		Name:     pipetteName,
		Model:    "p300_single_gen2",
		Mount:    hardware.Mount(o.cfg.Mount),
		TipRacks: racks,
		Defaults: pipette.Settings{Speed: o.cfg.Speed},
	}}
	return l
}

func (o *OligoDilution) Plan(d *deck.Deck) ([]protocol.Phase, error) {
	water, err := d.Labware("water")
	if err != nil {
		return nil, err
	}
	p, err := d.Pipette(pipetteName)
	if err != nil {
		return nil, err
	}
	source := water.Wells()[0].Bottom(o.cfg.SourceHeight)

	phases := make([]protocol.Phase, 0, len(o.cfg.Plates))
	for _, plate := range o.cfg.Plates {
		lw, err := d.Labware(plate.Name)
		if err != nil {
			return nil, err
		}
		file := plate.PickList
		phases = append(phases, protocol.Phase{
			Name: "dilute " + plate.Name,
			Run: func(ctx context.Context, s *protocol.Session) error {
				list, err := s.PickList(ctx, file, picklist.Options{TipPolicy: picklist.Reuse})
				if err != nil {
					return err
				}
				return s.Execute(ctx, list, p, sequencer.Route{
					Source:      sequencer.FixedEndpoint(source),
					Destination: sequencer.WellEndpoint(lw, labware.Top, -o.cfg.DispenseDepth),
				}, sequencer.Policy{
					Release:  pipette.Drop,
					Settings: []pipette.Option{pipette.WithZSpeed(o.cfg.ZSpeed)},
				})
			},
		})
	}
	return phases, nil
}

// tipRacks adds one tip rack per slot to l and returns their names.
func tipRacks(l *deck.Layout, slots []int) []string {
	names := make([]string, len(slots))
	for i, slot := range slots {
		names[i] = fmt.Sprintf("tips_%d", i+1)
		l.Labware = append(l.Labware, deck.LabwareSpec{Name: names[i], LoadName: tipRackLoad, Slot: slot})
	}
	return names
}
