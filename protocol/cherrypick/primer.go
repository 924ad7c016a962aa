package cherrypick

import (
	"context"

	"github.com/kbukum/liquidkit/deck"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/picklist"
	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/protocol"
	"github.com/kbukum/liquidkit/sequencer"
)

const plate384Load = "corning_384_wellplate_112ul_flat"

// PrimerConfig parameterises primer-dilution. Zero fields take the defaults.
type PrimerConfig struct {
	PickList    string  `yaml:"picklist" mapstructure:"picklist" validate:"required"`
	WaterVolume float64 `yaml:"water_volume" mapstructure:"water_volume" validate:"gt=0"`
	// PrimerVolume is the primer added to every destination after the water.
	PrimerVolume float64  `yaml:"primer_volume" mapstructure:"primer_volume" validate:"gt=0"`
	// AirGap defaults to 10 µL when unset. 0 disables it.
	AirGap       *float64 `yaml:"air_gap" mapstructure:"air_gap" validate:"omitempty,gte=0"`
	// Heights above the well bottom, in mm.
	WaterSourceHeight float64 `yaml:"water_source_height" mapstructure:"water_source_height" validate:"gt=0"`
	WaterDestHeight   float64 `yaml:"water_dest_height" mapstructure:"water_dest_height" validate:"gt=0"`
	PrimerHeight      float64 `yaml:"primer_height" mapstructure:"primer_height" validate:"gt=0"`

	ZSpeed       float64 `yaml:"z_speed" mapstructure:"z_speed" validate:"gt=0"`
	Speed        float64 `yaml:"speed" mapstructure:"speed" validate:"gt=0"`
	PauseMessage string  `yaml:"pause_message" mapstructure:"pause_message" validate:"required"`

	WaterSlot       int    `yaml:"water_slot" mapstructure:"water_slot" validate:"slot"`
	PrimerSlot      int    `yaml:"primer_slot" mapstructure:"primer_slot" validate:"slot"`
	DestinationSlot int    `yaml:"destination_slot" mapstructure:"destination_slot" validate:"slot"`
	TipRackSlots    []int  `yaml:"tip_rack_slots" mapstructure:"tip_rack_slots" validate:"min=1,dive,slot"`
	Mount           string `yaml:"mount" mapstructure:"mount" validate:"oneof=left right"`
}

// ApplyDefaults fills zero fields.
func (c *PrimerConfig) ApplyDefaults() {
	if c.PickList == "" {
		c.PickList = "Picklist_primer_dilution.csv"
	}
	if c.WaterVolume == 0 {
		c.WaterVolume = 54
	}
	if c.PrimerVolume == 0 {
		c.PrimerVolume = 6
	}
	if c.AirGap == nil {
		gap := 10.0
		c.AirGap = &gap
	}
	if c.WaterSourceHeight == 0 {
		c.WaterSourceHeight = 5
	}
	if c.WaterDestHeight == 0 {
		c.WaterDestHeight = 4
	}
	if c.PrimerHeight == 0 {
		c.PrimerHeight = 2
	}
	if c.ZSpeed == 0 {
		c.ZSpeed = 30
	}
	if c.Speed == 0 {
		c.Speed = 200
	}
	if c.PauseMessage == "" {
		c.PauseMessage = "Centrifuge the corning 384 well plate"
	}
	if c.WaterSlot == 0 {
		c.WaterSlot = 8
	}
	if c.PrimerSlot == 0 {
		c.PrimerSlot = 5
	}
	if c.DestinationSlot == 0 {
		c.DestinationSlot = 6
	}
	if len(c.TipRackSlots) == 0 {
		c.TipRackSlots = []int{2, 3, 4}
	}
	if c.Mount == "" {
		c.Mount = string(hardware.MountRight)
	}
}

// PrimerDilution fills every destination with water using one tip, waits
// for the plate to be centrifuged, then adds primer from the matching
// source well with a fresh tip per row.
type PrimerDilution struct {
	cfg PrimerConfig
}

// NewPrimerDilution returns the protocol for a validated cfg.
func NewPrimerDilution(cfg PrimerConfig) *PrimerDilution {
	return &PrimerDilution{cfg: cfg}
}

func (pd *PrimerDilution) Name() string    { return PrimerDilutionName }
func (pd *PrimerDilution) Parameters() any { return pd.cfg }

func (pd *PrimerDilution) Layout() deck.Layout {
	l := deck.Layout{
		Labware: []deck.LabwareSpec{
			{Name: "water", LoadName: waterLoad, Slot: pd.cfg.WaterSlot, Label: "Water"},
			{Name: "primers", LoadName: plate384Load, Slot: pd.cfg.PrimerSlot, Label: "Primers"},
			{Name: "destination", LoadName: plate384Load, Slot: pd.cfg.DestinationSlot, Label: "Destination"},
		},
	}
	racks := tipRacks(&l, pd.cfg.TipRackSlots)
	l.Pipettes = []deck.PipetteSpec{{
		Name:     pipetteName,
		Model:    "p300_single_gen2",
		Mount:    hardware.Mount(pd.cfg.Mount),
		TipRacks: racks,
		Defaults: pipette.Settings{Speed: pd.cfg.Speed},
	}}
	return l
}

func (pd *PrimerDilution) Plan(d *deck.Deck) ([]protocol.Phase, error) {
	water, err := d.Labware("water")
	if err != nil {
		return nil, err
	}
	primers, err := d.Labware("primers")
	if err != nil {
		return nil, err
	}
	dest, err := d.Labware("destination")
	if err != nil {
		return nil, err
	}
	p, err := d.Pipette(pipetteName)
	if err != nil {
		return nil, err
	}
	motion := []pipette.Option{pipette.WithZSpeed(pd.cfg.ZSpeed)}
	var list *picklist.PickList

	return []protocol.Phase{
		{
			// Both batches use the same rows, so the list is read once and
			// checked for source wells before any water moves.
			Name: "load pick-list",
			Run: func(ctx context.Context, s *protocol.Session) error {
				var err error
				list, err = s.PickList(ctx, pd.cfg.PickList, picklist.Options{
					FixedVolume:   pd.cfg.WaterVolume,
					RequireSource: true,
				})
				return err
			},
		},
		{
			Name: "add water",
			Run: func(ctx context.Context, s *protocol.Session) error {
				return s.Execute(ctx, list, p, sequencer.Route{
					Source:      sequencer.FixedEndpoint(water.Wells()[0].Bottom(pd.cfg.WaterSourceHeight)),
					Destination: sequencer.WellEndpoint(dest, labware.Bottom, pd.cfg.WaterDestHeight),
				}, sequencer.Policy{
					Tips:     picklist.Reuse,
					Release:  pipette.Drop,
					Settings: motion,
				})
			},
		},
		{
			Name: "centrifuge",
			Run: func(ctx context.Context, s *protocol.Session) error {
				return s.Pause(ctx, pd.cfg.PauseMessage)
			},
		},
		{
			Name: "add primer",
			Run: func(ctx context.Context, s *protocol.Session) error {
				return s.Execute(ctx, list, p, sequencer.Route{
					Source:      sequencer.WellEndpoint(primers, labware.Bottom, pd.cfg.PrimerHeight),
					Destination: sequencer.WellEndpoint(dest, labware.Bottom, pd.cfg.PrimerHeight),
				}, sequencer.Policy{
					Tips:    picklist.AlwaysNew,
					Release: pipette.Drop,
					Volume:  pd.cfg.PrimerVolume,
					Transfer: pipette.TransferOptions{
						AirGap:    *pd.cfg.AirGap,
						BlowOut:   true,
						BlowOutAt: pipette.BlowOutDestination,
					},
					Settings: motion,
				})
			},
		},
	}, nil
}
