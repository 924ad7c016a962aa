package cleanup

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kbukum/liquidkit/deck"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/protocol"
)

// Protocol names.
const (
	PlateName = "pcr-cleanup"
	StripName = "pcr-cleanup-8"
)

const (
	pcrPlateLoad  = "nest_96_wellplate_100ul_pcr_full_skirt"
	reservoirLoad = "usascientific_12_reservoir_22ml"
	bulkLoad      = "agilent_1_reservoir_290ml"
	pipetteName   = "p300"
	pipetteModel  = "p300_multi_gen2"
)

// Register adds both clean-up variants to r.
func Register(r *protocol.Registry) {
	r.Register(PlateName, "magnetic-bead PCR clean-up of whole 96-well plate columns", factory(Plate))
	r.Register(StripName, "magnetic-bead PCR clean-up of selected columns, beads added by hand", factory(Strip))
}

func factory(v Variant) protocol.Factory {
	return func(decode protocol.Decoder) (protocol.Protocol, error) {
		cfg := Config{Variant: v}
		if err := protocol.Configure(&cfg, decode); err != nil {
			return nil, err
		}
		return New(cfg)
	}
}

// Cleanup is the clean-up protocol for one configuration.
type Cleanup struct {
	cfg Config
}

// New returns the clean-up for a validated cfg.
func New(cfg Config) (*Cleanup, error) {
	if len(cfg.OutputColumns) > 0 && len(cfg.OutputColumns) != cfg.ColumnCount() {
		return nil, errors.InvalidInput("output_columns",
			fmt.Sprintf("%d output columns for %d sample columns", len(cfg.OutputColumns), cfg.ColumnCount()))
	}
	if err := cfg.checkCapacity(builtinCapacity(cfg.TipRack)); err != nil {
		return nil, err
	}
	return &Cleanup{cfg: cfg}, nil
}

// builtinCapacity is the tip capacity when tipRack is a built-in
// definition. Custom racks are only known once the deck is loaded, so
// Plan checks again against the loaded pipette.
func builtinCapacity(tipRack string) float64 {
	model, err := pipette.LookupModel(pipetteModel)
	if err != nil {
		return math.Inf(1)
	}
	capacity := model.MaxVolume
	if def, err := labware.NewRegistry().Lookup(tipRack); err == nil && def.MaxVolume < capacity {
		capacity = def.MaxVolume
	}
	return capacity
}

func (c *Cleanup) Name() string {
	if c.cfg.Variant == Strip {
		return StripName
	}
	return PlateName
}

func (c *Cleanup) Parameters() any { return c.cfg }

func (c *Cleanup) Layout() deck.Layout {
	l := deck.Layout{
		Modules: []deck.ModuleSpec{
			{Name: "magnet", Model: hardware.MagneticModuleGen2, Slot: 1},
			{Name: "heater", Model: hardware.TemperatureModuleGen2, Slot: 10},
		},
		Labware: []deck.LabwareSpec{
			{Name: "samples", LoadName: pcrPlateLoad, Module: "magnet"},
			{Name: "output", LoadName: pcrPlateLoad, Slot: 2, Label: "Output"},
			{Name: "reagents", LoadName: reservoirLoad, Slot: 7, Label: "reagent reservoir"},
			{Name: "waste", LoadName: bulkLoad, Slot: 8, Label: "Liquid Waste"},
		},
	}
	if c.cfg.Variant == Plate {
		l.Labware = append(l.Labware, deck.LabwareSpec{Name: "ethanol", LoadName: bulkLoad, Slot: 9, Label: "Ethanol reservoir"})
	}
	racks := make([]string, len(c.cfg.TipRackSlots))
	for i, slot := range c.cfg.TipRackSlots {
		racks[i] = fmt.Sprintf("tips_%d", i+1)
		l.Labware = append(l.Labware, deck.LabwareSpec{Name: racks[i], LoadName: c.cfg.TipRack, Slot: slot})
	}
	l.Pipettes = []deck.PipetteSpec{{
		Name:     pipetteName,
		Model:    pipetteModel,
		Mount:    hardware.MountLeft,
		TipRacks: racks,
	}}
	return l
}

// bench is the loaded deck as the phases see it.
type bench struct {
	cfg     Config
	vol     Volumes
	p       *pipette.Pipette
	magnet  *hardware.MagneticModule
	heater  *hardware.TemperatureModule
	reagent *labware.Labware
	waste   *labware.Well
	ethanol *labware.Well
	samples []*labware.Well
	outputs []*labware.Well
	z       pipette.Option
}

func (c *Cleanup) Plan(d *deck.Deck) ([]protocol.Phase, error) {
	b, err := c.bind(d)
	if err != nil {
		return nil, err
	}
	if c.cfg.Variant == Strip {
		return b.stripPhases()
	}
	return b.platePhases()
}

func (c *Cleanup) bind(d *deck.Deck) (*bench, error) {
	b := &bench{cfg: c.cfg, vol: c.cfg.Volumes(), z: pipette.WithZSpeed(c.cfg.ZSpeed)}
	var err error
	if b.p, err = d.Pipette(pipetteName); err != nil {
		return nil, err
	}
	if err := c.cfg.checkCapacity(b.p.Capacity()); err != nil {
		return nil, err
	}
	if b.magnet, err = d.Magnet("magnet"); err != nil {
		return nil, err
	}
	if b.heater, err = d.Temperature("heater"); err != nil {
		return nil, err
	}
	if b.reagent, err = d.Labware("reagents"); err != nil {
		return nil, err
	}
	waste, err := d.Labware("waste")
	if err != nil {
		return nil, err
	}
	b.waste = waste.Wells()[0]

	samples, err := d.Labware("samples")
	if err != nil {
		return nil, err
	}
	output, err := d.Labware("output")
	if err != nil {
		return nil, err
	}
	if b.samples, err = columns(samples, c.cfg.Columns, c.cfg.ColumnCount()); err != nil {
		return nil, err
	}
	outNames := c.cfg.OutputColumns
	if len(outNames) == 0 {
		outNames = c.cfg.Columns
	}
	if b.outputs, err = columns(output, outNames, c.cfg.ColumnCount()); err != nil {
		return nil, err
	}

	if c.cfg.Variant == Plate {
		ethanol, err := d.Labware("ethanol")
		if err != nil {
			return nil, err
		}
		b.ethanol = ethanol.Wells()[0]
	} else if b.ethanol, err = b.reagent.WellByName("A5"); err != nil {
		return nil, err
	}
	return b, nil
}

// columns returns the named column heads of lw, or its first n columns.
func columns(lw *labware.Labware, names []string, n int) ([]*labware.Well, error) {
	if len(names) == 0 {
		heads := lw.Row(0)
		if n > len(heads) {
			return nil, errors.InvalidInput("samples", fmt.Sprintf("%d columns do not fit on %s", n, lw.Name()))
		}
		return heads[:n], nil
	}
	wells := make([]*labware.Well, len(names))
	for i, name := range names {
		w, err := lw.WellByName(name)
		if err != nil {
			return nil, err
		}
		if w.Row() != 0 {
			return nil, errors.InvalidInput("columns", fmt.Sprintf("%s is not the head of a column", name))
		}
		wells[i] = w
	}
	return wells, nil
}

// startTips makes returned tips available again and begins the search at
// the first tip of rack, or of the last rack when there are fewer.
func (b *bench) startTips(rack int) error {
	tips := b.p.Tips()
	tips.Reset()
	if rack >= tips.Racks() {
		rack = tips.Racks() - 1
	}
	return tips.StartAt(rack, "A1")
}

// engage raises the magnet and waits for the beads to settle.
func (b *bench) engage(ctx context.Context, s *protocol.Session, settle time.Duration) error {
	if err := b.magnet.Engage(ctx); err != nil {
		return err
	}
	if err := s.Comment(ctx, fmt.Sprintf("Magnetic module on for %.0f minutes", settle.Minutes())); err != nil {
		return err
	}
	return s.Delay(ctx, settle)
}

func (b *bench) shutdown(ctx context.Context, s *protocol.Session) error {
	if err := b.magnet.Disengage(ctx); err != nil {
		return err
	}
	if err := b.heater.Deactivate(ctx); err != nil {
		return err
	}
	if err := s.Home(ctx); err != nil {
		return err
	}
	return s.Comment(ctx, "Finished")
}

func (b *bench) prepare(ctx context.Context, _ *protocol.Session) error {
	if err := b.magnet.Disengage(ctx); err != nil {
		return err
	}
	return b.heater.SetTemperature(ctx, b.cfg.Temperature)
}
