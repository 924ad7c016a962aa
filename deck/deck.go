package deck

import (
	"context"
	"sort"

	"github.com/kbukum/liquidkit/component"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/logger"
	"github.com/kbukum/liquidkit/pipette"
)

// Deck is a loaded layout: named labware, modules and pipettes bound to a
// controller.
type Deck struct {
	layout      Layout
	labware     map[string]*labware.Labware
	pipettes    map[string]*pipette.Pipette
	magnets     map[string]*hardware.MagneticModule
	thermo      map[string]*hardware.TemperatureModule
	moduleOrder []component.Component
}

// Load validates layout and then loads it onto ctrl: modules first, then
// labware, then pipettes with their tip racks. Nothing is sent to ctrl if
// the layout is invalid.
func Load(ctx context.Context, ctrl hardware.Controller, reg *labware.Registry, layout Layout, log *logger.Logger) (*Deck, error) {
	if log == nil {
		log = logger.Nop()
	}
	if reg == nil {
		reg = labware.NewRegistry()
	}
	if err := layout.Validate(reg); err != nil {
		return nil, err
	}
	log = log.WithComponent("deck")

	d := &Deck{
		layout:   layout,
		labware:  make(map[string]*labware.Labware, len(layout.Labware)),
		pipettes: make(map[string]*pipette.Pipette, len(layout.Pipettes)),
		magnets:  make(map[string]*hardware.MagneticModule),
		thermo:   make(map[string]*hardware.TemperatureModule),
	}

	for _, m := range layout.Modules {
		if err := ctrl.LoadModule(ctx, m.Model, m.Slot); err != nil {
			return nil, errors.Hardware("load module", err)
		}
		switch m.Model {
		case hardware.MagneticModuleGen2:
			mod := hardware.NewMagneticModule(m.Name, m.Slot, ctrl)
			d.magnets[m.Name] = mod
			d.moduleOrder = append(d.moduleOrder, mod)
		case hardware.TemperatureModuleGen2:
			mod := hardware.NewTemperatureModule(m.Name, m.Slot, ctrl)
			d.thermo[m.Name] = mod
			d.moduleOrder = append(d.moduleOrder, mod)
		}
		log.Debug("module loaded", logger.Fields("module", m.Name, "model", m.Model, logger.FieldSlot, m.Slot))
	}

	for _, spec := range layout.Labware {
		def, _ := reg.Lookup(spec.LoadName)
		slot := layout.slotOf(spec)
		label := spec.Label
		if label == "" {
			label = spec.Name
		}
		if err := ctrl.LoadLabware(ctx, spec.LoadName, slot, label); err != nil {
			return nil, errors.Hardware("load labware", err)
		}
		d.labware[spec.Name] = labware.New(def, slot, label)
		log.Debug("labware loaded", logger.Fields(logger.FieldLabware, spec.Name, "load_name", spec.LoadName, logger.FieldSlot, slot))
	}

	for _, spec := range layout.Pipettes {
		model, _ := pipette.LookupModel(spec.Model)
		racks := make([]*labware.Labware, len(spec.TipRacks))
		for i, r := range spec.TipRacks {
			racks[i] = d.labware[r]
		}
		tips, err := pipette.NewTipTracker(model.Channels, racks...)
		if err != nil {
			return nil, err
		}
		if err := ctrl.LoadInstrument(ctx, spec.Model, spec.Mount); err != nil {
			return nil, errors.Hardware("load instrument", err)
		}
		d.pipettes[spec.Name] = pipette.New(pipette.Config{
			Name:     spec.Name,
			Model:    model,
			Mount:    spec.Mount,
			Defaults: spec.Defaults,
		}, ctrl, tips, log)
		log.Debug("pipette loaded", logger.Fields(logger.FieldPipette, spec.Name, "model", spec.Model, "mount", string(spec.Mount)))
	}

	log.Info("deck loaded", logger.Fields(
		"labware", len(d.labware),
		"modules", len(d.moduleOrder),
		"pipettes", len(d.pipettes),
	))
	return d, nil
}

// Layout returns the layout the deck was loaded from.
func (d *Deck) Layout() Layout { return d.layout }

// Labware returns the labware registered under name.
func (d *Deck) Labware(name string) (*labware.Labware, error) {
	lw, ok := d.labware[name]
	if !ok {
		return nil, errors.Lookup("labware", name, "deck")
	}
	return lw, nil
}

// Pipette returns the pipette registered under name.
func (d *Deck) Pipette(name string) (*pipette.Pipette, error) {
	p, ok := d.pipettes[name]
	if !ok {
		return nil, errors.Lookup("pipette", name, "deck")
	}
	return p, nil
}

// Magnet returns the magnetic module registered under name.
func (d *Deck) Magnet(name string) (*hardware.MagneticModule, error) {
	m, ok := d.magnets[name]
	if !ok {
		return nil, errors.Lookup("magnetic module", name, "deck")
	}
	return m, nil
}

// Temperature returns the temperature module registered under name.
func (d *Deck) Temperature(name string) (*hardware.TemperatureModule, error) {
	m, ok := d.thermo[name]
	if !ok {
		return nil, errors.Lookup("temperature module", name, "deck")
	}
	return m, nil
}

// Components returns the fitted modules in layout order, for registration
// with a component.Registry.
func (d *Deck) Components() []component.Component {
	out := make([]component.Component, len(d.moduleOrder))
	copy(out, d.moduleOrder)
	return out
}

// LabwareNames returns the names of the loaded labware, sorted.
func (d *Deck) LabwareNames() []string {
	names := make([]string, 0, len(d.labware))
	for n := range d.labware {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
