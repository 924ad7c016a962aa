package deck

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/validation"
)

// LabwareSpec places one labware. Labware on a module takes the module's slot.
type LabwareSpec struct {
	Name     string `yaml:"name" validate:"required"`
	LoadName string `yaml:"load_name" validate:"required"`
	Slot     int    `yaml:"slot" validate:"omitempty,slot"`
	Label    string `yaml:"label"`
	Module   string `yaml:"module"`
}

// ModuleSpec fits one hardware module.
type ModuleSpec struct {
	Name  string `yaml:"name" validate:"required"`
	Model string `yaml:"model" validate:"oneof=magneticModuleV2 temperatureModuleV2"`
	Slot  int    `yaml:"slot" validate:"slot"`
}

// PipetteSpec mounts one pipette with its tip racks, in pick-up order.
type PipetteSpec struct {
	Name     string           `yaml:"name" validate:"required"`
	Model    string           `yaml:"model" validate:"required"`
	Mount    hardware.Mount   `yaml:"mount" validate:"oneof=left right"`
	TipRacks []string         `yaml:"tip_racks" validate:"min=1,dive,required"`
	Defaults pipette.Settings `yaml:"defaults"`
}

// Layout is the full deck of a run.
type Layout struct {
	Labware  []LabwareSpec `yaml:"labware" validate:"dive"`
	Modules  []ModuleSpec  `yaml:"modules" validate:"dive"`
	Pipettes []PipetteSpec `yaml:"pipettes" validate:"min=1,dive"`
}

// ParseLayout reads a layout from YAML.
func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.InvalidInput("deck", err.Error())
	}
	return l, nil
}

// Validate checks the layout against reg: tags first, then names, slots,
// load names, models and tip rack references.
func (l Layout) Validate(reg *labware.Registry) error {
	if err := validation.Validate(l); err != nil {
		return err
	}

	v := validation.New()
	names := make(map[string]string)
	claim := func(field, name string) {
		if prev, ok := names[name]; ok {
			v.AddError(field, fmt.Sprintf("name %q is already used by %s", name, prev))
			return
		}
		names[name] = field
	}

	slots := make(map[int]string)
	occupy := func(field string, slot int, what string) {
		if prev, ok := slots[slot]; ok {
			v.AddError(field, fmt.Sprintf("slot %d is already occupied by %s", slot, prev))
			return
		}
		slots[slot] = what
	}

	modules := make(map[string]ModuleSpec, len(l.Modules))
	for i, m := range l.Modules {
		field := fmt.Sprintf("modules[%d]", i)
		claim(field, m.Name)
		occupy(field+".slot", m.Slot, m.Name)
		modules[m.Name] = m
	}

	tipRacks := make(map[string]bool)
	for i, lw := range l.Labware {
		field := fmt.Sprintf("labware[%d]", i)
		claim(field, lw.Name)

		def, err := reg.Lookup(lw.LoadName)
		if err != nil {
			v.AddError(field+".load_name", fmt.Sprintf("unknown labware %q", lw.LoadName))
		} else if def.Category == labware.TipRack {
			tipRacks[lw.Name] = true
		}

		if lw.Module != "" {
			m, ok := modules[lw.Module]
			switch {
			case !ok:
				v.AddError(field+".module", fmt.Sprintf("unknown module %q", lw.Module))
			case lw.Slot != 0 && lw.Slot != m.Slot:
				v.AddError(field+".slot", fmt.Sprintf("module %q is in slot %d, not %d", m.Name, m.Slot, lw.Slot))
			}
			continue
		}
		if lw.Slot == 0 {
			v.AddError(field+".slot", "is required")
			continue
		}
		occupy(field+".slot", lw.Slot, lw.Name)
	}

	mounts := make(map[hardware.Mount]string)
	for i, p := range l.Pipettes {
		field := fmt.Sprintf("pipettes[%d]", i)
		claim(field, p.Name)
		if _, err := pipette.LookupModel(p.Model); err != nil {
			v.AddError(field+".model", fmt.Sprintf("unknown pipette model %q", p.Model))
		}
		if prev, ok := mounts[p.Mount]; ok {
			v.AddError(field+".mount", fmt.Sprintf("%s mount is already used by %s", p.Mount, prev))
		}
		mounts[p.Mount] = p.Name
		for j, r := range p.TipRacks {
			if !tipRacks[r] {
				v.AddError(fmt.Sprintf("%s.tip_racks[%d]", field, j), fmt.Sprintf("%q is not a tip rack on this deck", r))
			}
		}
	}

	return v.Err()
}

// slotOf returns the slot a labware occupies.
func (l Layout) slotOf(lw LabwareSpec) int {
	if lw.Module == "" {
		return lw.Slot
	}
	for _, m := range l.Modules {
		if m.Name == lw.Module {
			return m.Slot
		}
	}
	return lw.Slot
}
