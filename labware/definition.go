package labware

import (
	"fmt"

	"github.com/kbukum/liquidkit/validation"
)

// Category groups labware by how it is used.
type Category string

const (
	WellPlate Category = "wellPlate"
	Reservoir Category = "reservoir"
	TipRack   Category = "tipRack"
)

// Definition is the geometry of a labware type.
type Definition struct {
	LoadName  string   `yaml:"load_name" validate:"required"`
	Category  Category `yaml:"category" validate:"oneof=wellPlate reservoir tipRack"`
	Rows      int      `yaml:"rows" validate:"gte=1,lte=16"`
	Columns   int      `yaml:"columns" validate:"gte=1,lte=24"`
	WellDepth float64  `yaml:"well_depth_mm" validate:"gt=0"`
	// MaxVolume is the well capacity, or the tip capacity for tip racks.
	MaxVolume float64 `yaml:"max_volume_ul" validate:"gt=0"`
}

// Validate checks the definition's fields.
func (d Definition) Validate() error {
	if err := validation.Validate(d); err != nil {
		return fmt.Errorf("labware %q: %w", d.LoadName, err)
	}
	return nil
}

// WellCount returns the number of wells (or tips) the definition has.
func (d Definition) WellCount() int {
	return d.Rows * d.Columns
}

// builtin holds the definitions loaded into every new Registry.
var builtin = []Definition{
	{LoadName: "agilent_1_reservoir_290ml", Category: Reservoir, Rows: 1, Columns: 1, WellDepth: 39.22, MaxVolume: 290000},
	{LoadName: "usascientific_12_reservoir_22ml", Category: Reservoir, Rows: 1, Columns: 12, WellDepth: 42.16, MaxVolume: 22000},
	{LoadName: "usascientific_96_wellplate_2.4ml_deep", Category: WellPlate, Rows: 8, Columns: 12, WellDepth: 41.3, MaxVolume: 2400},
	{LoadName: "nest_96_wellplate_2ml_deep", Category: WellPlate, Rows: 8, Columns: 12, WellDepth: 38, MaxVolume: 2000},
	{LoadName: "nest_96_wellplate_100ul_pcr_full_skirt", Category: WellPlate, Rows: 8, Columns: 12, WellDepth: 14.78, MaxVolume: 100},
	{LoadName: "corning_384_wellplate_112ul_flat", Category: WellPlate, Rows: 16, Columns: 24, WellDepth: 11.43, MaxVolume: 112},
	{LoadName: "opentrons_96_tiprack_20ul", Category: TipRack, Rows: 8, Columns: 12, WellDepth: 39.2, MaxVolume: 20},
	{LoadName: "opentrons_96_tiprack_300ul", Category: TipRack, Rows: 8, Columns: 12, WellDepth: 59.3, MaxVolume: 300},
	{LoadName: "opentrons_96_filtertiprack_200ul", Category: TipRack, Rows: 8, Columns: 12, WellDepth: 59.3, MaxVolume: 200},
	{LoadName: "opentrons_96_tiprack_1000ul", Category: TipRack, Rows: 8, Columns: 12, WellDepth: 88, MaxVolume: 1000},
}
