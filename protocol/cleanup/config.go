package cleanup

import (
	"fmt"
	"math"
	"time"

	"github.com/kbukum/liquidkit/errors"
)

// Variant selects the clean-up procedure.
type Variant string

const (
	// Plate runs whole columns of a 96-well plate.
	Plate Variant = "plate"
	// Strip runs explicit columns with beads added by hand.
	Strip Variant = "strip"
)

// Config parameterises the clean-up. Zero fields take the variant's
// defaults.
type Config struct {
	Variant Variant `yaml:"variant" mapstructure:"variant" validate:"oneof=plate strip"`
	// Samples is the number of samples; whole columns of eight are processed.
	Samples int `yaml:"samples" mapstructure:"samples" validate:"min=1,max=96"`
	// Columns names the first well of each sample column. It overrides Samples.
	Columns []string `yaml:"columns" mapstructure:"columns" validate:"omitempty,max=12,dive,well"`
	// OutputColumns names the first well of each eluate column, one per
	// sample column. The sample columns are mirrored when empty.
	OutputColumns []string `yaml:"output_columns" mapstructure:"output_columns" validate:"omitempty,max=12,dive,well"`

	PCRVolume     float64 `yaml:"pcr_volume" mapstructure:"pcr_volume" validate:"gt=0,lte=100"`
	BeadRatio     float64 `yaml:"bead_ratio" mapstructure:"bead_ratio" validate:"gt=0"`
	ElutionVolume float64 `yaml:"elution_volume" mapstructure:"elution_volume" validate:"gt=5"`

	MagnetDelay time.Duration `yaml:"magnet_delay" mapstructure:"magnet_delay" validate:"gt=0"`
	Incubation  time.Duration `yaml:"incubation" mapstructure:"incubation" validate:"gt=0"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature" validate:"gt=0,lte=95"`
	Washes      int           `yaml:"washes" mapstructure:"washes" validate:"min=1,max=5"`
	ZSpeed      float64       `yaml:"z_speed" mapstructure:"z_speed" validate:"gt=0"`

	TipRack      string `yaml:"tip_rack" mapstructure:"tip_rack" validate:"required"`
	TipRackSlots []int  `yaml:"tip_rack_slots" mapstructure:"tip_rack_slots" validate:"min=1,dive,slot"`
}

// ApplyDefaults fills zero fields for the configured variant.
func (c *Config) ApplyDefaults() {
	if c.Variant == "" {
		c.Variant = Plate
	}
	if c.PCRVolume == 0 {
		c.PCRVolume = 50
	}
	if c.BeadRatio == 0 {
		c.BeadRatio = 1.8
	}
	if c.ElutionVolume == 0 {
		c.ElutionVolume = 50
	}
	if c.MagnetDelay == 0 {
		c.MagnetDelay = 6 * time.Minute
	}
	if c.Incubation == 0 {
		c.Incubation = 30 * time.Second
	}
	if c.Temperature == 0 {
		c.Temperature = 55
	}
	if c.ZSpeed == 0 {
		c.ZSpeed = 25
	}

	switch c.Variant {
	case Strip:
		if c.Samples == 0 {
			c.Samples = 8
		}
		if len(c.Columns) == 0 {
			c.Columns = []string{"A4"}
		}
		if len(c.OutputColumns) == 0 {
			c.OutputColumns = []string{"A5"}
		}
		if c.Washes == 0 {
			c.Washes = 3
		}
		if c.TipRack == "" {
			c.TipRack = "opentrons_96_filtertiprack_200ul"
		}
		if len(c.TipRackSlots) == 0 {
			c.TipRackSlots = []int{3, 4}
		}
	default:
		if c.Samples == 0 {
			c.Samples = 96
		}
		if c.Washes == 0 {
			c.Washes = 2
		}
		if c.TipRack == "" {
			c.TipRack = "opentrons_96_tiprack_300ul"
		}
		if len(c.TipRackSlots) == 0 {
			c.TipRackSlots = []int{3, 4, 5, 6}
		}
	}
}

// ColumnCount is the number of sample columns processed.
func (c Config) ColumnCount() int {
	if len(c.Columns) > 0 {
		return len(c.Columns)
	}
	return int(math.Ceil(float64(c.Samples) / 8))
}

// Volumes are the per-well volumes derived from the PCR volume, in µL.
type Volumes struct {
	Beads float64
	// Mix is what the bead suspension is mixed with.
	Mix float64
	// Supernatant is drawn off once the beads are held by the magnet.
	Supernatant float64
	// Eluate is moved to the output plate, leaving a margin above the beads.
	Eluate float64
}

// Volumes derives the working volumes. The strip variant leaves 20 µL
// above the pellet when removing the supernatant.
func (c Config) Volumes() Volumes {
	beads := math.Floor(c.PCRVolume * c.BeadRatio)
	v := Volumes{
		Beads:       beads,
		Mix:         beads + c.PCRVolume - 20,
		Supernatant: beads + c.PCRVolume,
		Eluate:      c.ElutionVolume - 5,
	}
	if c.Variant == Strip {
		v.Supernatant -= 20
	}
	return v
}

// Fixed mix volumes, in µL.
const (
	// beadSuspensionMix resuspends the bead reservoir before each column.
	beadSuspensionMix = 200
	// elutionMix is the largest mix of the elution buffer over the pellet.
	elutionMix = 45
)

// checkCapacity rejects a configuration whose single-aspirate volumes do
// not fit in a tip of capacity µL. Transfers are split into cycles, mixes
// are not.
func (c Config) checkCapacity(capacity float64) error {
	v := c.Volumes()
	if v.Mix > capacity {
		return errors.InvalidInput("bead_ratio", fmt.Sprintf(
			"bead mix of %.2f µL (%g µL PCR at ratio %g) does not fit in a %g µL tip", v.Mix, c.PCRVolume, c.BeadRatio, capacity))
	}
	fixed := float64(elutionMix)
	if c.Variant == Plate {
		fixed = beadSuspensionMix
	}
	if fixed > capacity {
		return errors.InvalidInput("tip_rack", fmt.Sprintf(
			"%s holds %g µL, the %s variant mixes %g µL", c.TipRack, capacity, c.Variant, fixed))
	}
	return nil
}

// Ethanol per well, in µL.
const (
	ethanolPerWash = 150
	ethanolRemoved = 140
)

// Reagents are the reservoir fills a run needs, in mL, with ten spare
// samples and 2 mL of dead volume each.
type Reagents struct {
	BeadsML   int
	EthanolML int
	ElutionML int
}

// Reagents computes the fills for the configured sample count.
func (c Config) Reagents() Reagents {
	fill := func(perWell float64) int {
		return int(math.Ceil(perWell*float64(c.Samples+10)/1000)) + 2
	}
	return Reagents{
		BeadsML:   fill(c.Volumes().Beads),
		EthanolML: fill(ethanolPerWash),
		ElutionML: fill(c.ElutionVolume),
	}
}
