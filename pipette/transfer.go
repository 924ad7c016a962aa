package pipette

import (
	"context"
	"fmt"
	"math"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/labware"
)

// BlowOutTarget selects where Transfer blows out after dispensing.
type BlowOutTarget int

const (
	BlowOutDestination BlowOutTarget = iota
	BlowOutSource
	BlowOutTrash
)

// ParseBlowOutTarget parses "destination", "source" or "trash".
func ParseBlowOutTarget(s string) (BlowOutTarget, error) {
	switch s {
	case "destination", "":
		return BlowOutDestination, nil
	case "source":
		return BlowOutSource, nil
	case "trash":
		return BlowOutTrash, nil
	}
	return BlowOutDestination, errors.InvalidInput("blow_out_at", fmt.Sprintf("unknown blow-out location %q", s))
}

// MixSpec is a mix of Repetitions cycles of Volume µL.
type MixSpec struct {
	Repetitions int
	Volume      float64
}

// TransferOptions are the liquid-class settings of a transfer.
type TransferOptions struct {
	// AirGap is drawn after each aspirate and dispensed with the liquid.
	AirGap    float64
	BlowOut   bool
	BlowOutAt BlowOutTarget
	// MixBefore mixes the source before each aspirate.
	MixBefore *MixSpec
	// MixAfter mixes the destination after each dispense.
	MixAfter *MixSpec
}

// SplitVolume divides volume into the fewest equal parts no larger than
// perCycle.
func SplitVolume(volume, perCycle float64) []float64 {
	if volume <= 0 || perCycle <= 0 {
		return nil
	}
	n := int(math.Ceil(volume/perCycle - volumeTolerance))
	if n < 1 {
		n = 1
	}
	parts := make([]float64, n)
	for i := range parts {
		parts[i] = volume / float64(n)
	}
	return parts
}

// Transfer moves volume from src to dst with the held tip. Volumes larger
// than the tip holds, less the air gap, are moved in several equal cycles.
func (p *Pipette) Transfer(ctx context.Context, volume float64, src, dst labware.Location, o TransferOptions, opts ...Option) error {
	if err := p.requireTip("transfer"); err != nil {
		return err
	}
	if err := checkVolume("volume", volume); err != nil {
		return err
	}
	if o.AirGap < 0 {
		return errors.InvalidInput("air_gap", "must not be negative")
	}
	perCycle := p.Capacity() - o.AirGap
	if perCycle <= 0 {
		return errors.InvalidInput("air_gap", fmt.Sprintf("%.1f µL air gap leaves no room in a %.0f µL tip", o.AirGap, p.Capacity()))
	}

	for _, part := range SplitVolume(volume, perCycle) {
		if o.MixBefore != nil {
			if err := p.Mix(ctx, o.MixBefore.Repetitions, o.MixBefore.Volume, src, opts...); err != nil {
				return err
			}
		}
		if err := p.Aspirate(ctx, part, src, opts...); err != nil {
			return err
		}
		if o.AirGap > 0 {
			if err := p.AirGap(ctx, o.AirGap, opts...); err != nil {
				return err
			}
		}
		if err := p.DispenseAll(ctx, dst, opts...); err != nil {
			return err
		}
		if o.MixAfter != nil {
			if err := p.Mix(ctx, o.MixAfter.Repetitions, o.MixAfter.Volume, dst, opts...); err != nil {
				return err
			}
		}
		if o.BlowOut {
			if err := p.BlowOut(ctx, blowOutLocation(o.BlowOutAt, src, dst), opts...); err != nil {
				return err
			}
		}
	}
	return nil
}

func blowOutLocation(t BlowOutTarget, src, dst labware.Location) labware.Location {
	switch t {
	case BlowOutSource:
		if src.Well != nil {
			return src.Well.Top(0)
		}
	case BlowOutDestination:
		if dst.Well != nil {
			return dst.Well.Top(0)
		}
	}
	return labware.Location{}
}
