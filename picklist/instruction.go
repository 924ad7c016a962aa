package picklist

import (
	"fmt"

	"github.com/kbukum/liquidkit/errors"
)

// TipPolicy says whether a row may share a tip with its neighbours.
type TipPolicy string

const (
	// Reuse shares one tip across consecutive Reuse rows.
	Reuse TipPolicy = "reuse"
	// AlwaysNew takes a fresh tip for the row and releases it afterwards.
	AlwaysNew TipPolicy = "always_new"
)

// ParseTipPolicy parses "reuse" or "always_new".
func ParseTipPolicy(s string) (TipPolicy, error) {
	switch TipPolicy(s) {
	case Reuse, AlwaysNew:
		return TipPolicy(s), nil
	case "":
		return Reuse, nil
	}
	return "", errors.InvalidInput("tip_policy", fmt.Sprintf("unknown tip policy %q", s))
}

// BlowOutAt names where residual liquid is blown out.
type BlowOutAt string

const (
	BlowOutDestination BlowOutAt = "destination"
	BlowOutSource      BlowOutAt = "source"
	BlowOutTrash       BlowOutAt = "trash"
)

// Instruction is one transfer row.
type Instruction struct {
	// Row is the 1-based data row in the file, not counting the header.
	// Blank lines are skipped but still counted.
	Row         int
	Source      string
	Destination string
	// Volume in µL, always greater than zero.
	Volume    float64
	TipPolicy TipPolicy
	AirGap    float64
	BlowOut   bool
	BlowOutAt BlowOutAt
}

func (i Instruction) String() string {
	src := i.Source
	if src == "" {
		src = "-"
	}
	return fmt.Sprintf("row %d: %.2f µL %s -> %s", i.Row, i.Volume, src, i.Destination)
}
