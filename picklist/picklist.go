package picklist

import (
	"fmt"
	"math"

	"github.com/kbukum/liquidkit/errors"
)

// PickList is an ordered, immutable list of transfers.
type PickList struct {
	name  string
	items []Instruction
}

// New builds a pick-list from instructions, checking each one.
func New(name string, items ...Instruction) (*PickList, error) {
	out := make([]Instruction, len(items))
	for i, it := range items {
		if it.Row == 0 {
			it.Row = i + 1
		}
		if it.Destination == "" {
			return nil, errors.Schema(ColumnDestination, it.Row, "value is required")
		}
		if math.IsNaN(it.Volume) || math.IsInf(it.Volume, 0) || it.Volume <= 0 {
			return nil, errors.Schema(ColumnVolume, it.Row, fmt.Sprintf("volume must be a positive number, got %v", it.Volume))
		}
		if it.TipPolicy == "" {
			it.TipPolicy = Reuse
		}
		out[i] = it
	}
	return &PickList{name: name, items: out}, nil
}

// Name returns the file name the pick-list was read from.
func (p *PickList) Name() string { return p.name }

// Len returns the number of transfers.
func (p *PickList) Len() int { return len(p.items) }

// At returns the i-th transfer.
func (p *PickList) At(i int) Instruction { return p.items[i] }

// Instructions returns a copy of the transfers in file order.
func (p *PickList) Instructions() []Instruction {
	out := make([]Instruction, len(p.items))
	copy(out, p.items)
	return out
}

// TotalVolume returns the sum of all row volumes in µL.
func (p *PickList) TotalVolume() float64 {
	total := 0.0
	for _, it := range p.items {
		total += it.Volume
	}
	return total
}
