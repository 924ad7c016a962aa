package pipette

import (
	"fmt"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/labware"
)

type tipState int

const (
	tipAvailable tipState = iota
	tipInUse
	tipReturned
	tipConsumed
)

// TipTracker hands out tips from an ordered set of tip racks.
//
// Tips are taken column by column starting at the configured start tip.
// A returned tip goes back in its rack but is not handed out again until
// Reset; a dropped tip is gone for good.
type TipTracker struct {
	racks    []*labware.Labware
	channels int
	state    map[*labware.Well]tipState
	start    *labware.Well
}

// NewTipTracker tracks the tips of racks for a pipette with the given
// channel count. Every rack must be a tip rack.
func NewTipTracker(channels int, racks ...*labware.Labware) (*TipTracker, error) {
	if len(racks) == 0 {
		return nil, errors.InvalidInput("tip_racks", "at least one tip rack is required")
	}
	for _, r := range racks {
		def := r.Definition()
		if def.Category != labware.TipRack {
			return nil, errors.InvalidInput("tip_racks", fmt.Sprintf("%s is not a tip rack", r))
		}
		if channels > 1 && def.Rows != channels {
			return nil, errors.InvalidInput("tip_racks",
				fmt.Sprintf("%s has %d rows, a %d-channel pipette needs %d", r, def.Rows, channels, channels))
		}
	}
	if channels < 1 {
		channels = 1
	}
	return &TipTracker{
		racks:    racks,
		channels: channels,
		state:    make(map[*labware.Well]tipState),
	}, nil
}

// Racks returns the number of racks tracked.
func (t *TipTracker) Racks() int { return len(t.racks) }

// TipVolume returns the capacity of the first rack's tips.
func (t *TipTracker) TipVolume() float64 { return t.racks[0].Definition().MaxVolume }

// Reset makes every returned tip available again and clears the start tip.
func (t *TipTracker) Reset() {
	for w, s := range t.state {
		if s == tipReturned {
			delete(t.state, w)
		}
	}
	t.start = nil
}

// StartAt makes the search for the next tip begin at the named well of the
// rack with index rack.
func (t *TipTracker) StartAt(rack int, well string) error {
	if rack < 0 || rack >= len(t.racks) {
		return errors.Lookup("tip rack", fmt.Sprintf("#%d", rack+1), fmt.Sprintf("%d racks", len(t.racks)))
	}
	w, err := t.racks[rack].WellByName(well)
	if err != nil {
		return err
	}
	if t.channels > 1 && w.Row() != 0 {
		return errors.InvalidInput("starting_tip", "a multi-channel start tip must be in row A")
	}
	t.start = w
	return nil
}

// Next returns the next available tip without taking it: the first well of
// a fully stocked column for multi-channel pipettes. ok is false when the
// racks are exhausted.
func (t *TipTracker) Next() (tip *labware.Well, ok bool) {
	started := t.start == nil
	for _, rack := range t.racks {
		for _, w := range rack.Wells() {
			if !started {
				if w != t.start {
					continue
				}
				started = true
			}
			if t.channels > 1 && w.Row() != 0 {
				continue
			}
			if t.available(w) {
				return w, true
			}
		}
	}
	return nil, false
}

func (t *TipTracker) available(first *labware.Well) bool {
	if t.channels == 1 {
		return t.state[first] == tipAvailable
	}
	for _, w := range first.Labware().Column(first.Column()) {
		if t.state[w] != tipAvailable {
			return false
		}
	}
	return true
}

func (t *TipTracker) mark(first *labware.Well, s tipState) {
	if t.channels == 1 {
		t.state[first] = s
		return
	}
	for _, w := range first.Labware().Column(first.Column()) {
		t.state[w] = s
	}
}

// Remaining returns how many tips (columns for multi-channel) are available.
func (t *TipTracker) Remaining() int {
	n := 0
	for _, rack := range t.racks {
		for _, w := range rack.Wells() {
			if t.channels > 1 && w.Row() != 0 {
				continue
			}
			if t.available(w) {
				n++
			}
		}
	}
	return n
}
