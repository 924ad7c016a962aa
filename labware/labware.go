package labware

import (
	"fmt"
	"strconv"

	"github.com/kbukum/liquidkit/errors"
)

// Labware is a definition placed in a deck slot.
type Labware struct {
	def    Definition
	slot   int
	label  string
	wells  []*Well
	byName map[string]*Well
}

// New places def in slot. label is the display name; the load name is used
// when it is empty.
func New(def Definition, slot int, label string) *Labware {
	l := &Labware{
		def:    def,
		slot:   slot,
		label:  label,
		wells:  make([]*Well, 0, def.WellCount()),
		byName: make(map[string]*Well, def.WellCount()),
	}
	for c := 0; c < def.Columns; c++ {
		for r := 0; r < def.Rows; r++ {
			w := &Well{labware: l, row: r, column: c, name: WellName(r, c)}
			l.wells = append(l.wells, w)
			l.byName[w.name] = w
		}
	}
	return l
}

// WellName formats a zero-based row and column as a well name, e.g. (1, 1) is B2.
func WellName(row, column int) string {
	return string(rune('A'+row)) + strconv.Itoa(column+1)
}

// Definition returns the labware geometry.
func (l *Labware) Definition() Definition { return l.def }

// Slot returns the deck slot the labware sits in.
func (l *Labware) Slot() int { return l.slot }

// Name returns the display label, falling back to the load name.
func (l *Labware) Name() string {
	if l.label != "" {
		return l.label
	}
	return l.def.LoadName
}

func (l *Labware) String() string {
	return fmt.Sprintf("%s on %d", l.Name(), l.slot)
}

// WellByName returns the named well or a LookupError.
func (l *Labware) WellByName(name string) (*Well, error) {
	w, ok := l.byName[name]
	if !ok {
		return nil, errors.Lookup("well", name, l.String())
	}
	return w, nil
}

// Wells returns every well in column-major order (A1, B1, .. A2, ..).
func (l *Labware) Wells() []*Well {
	out := make([]*Well, len(l.wells))
	copy(out, l.wells)
	return out
}

// Column returns the wells of zero-based column c, top to bottom.
func (l *Labware) Column(c int) []*Well {
	if c < 0 || c >= l.def.Columns {
		return nil
	}
	start := c * l.def.Rows
	out := make([]*Well, l.def.Rows)
	copy(out, l.wells[start:start+l.def.Rows])
	return out
}

// Row returns the wells of zero-based row r, left to right.
func (l *Labware) Row(r int) []*Well {
	if r < 0 || r >= l.def.Rows {
		return nil
	}
	out := make([]*Well, 0, l.def.Columns)
	for c := 0; c < l.def.Columns; c++ {
		out = append(out, l.wells[c*l.def.Rows+r])
	}
	return out
}

// Well is a single well (or tip position) in a labware.
type Well struct {
	labware *Labware
	name    string
	row     int
	column  int
	volume  float64
}

// Name returns the well name, e.g. A1.
func (w *Well) Name() string { return w.name }

// Row returns the zero-based row index.
func (w *Well) Row() int { return w.row }

// Column returns the zero-based column index.
func (w *Well) Column() int { return w.column }

// Labware returns the labware the well belongs to.
func (w *Well) Labware() *Labware { return w.labware }

// Volume returns the net liquid moved into the well during the run, in µL.
func (w *Well) Volume() float64 { return w.volume }

// Add records liquid dispensed into the well.
func (w *Well) Add(ul float64) { w.volume += ul }

// Remove records liquid aspirated from the well.
func (w *Well) Remove(ul float64) { w.volume -= ul }

// Top returns a location z mm above the top of the well; negative z is inside.
func (w *Well) Top(z float64) Location {
	return Location{Well: w, Reference: Top, Offset: z}
}

// Bottom returns a location z mm above the bottom of the well.
func (w *Well) Bottom(z float64) Location {
	return Location{Well: w, Reference: Bottom, Offset: z}
}

// Center returns the location at half the well depth.
func (w *Well) Center() Location {
	return Location{Well: w, Reference: Center}
}

func (w *Well) String() string {
	return w.name + " of " + w.labware.String()
}
