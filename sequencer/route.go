package sequencer

import (
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/labware"
)

// Endpoint is one side of a transfer: either a labware whose well is named
// by the pick-list row, or a fixed location that ignores the row.
type Endpoint struct {
	Labware   *labware.Labware
	Fixed     *labware.Location
	Reference labware.Reference
	Offset    float64
}

// WellEndpoint addresses the row's well of lw at ref+offset mm.
func WellEndpoint(lw *labware.Labware, ref labware.Reference, offset float64) Endpoint {
	return Endpoint{Labware: lw, Reference: ref, Offset: offset}
}

// FixedEndpoint always addresses loc.
func FixedEndpoint(loc labware.Location) Endpoint {
	return Endpoint{Fixed: &loc}
}

// Resolve returns the location for the well named by a row.
func (e Endpoint) Resolve(well string) (labware.Location, error) {
	if e.Fixed != nil {
		return *e.Fixed, nil
	}
	if e.Labware == nil {
		return labware.Location{}, errors.InvalidInput("route", "endpoint has neither labware nor a fixed location")
	}
	w, err := e.Labware.WellByName(well)
	if err != nil {
		return labware.Location{}, err
	}
	return labware.Location{Well: w, Reference: e.Reference, Offset: e.Offset}, nil
}

// Route pairs the source and destination endpoints of a batch.
type Route struct {
	Source      Endpoint
	Destination Endpoint
}
