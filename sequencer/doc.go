// Package sequencer executes pick-lists: one transfer per row, in file
// order, with a single pipette, changing tips only as the tip policy says.
//
// Every row is resolved to physical locations before the first tip is picked
// up, so an unknown well aborts the batch before any liquid moves. After
// that the run is strictly sequential; an error stops it where it is and
// leaves any held tip on the pipette for the operator to deal with.
//
//	seq := sequencer.New(ctrl, sequencer.WithLogger(log), sequencer.WithRecorder(journal))
//	err := seq.Execute(ctx, list, p300, sequencer.Route{
//	    Source:      sequencer.FixedEndpoint(water.Bottom(6)),
//	    Destination: sequencer.WellEndpoint(plate, labware.Top, -6),
//	}, sequencer.Policy{Release: pipette.Drop})
package sequencer
