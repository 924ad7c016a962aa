// Package deck describes and loads the deck of a run: which labware sits in
// which slot, which modules are fitted and which pipettes are mounted with
// which tip racks.
//
// A Layout is plain data, written in Go or read from YAML, and is validated
// completely before the first command reaches the robot:
//
//	d, err := deck.Load(ctx, ctrl, labware.NewRegistry(), layout, log)
//	p300, _ := d.Pipette("p300")
//	plate, _ := d.Labware("dest_plate")
package deck
