// Package cherrypick holds the pick-list driven dilution protocols: water
// into oligo plates, and water then primer into a 384-well plate.
//
// Register adds them to a protocol.Registry:
//
//	reg := protocol.NewRegistry()
//	cherrypick.Register(reg)
package cherrypick
