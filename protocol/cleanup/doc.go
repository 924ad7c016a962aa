// Package cleanup is the magnetic-bead PCR clean-up: beads bind the product,
// the magnet holds them while the supernatant and two or three ethanol
// washes are drawn off, and the product is eluted into an output plate.
//
// Two variants are registered. pcr-cleanup processes whole columns of a
// 96-well plate, reusing returned tips between stages. pcr-cleanup-8
// processes an explicit list of columns with beads already added on the
// bench and a fresh filter tip per stage.
package cleanup
