// Package sim is a hardware.Controller that executes nothing.
//
// The simulator records every command with the virtual time it was issued
// at. Delay advances the virtual clock instead of sleeping, so an incubation
// of several minutes returns at once while Elapsed still reports it. Tests
// read Commands to assert on the exact sequence a protocol produced, and
// FailOn injects a hardware fault for a chosen command.
package sim
