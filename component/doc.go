// Package component defines the lifecycle interface shared by the pieces of
// a run that hold state outside the process: deck modules, the run journal
// and the operator console.
//
// A Registry starts components in registration order and stops them in
// reverse, so a run that aborts halfway still disengages the magnet, turns
// off the heater and closes the journal.
package component
