// Package journal keeps a durable record of every run in sqlite: the run
// itself, each completed transfer and the phase, pause and comment events
// around them.
//
// After an aborted run the journal says exactly which pick-list rows
// completed, so the operator can decide what to redo. The Journal satisfies
// sequencer.Recorder; hand it to the sequencer with sequencer.WithRecorder.
package journal
