// Package operator handles the points where a protocol waits for a person:
// loading reagents, centrifuging a plate, moving a plate to a thermocycler.
//
// An Operator blocks in Pause until the run may continue. Auto continues at
// once (simulation), Prompt waits for Enter on a terminal and Gate waits for
// POST /resume on the operator API. The Tracker holds what the API reports
// on GET /status.
package operator
