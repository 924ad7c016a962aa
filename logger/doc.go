// Package logger wraps zerolog for liquid-handling runs.
//
// Loggers carry the service name and can be narrowed to a component
// (sequencer, pipette, deck) or enriched with the run and phase stored in a
// context:
//
//	log := logger.NewDefault("liquidkit").WithComponent("sequencer")
//	log.WithContext(ctx).Info("transfer", logger.Fields(logger.FieldWell, "B2", logger.FieldVolume, 50.0))
package logger
