// Package pipette models a pipette as a tip-holding resource.
//
// A Pipette is either Empty or TipHeld. AcquireTip picks up the next tip
// from its TipTracker and ReleaseTip drops it in the trash or returns it to
// its rack; each fails with a RESOURCE_STATE_ERROR when called in the wrong
// state. Every liquid operation requires a held tip.
//
// Flow rates and speed caps are passed per call as Options and never stored
// on the pipette:
//
//	err := p.Aspirate(ctx, 50, src.Bottom(1), pipette.WithAspirateRate(50), pipette.WithZSpeed(25))
//
// Transfer moves a volume between two locations with the tip already held,
// splitting it into several aspirate/dispense cycles when it does not fit
// in the tip.
package pipette
