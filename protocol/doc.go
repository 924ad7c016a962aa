// Package protocol runs bundled liquid-handling protocols.
//
// A Protocol declares its deck layout and, once the deck is loaded, plans an
// ordered list of phases. The Runner loads the deck, then runs the phases one
// after another inside a Session that carries the run's logger, operator,
// journal and status tracker. Every phase gets its own span and journal
// events; cancellation is checked between phases and by the sequencer
// between rows.
//
//	reg := protocol.NewRegistry()
//	cherrypick.Register(reg)
//	p, err := reg.New("oligo-dilution", protocol.NoParameters)
//	res, err := protocol.NewRunner(sim.New(), protocol.WithPickLists(store)).Run(ctx, p)
package protocol
