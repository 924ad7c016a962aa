// Package testutil provides a simulated robot for tests.
//
// A SimDeck is a deck layout loaded onto an in-memory simulator. It behaves
// as a regular component and adds Reset, Snapshot and Restore so tests can
// rewind the deck between cases:
//
//	func TestDilution(t *testing.T) {
//	    d := testutil.NewSimDeck(testutil.SingleChannelLayout())
//	    testutil.T(t).Setup(d)
//	    p := d.MustPipette(t, "p300")
//	    // ...
//	}
package testutil
