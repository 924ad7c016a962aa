// Package labware models plates, reservoirs and tip racks on the deck.
//
// A Definition describes the geometry of a labware type and is looked up by
// its load name in a Registry. The registry ships with the definitions the
// bundled protocols use; more can be added from YAML:
//
//	definitions:
//	  - load_name: biorad_96_wellplate_200ul_pcr
//	    category: wellPlate
//	    rows: 8
//	    columns: 12
//	    well_depth_mm: 14.81
//	    max_volume_ul: 200
//
// A Labware is a definition placed in a deck slot. Its wells are named by row
// letter and column number (A1 .. P24) and iterate column by column, the
// order a multi-channel pipette walks a plate. Each well tracks the net
// liquid moved in or out of it during a run. Starting volumes are not known,
// so a source well's tracked volume goes negative as it is drawn from.
package labware
