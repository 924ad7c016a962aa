// Package picklist reads the CSV pick-lists that drive a transfer run.
//
// A pick-list has one transfer per data row, executed in file order:
//
//	Source Well,Destination Well,Volume
//	A1,B2,6
//	A2,C7,6
//
// Destination Well is required. Source Well is optional and only needed when
// the source labware is chosen per row. Volume is required unless the parse
// Options carry a fixed volume. Header names are matched after trimming and
// without regard to case; other columns are ignored.
//
// Pick-lists are usually fetched from a storage backend through a Store,
// which retries transient read failures.
package picklist
