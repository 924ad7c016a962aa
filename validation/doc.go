// Package validation provides input validation for deck layouts, protocol
// parameters and operator input.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Besides the stock tags, two
// deck tags are registered:
//
//	well  - a well name such as A1 or P24
//	slot  - a deck slot number, 1 through 11
//
// # Struct Tag Validation
//
//	type ColumnSpec struct {
//	    Slot  int    `validate:"slot"`
//	    Start string `validate:"required,well"`
//	}
//	err := validation.Validate(spec)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Positive("volume", vol).Well("destination", name)
//	err := v.Validate()
package validation
