// Package errors provides the error taxonomy for liquid-handling runs.
//
// Every failure that reaches the caller is an *AppError carrying a
// machine-readable ErrorCode. The three codes a protocol run can abort on
// are SCHEMA_ERROR (bad pick-list), LOOKUP_ERROR (well not on the deck) and
// RESOURCE_STATE_ERROR (tip acquired twice or released while empty).
package errors
