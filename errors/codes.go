package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Run-aborting protocol errors. None of these are retryable: liquid has
// already moved by the time they surface.
const (
	// ErrCodeSchema indicates a pick-list is missing a required column or has a malformed value.
	ErrCodeSchema ErrorCode = "SCHEMA_ERROR"
	// ErrCodeLookup indicates a well, labware or slot name that is not on the deck.
	ErrCodeLookup ErrorCode = "LOOKUP_ERROR"
	// ErrCodeResourceState indicates a tip was acquired while held or released while empty.
	ErrCodeResourceState ErrorCode = "RESOURCE_STATE_ERROR"
	// ErrCodeOutOfTips indicates every tip rack assigned to a pipette is used up.
	ErrCodeOutOfTips ErrorCode = "OUT_OF_TIPS"
	// ErrCodeHardware indicates the hardware controller rejected a command.
	ErrCodeHardware ErrorCode = "HARDWARE_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeConfig indicates a configuration that failed validation at startup.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
)

// Operator and infrastructure errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a request that conflicts with the current run state.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeStorage indicates a pick-list or report store failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeJournal indicates the run journal could not be written or read.
	ErrCodeJournal ErrorCode = "JOURNAL_ERROR"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage: true,
	ErrCodeJournal: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Only reads from a pick-list store qualify; anything touching the deck does not.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
