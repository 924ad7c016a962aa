package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status the operator API answers with for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Protocol errors ---

// Schema creates an error for a pick-list column that is missing or malformed.
// row is the 1-based data row, or 0 when the problem is in the header.
func Schema(column string, row int, reason string) *AppError {
	details := map[string]any{"column": column}
	msg := fmt.Sprintf("pick-list column %q: %s", column, reason)
	if row > 0 {
		details["row"] = row
		msg = fmt.Sprintf("pick-list row %d, column %q: %s", row, column, reason)
	}
	return &AppError{
		Code: ErrCodeSchema, Message: msg,
		HTTPStatus: http.StatusUnprocessableEntity, Details: details,
	}
}

// Lookup creates an error for a name that does not resolve on the deck.
func Lookup(kind, name, where string) *AppError {
	return &AppError{
		Code: ErrCodeLookup, Message: fmt.Sprintf("%s %q not found in %s", kind, name, where),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"kind": kind, "name": name, "in": where},
	}
}

// ResourceState creates an error for an operation invalid in the pipette's current tip state.
func ResourceState(pipette, op, state string) *AppError {
	return &AppError{
		Code: ErrCodeResourceState, Message: fmt.Sprintf("pipette %s cannot %s while %s", pipette, op, state),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"pipette": pipette, "operation": op, "state": state},
	}
}

// OutOfTips creates an error for a pipette whose tip racks are exhausted.
func OutOfTips(pipette string, racks int) *AppError {
	return &AppError{
		Code: ErrCodeOutOfTips, Message: fmt.Sprintf("pipette %s has no tips left in %d rack(s)", pipette, racks),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"pipette": pipette, "racks": racks},
	}
}

// Hardware wraps a failure reported by the hardware controller.
func Hardware(command string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeHardware, Message: fmt.Sprintf("hardware command %s failed", command),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"command": command}, Cause: cause,
	}
}

// --- Input errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field},
	}
}

// Config creates an error for configuration rejected at startup.
func Config(section string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConfig, Message: fmt.Sprintf("invalid %s configuration", section),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"section": section}, Cause: cause,
	}
}

// --- Operator and infrastructure errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Conflict creates a new AppError for a conflict with the current run state.
func Conflict(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: reason,
		HTTPStatus: http.StatusConflict,
	}
}

// Storage wraps a pick-list or report store failure. These are retryable.
func Storage(op, path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("storage %s %s failed", op, path),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"operation": op, "path": path}, Cause: cause,
	}
}

// Journal wraps a run journal failure.
func Journal(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeJournal, Message: fmt.Sprintf("journal %s failed", op),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"operation": op}, Cause: cause,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err's chain contains an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsRetryable reports whether err's chain contains a retryable AppError.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}
