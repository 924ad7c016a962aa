package database

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/liquidkit/errors"
)

// IsNotFoundError reports whether err is GORM's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a database error to an AppError: a missing record
// becomes NOT_FOUND for resource/id, anything else a JOURNAL_ERROR for op.
func FromDatabase(err error, op, resource, id string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if IsNotFoundError(err) {
		return apperrors.NotFound(resource, id).WithCause(err)
	}
	return apperrors.Journal(op, err)
}
