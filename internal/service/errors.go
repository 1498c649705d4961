package service

import (
	"database/sql"
	"errors"
	"fmt"

	"mailroom/internal/database"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrForbidden            = errors.New("forbidden")
	ErrConflict             = errors.New("conflict")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrKYCRequired          = errors.New("identity verification required")
	ErrSubscriptionRequired = errors.New("active subscription required")
)

// ValidationError reports a caller mistake on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// repoErr translates storage errors into service sentinels.
// Anything unrecognised is wrapped with op for the logs.
func repoErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case database.IsUniqueViolation(err):
		return ErrConflict
	case database.IsForeignKeyViolation(err):
		return invalid("", "referenced resource does not exist")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
