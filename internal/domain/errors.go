package domain

import "errors"

var (
	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("entry not found")
	// ErrValidation wraps every input rejection.
	ErrValidation = errors.New("validation failed")
	// ErrStore wraps persistence failures.
	ErrStore = errors.New("store failure")
)

// Machine-readable error codes carried in API error bodies.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeStore      = "STORE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// ErrorCode maps err onto one of the Code constants.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrStore):
		return CodeStore
	default:
		return CodeInternal
	}
}
