package application

import (
	"errors"
	"fmt"
)

var (
	// ErrCategoryNotFound is returned when an operation names a category id that does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNoQuestions is returned when a quiz cannot be started because no questions are available.
	ErrNoQuestions = errors.New("no questions available")
)

// ValidationError reports caller input that was rejected before reaching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
