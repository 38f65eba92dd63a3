package services

import "errors"

// ValidationError marks a request rejected by validation rather than a
// storage failure, so the API layer can answer 400 instead of 500.
type ValidationError struct {
	Scope string
	Err   error
}

func NewValidationError(scope string, err error) *ValidationError {
	return &ValidationError{Scope: scope, Err: err}
}

func (e *ValidationError) Error() string {
	return e.Scope + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}
