package service

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords so login failures never reveal which field was wrong.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("Email already in use")
)

// ValidationError carries a user-facing message naming the violated rule.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationError(reason string) error {
	return &ValidationError{Reason: reason}
}
