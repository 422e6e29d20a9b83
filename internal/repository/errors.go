package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible to the requesting owner.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when creating a user with an email that
	// already exists.
	ErrEmailTaken = errors.New("email already in use")
)
