package cvs

import "errors"

var (
	// ErrNotFound reports that the requested row does not exist. Repositories
	// return it for absent ids; the service layer treats it as a normal
	// result, distinct from storage failures.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput reports an incomplete or malformed payload.
	ErrInvalidInput = errors.New("invalid input")
)
