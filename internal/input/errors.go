package input

import "errors"

// Core errors.
var (
	// ErrInvalidState indicates an operation that the current state forbids,
	// such as attaching a second recorder to a target.
	ErrInvalidState = errors.New("invalid state")

	// ErrOutOfRange indicates a lookup of an entry that does not exist.
	ErrOutOfRange = errors.New("out of range")
)
