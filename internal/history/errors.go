package history

import "errors"

var (
	// ErrNotFound indicates no record exists for the requested id.
	ErrNotFound = errors.New("verification not found")
	// ErrDuplicate indicates a record with the same id was already appended.
	ErrDuplicate = errors.New("verification already recorded")
)
