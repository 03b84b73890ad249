package mapper

import "errors"

var (
	// ErrObjectNotFound is returned when the primary record does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBrokenLink is returned when a foreign key points at a missing record.
	ErrBrokenLink = errors.New("broken link")

	// ErrMissingLink is returned by Create when a link has neither a part to
	// create nor a foreign key to an existing record.
	ErrMissingLink = errors.New("missing link")

	// ErrUnknownTable is returned for parts addressing a table outside the schema.
	ErrUnknownTable = errors.New("unknown table")

	// ErrCompensationFailed is joined to the original error when undoing a
	// partially applied write failed too.
	ErrCompensationFailed = errors.New("compensation failed")
)
