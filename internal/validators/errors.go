package validators

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrUnsupportedType  = errors.New("unsupported type for validation")
	ErrUnknownField     = errors.New("unknown field for validation")
	ErrNoFieldsToUpdate = errors.New("at least one field must be provided for update")

	// ErrInvalidInput is the sentinel every *ValidationError unwraps to.
	ErrInvalidInput = errors.New("invalid input")
)

// Field-level messages of a ValidationError.
const (
	MsgRequired  = "is required"
	MsgReadOnly  = "is read-only"
	MsgImmutable = "cannot be changed"
	MsgUnknown   = "is not a known field"
	MsgNotNull   = "must not be null"
)

// PayloadField is the key used for errors about the payload as a whole.
const PayloadField = "payload"

// ValidationError collects field-keyed validation messages.
// The HTTP layer renders it as {"errors": {field: message}}.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an error holding a single field message.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

// Add records message for field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Err returns e, or nil when no message was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
