package person

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue is matched by errors whose scalar text does not map
	// to its target type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrMalformedRecord is matched by every error returned from Build.
	ErrMalformedRecord = errors.New("malformed record")
)

// ValueError reports a single field value that could not be converted.
type ValueError struct {
	Kind  string // Target type, e.g. "gender"
	Value string // Raw input
	Err   error  // Optional underlying cause
}

func (e *ValueError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: value is empty", e.Kind)
	}
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Value)
}

// Unwrap exposes both ErrInvalidValue and the underlying cause.
func (e *ValueError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidValue}
	}
	return []error{ErrInvalidValue, e.Err}
}

// RecordError reports why a field slice could not become a Person.
type RecordError struct {
	Field  string // Role of the offending field: "id", "birth date", ...
	Value  string // Raw field text (empty for field count failures)
	Reason string // Short human-readable cause
	Err    error  // Underlying cause, may be nil
}

func (e *RecordError) Error() string {
	msg := "malformed record: " + e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("malformed record: %s: %s", e.Field, e.Reason)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrMalformedRecord and the underlying cause.
func (e *RecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRecord}
	}
	return []error{ErrMalformedRecord, e.Err}
}

func malformed(field, value, reason string, err error) *RecordError {
	return &RecordError{Field: field, Value: value, Reason: reason, Err: err}
}
