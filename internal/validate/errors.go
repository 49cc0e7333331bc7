package validate

import (
	"fmt"
	"strings"
)

// MissingFieldsError names every required key the record did not carry.
type MissingFieldsError struct {
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// InvalidAmountError is an amount that could not be coerced to a number.
type InvalidAmountError struct {
	Field string
	Value any
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount in %q: %v", e.Field, e.Value)
}

// InvalidFieldError is a record that is not an object or whose fields have
// the wrong JSON types.
type InvalidFieldError struct {
	Reason string
	Err    error
}

func (e *InvalidFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid field: %s: %v", e.Reason, e.Err)
	}
	return "invalid field: " + e.Reason
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Err
}
