// Package core holds the domain records of the Pocka finance app and the
// pure calculators derived from them: validation, balance folding, goal
// progress, and money formatting.
package core

import (
	"fmt"
	"strings"
)

// FieldError describes a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field-level failure found in a candidate
// record. Validation never stops at the first problem so that a form layer
// can surface all messages at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ErrOrNil returns the collected errors as an error, or nil when empty.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// FieldFor returns the message recorded for a field, if any.
func (v ValidationErrors) FieldFor(field string) (string, bool) {
	for _, e := range v {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}
