package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRecord marks a record that cannot be evaluated at all: a nil
// record, or one holding values that are not scalars.
var ErrMalformedRecord = errors.New("malformed record")

// ConfigurationError is returned when a scorecard fails the validator's hard
// checks. No record is scored against such a scorecard.
type ConfigurationError struct {
	Errors []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid scorecard: " + e.Errors[0]
	}
	return fmt.Sprintf("invalid scorecard: %d problems: %s", len(e.Errors), strings.Join(e.Errors, "; "))
}
