package normalize

import (
	"fmt"
	"strings"
)

// ParsingError reports a raw record that could not be normalized: required
// fields missing or a value that cannot be interpreted. The orchestrator
// catches these per record and keeps going.
type ParsingError struct {
	Entity string
	Fields []string
	Reason string
}

func (e *ParsingError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("failed to normalize %s: missing required fields: %s",
			e.Entity, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("failed to normalize %s: %s", e.Entity, e.Reason)
}

func missingFields(entity string, fields []string) *ParsingError {
	return &ParsingError{Entity: entity, Fields: fields}
}

func parseFailure(entity, reason string) *ParsingError {
	return &ParsingError{Entity: entity, Reason: reason}
}
