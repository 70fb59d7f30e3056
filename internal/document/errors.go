package document

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("document not found")
)

// ValidationError reports a missing or malformed field in a request.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Detail
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Detail)
}

// Invalid builds a *ValidationError.
func Invalid(field, detail string) error {
	return &ValidationError{Field: field, Detail: detail}
}
