package search

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery rejects requests with no text and no filters.
// It is one of only two caller-visible validation errors.
var ErrEmptyQuery = errors.New("query must include text or at least one filter")

// OutOfRangeError reports a numeric or enum filter outside its valid
// domain, naming the offending field. It is the second caller-visible
// validation error.
type OutOfRangeError struct {
	Field  string
	Reason string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s out of range: %s", e.Field, e.Reason)
}

// outOfRange is a convenience constructor.
func outOfRange(field, format string, args ...interface{}) error {
	return &OutOfRangeError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
