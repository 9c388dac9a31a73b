package yank

import (
	"errors"
	"fmt"
)

// Errors returned when an event cannot be highlighted.
var (
	// ErrNotAYankOperation indicates the event came from a delete or change.
	ErrNotAYankOperation = errors.New("not a yank operation")

	// ErrInvalidShapeTag indicates the register type is empty.
	ErrInvalidShapeTag = errors.New("invalid shape tag")

	// ErrNoFragments indicates a copy without any register contents.
	ErrNoFragments = errors.New("yank has no fragments")
)

// LineError reports a failed read of a buffer line.
type LineError struct {
	// Line is the 1-based line number that was requested.
	Line int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("reading line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}
