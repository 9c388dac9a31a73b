package highlight

import (
	"errors"
	"fmt"
)

// ErrDecorationApply indicates the editor rejected a decoration request.
var ErrDecorationApply = errors.New("decoration apply failed")

// ApplyError describes a failed Apply call.
type ApplyError struct {
	// Buffer is the target buffer.
	Buffer Buffer
	// Batch is the id of the batch that could not be applied.
	Batch string
	// Err is the error returned by the decorator.
	Err error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply batch %s to buffer %d: %v", e.Batch, e.Buffer, e.Err)
}

// Unwrap returns both the sentinel and the decorator error.
func (e *ApplyError) Unwrap() []error {
	return []error{ErrDecorationApply, e.Err}
}
