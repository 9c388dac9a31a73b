package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoEditor is returned when the script has not defined the editor table.
	ErrNoEditor = errors.New("lua global 'editor' is not a table")
)

// CallbackError reports a failed call into an editor callback.
type CallbackError struct {
	// Name is the editor table field that was called.
	Name string
	// Err is the underlying Lua error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("editor.%s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}
