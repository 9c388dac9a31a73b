package vimchan

import (
	"errors"
	"fmt"
)

// Errors returned by the channel.
var (
	// ErrClosed is returned when the channel has been closed.
	ErrClosed = errors.New("vim channel closed")

	// ErrMalformed indicates a message that is not a JSON array.
	ErrMalformed = errors.New("malformed channel message")
)

// RemoteError reports a request Vim answered with "ERROR".
type RemoteError struct {
	// Request is the expression or function that failed.
	Request string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("vim failed to evaluate %s", e.Request)
}
