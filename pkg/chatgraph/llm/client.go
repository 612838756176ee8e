// Package llm provides the chat model clients used by workflow nodes.
//
// Nodes receive a Client when they are constructed; the graph engine itself
// never talks to a model.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client sends chat completion requests to a model provider.
// Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ErrEmptyResponse indicates the provider returned no choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Error wraps a provider failure with the operation and whether retrying may help.
type Error struct {
	// Op is the client operation that failed.
	Op string
	// Err is the underlying error.
	Err error
	// Retryable is set for rate limits, server errors, and request timeouts.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an *Error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether err is a retryable *Error.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}
