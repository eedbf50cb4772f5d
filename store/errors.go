package store

import "fmt"

// ErrConnection indicates a transport failure reaching a backend host.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrConnection struct {
	Addr  string
	cause error
}

// NewConnectionError wraps a transport failure for the given host.
func NewConnectionError(addr string, cause error) *ErrConnection {
	return &ErrConnection{Addr: addr, cause: cause}
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.cause)
}

func (e *ErrConnection) Unwrap() error { return e.cause }

// ErrBackend indicates a malformed or unexpected response from the storage
// engine itself, e.g. an operation against a key of the wrong type.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrBackend struct {
	Addr  string
	cause error
}

// NewBackendError wraps an engine-level error for the given host.
func NewBackendError(addr string, cause error) *ErrBackend {
	return &ErrBackend{Addr: addr, cause: cause}
}

func (e *ErrBackend) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Addr, e.cause)
}

func (e *ErrBackend) Unwrap() error { return e.cause }
