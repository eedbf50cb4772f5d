package sandsnake

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("sandsnake: closed")

// ErrConfig indicates an invalid or incomplete configuration. It is always
// raised at construction time, before any connection is made.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrConfig struct {
	Reason string
	cause  error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ErrConfig) Unwrap() error { return e.cause }

func configError(reason string, cause error) *ErrConfig {
	return &ErrConfig{Reason: reason, cause: cause}
}
