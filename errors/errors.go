package errors

import "fmt"

// Failure kinds. Specific failures wrap one of these so callers can
// classify with errors.Is without parsing messages.
var (
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotFound        = fmt.Errorf("not found")
)

var (
	ErrEmptyName    = fmt.Errorf("%w: names must not be empty", ErrInvalidArgument)
	ErrEmptyMessage = fmt.Errorf("%w: messages must not be empty", ErrInvalidArgument)
	ErrUnknownUser  = fmt.Errorf("%w: cannot set name for unknown user", ErrNotFound)

	// ErrRowExists reports an insert collision on a key the lifecycle
	// contract guarantees is unseen. Never a user-facing rejection.
	ErrRowExists = fmt.Errorf("row already exists")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
