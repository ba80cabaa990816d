package commands

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every payload validation failure.
var ErrInvalidInput = errors.New("commands: invalid input")

// ErrNotFound reports that a command addressed an unknown entity.
var ErrNotFound = errors.New("commands: not found")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
