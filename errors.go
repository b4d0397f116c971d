package debounce

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is wrapped by all errors returned for invalid wait, maxWait
// or function arguments.
var ErrInvalidConfig = errors.New("debounce: invalid configuration")

func invalidConfig(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}

// PanicError is reported to the error handler when the debounced function
// panics during a trailing invocation.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("debounce: function panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
