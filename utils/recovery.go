package utils

import (
	"fmt"
	"runtime/debug"
)

// RecoverFromPanic recovers from panics and logs them. It must be deferred
// directly. When errp is non-nil the panic is stored there as an error.
func RecoverFromPanic(logger *Logger, context string, errp *error) {
	if r := recover(); r != nil {
		stack := debug.Stack()
		logger.Error("Panic recovered in %s: %v\nStack trace:\n%s", context, r, string(stack))
		if errp != nil {
			*errp = fmt.Errorf("%s: panic: %v", context, r)
		}
	}
}

// RunSafely runs fn and converts a panic into an error
func RunSafely(logger *Logger, context string, fn func() error) (err error) {
	defer RecoverFromPanic(logger, context, &err)
	return fn()
}

// WrapError wraps an error with additional context
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
