package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/logger"
)

var (
	// ErrNotLoaded is returned when a store is used before Load
	ErrNotLoaded = errors.New("storage not loaded")
	// ErrUnsupportedVersion is returned when a snapshot was written by a different schema version
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrCorruptSnapshot is returned when stored habits break a structural invariant
	ErrCorruptSnapshot = errors.New("corrupt habit data")
	// ErrClosed is returned by mutations after the store was closed
	ErrClosed = errors.New("store closed")
)

// ValidationError reports caller input rejected before any state change
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a *ValidationError
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Is and As mirror the standard library so callers only import one errors package
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
