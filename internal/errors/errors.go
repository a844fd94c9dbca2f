package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/lifeos/internal/logger"
)

var (
	// ErrParseFailure is returned when input matches no recognized date/time grammar
	ErrParseFailure = stderrors.New("could not parse input")
	// ErrMalformedRecord marks a stored row with fewer fields than its sheet requires
	ErrMalformedRecord = stderrors.New("malformed record")
	// ErrExternalIO wraps failures of the record store, calendar or notification sink
	ErrExternalIO = stderrors.New("external I/O failure")
	// ErrConfigurationMissing is returned when a required identifier is not configured
	ErrConfigurationMissing = stderrors.New("configuration missing")
	// ErrNotFound is returned when a lookup by id matches nothing
	ErrNotFound = stderrors.New("not found")
)

// IO wraps err as an ExternalIOFailure with the operation that produced it
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrExternalIO, err)
}

// Missing reports a configuration value that must be set before use
func Missing(what string) error {
	return fmt.Errorf("%w: %s not configured", ErrConfigurationMissing, what)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
