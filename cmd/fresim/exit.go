package main

import (
	"errors"
	"fmt"

	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/storage"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution, breaches included
	ExitFailure      = 1 // Run aborted by a hard invariant violation
	ExitCommandError = 2 // Bad flags, config or run id
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors without one are
// classified by their sentinel.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch {
	case errors.Is(err, sim.ErrInvalidParameter),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrAmbiguous):
		return ExitCommandError
	default:
		return ExitFailure
	}
}
