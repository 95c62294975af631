package exitcode

import (
	"errors"
	"os"
)

// Exit codes of the mclang-up command
const (
	// Success indicates the requested install or update completed
	Success = 0

	// Failure indicates an install or update step failed
	Failure = 1

	// UsageError indicates invalid command usage (bad flags, unknown component, unreadable manifest)
	UsageError = 2

	// Aborted indicates the user declined the confirmation prompt
	Aborted = 3
)

// Error attaches an exit code to err.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithCode wraps err so that DetermineExitCode returns code for it. A nil err stays nil.
func WithCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// DetermineExitCode returns the exit code for err: Success for nil, the attached code
// for errors wrapped with WithCode, Failure otherwise.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return Failure
}
