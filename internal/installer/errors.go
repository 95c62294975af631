package installer

import (
	"errors"
	"fmt"

	"mclang-up/internal/prompt"
)

// ErrUserAborted is returned when the user declines the confirmation prompt.
// It is an ordinary stop, not a failure.
var ErrUserAborted = errors.New("aborted by user")

// ErrInvalidBranch is returned when the chosen branch is not in the manifest.
// It matches prompt.ErrInvalidInput with errors.Is.
var ErrInvalidBranch = fmt.Errorf("%w: unsupported branch", prompt.ErrInvalidInput)

// FSError reports a failed directory creation, removal, copy or extraction.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error {
	return e.Err
}

func fsError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FSError{Op: op, Path: path, Err: err}
}
