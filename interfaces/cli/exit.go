package cli

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1 // the command ran and found problems
	ExitError   = 2 // the command could not run
)

// ExitCodeError carries the process exit code for a failed command.
type ExitCodeError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code for err. Errors without one exit with ExitError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitError
}
