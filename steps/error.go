package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/errwrap"
)

// ErrNoCallback is returned when a leaf step has no callback configured
var ErrNoCallback = errors.New("no callback configured for this step")

// ErrNoProject is returned when a leaf step has no project assigned
var ErrNoProject = errors.New("no project assigned to this step")

// IsCanceled returns true when this error contains or is an error
// that means execution was canceled
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return errwrap.Contains(err, context.Canceled.Error()) ||
		errwrap.Contains(err, context.DeadlineExceeded.Error())
}

// ExecErr creates a new external process error
func ExecErr(argv []string, retcode int, stdout, stderr string) *ExecError {
	return &ExecError{Argv: argv, RetCode: retcode, Stdout: stdout, Stderr: stderr}
}

// IsExecError returns true when the error was caused by a shelled out
// command exiting with a non-zero status
func IsExecError(err error) bool {
	var ee *ExecError
	return errors.As(err, &ee)
}

// ExecError describes a failed invocation of an external command
type ExecError struct {
	Argv    []string
	RetCode int
	Stdout  string
	Stderr  string
}

func (e *ExecError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command %q exited with %d", strings.Join(e.Argv, " "), e.RetCode)
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		fmt.Fprintf(&b, "\nstdout: %s", e.Stdout)
	}
	return b.String()
}
