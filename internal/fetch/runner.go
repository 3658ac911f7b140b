package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Runner retrieves one device file to a local path.
type Runner interface {
	Retrieve(ctx context.Context, id int64, dest string) error
}

// ExitStatusError reports a retrieval command that exited non-zero.
type ExitStatusError struct {
	Code int
}

// Error returns the error message for ExitStatusError.
func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("retrieve command exited with status %d", e.Code)
}

// ShellRunner runs a shell command template once per record.
// The template sees the object id as $1 and the destination path as $2:
//
//	mtp-getfile "$1" "$2"
//
// The template is parsed once and interpreted with mvdan.cc/sh, so it may
// use pipes, redirections and builtins without depending on /bin/sh.
type ShellRunner struct {
	// Timeout bounds each retrieval (0 = no limit)
	Timeout time.Duration

	// Dir is the working directory of the command (empty = current directory)
	Dir string

	// Stdout and Stderr receive the command's output (nil = discarded)
	Stdout io.Writer
	Stderr io.Writer

	command string
	prog    *syntax.File
}

// NewShellRunner parses command and returns a runner for it.
func NewShellRunner(command string) (*ShellRunner, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("retrieve command is empty")
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "retrieve_command")
	if err != nil {
		return nil, fmt.Errorf("failed to parse retrieve command: %w", err)
	}

	return &ShellRunner{command: command, prog: prog}, nil
}

// Command returns the template the runner executes.
func (r *ShellRunner) Command() string {
	return r.command
}

// Retrieve runs the template with id and dest as positional parameters.
func (r *ShellRunner) Retrieve(ctx context.Context, id int64, dest string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	stdout, stderr := r.Stdout, r.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	// "--" keeps a destination starting with "-" from being read as an option
	opts := []interp.RunnerOption{
		interp.StdIO(nil, stdout, stderr),
		interp.Params("--", strconv.FormatInt(id, 10), dest),
	}
	if r.Dir != "" {
		opts = append(opts, interp.Dir(r.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, r.prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return &ExitStatusError{Code: int(status)}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("retrieve command interrupted: %w", ctxErr)
		}
		return fmt.Errorf("retrieve command failed: %w", err)
	}

	return nil
}
