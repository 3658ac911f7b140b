package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/mtpget/internal/config"
	"github.com/harrison/mtpget/internal/display"
	"github.com/harrison/mtpget/internal/listing"
)

// Process exit codes
const (
	ExitFailure        = 1
	ExitMissingListing = 2
	ExitNothingToFetch = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
// A nil Err means the command already reported the problem.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// lookupError turns a snapshot lookup failure into the command's result.
// A missing snapshot is reported as an actionable warning.
func lookupError(cmd *cobra.Command, cfg *config.Config, err error) error {
	var missing *listing.MissingListingError
	if errors.As(err, &missing) {
		display.MissingListingWarning(missing.Path, cfg.CaptureCommand).Display(cmd.ErrOrStderr())
		return &ExitError{Code: ExitMissingListing}
	}
	return err
}
