package listing

import (
	"errors"
	"fmt"
)

// ErrListingNotFound is matched (via errors.Is) by MissingListingError.
var ErrListingNotFound = errors.New("listing not found")

// MissingListingError reports that the snapshot file does not exist.
// It is recoverable: the user regenerates the snapshot and retries.
type MissingListingError struct {
	Path string
	Err  error
}

// Error returns the error message for MissingListingError.
func (e *MissingListingError) Error() string {
	return fmt.Sprintf("listing not found: %s", e.Path)
}

// Is reports whether target is ErrListingNotFound.
func (e *MissingListingError) Is(target error) bool {
	return target == ErrListingNotFound
}

// Unwrap returns the underlying filesystem error, if any.
func (e *MissingListingError) Unwrap() error {
	return e.Err
}

// SyntaxError reports a record delimiter or field whose numeric value
// cannot be represented.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

// Error returns the error message for SyntaxError.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: invalid value in %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}
