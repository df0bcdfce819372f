// Package rebase compiles a finalized rewrite plan into the control
// scripts that drive git's interactive rebase non-interactively, and
// executes the rewrite.
package rebase

import (
	"fmt"
	"strings"
)

// ScriptError reports a failure writing a temporary script or patch
// file. It aborts the session before the external engine is invoked.
type ScriptError struct {
	// Path is the file that could not be written.
	Path string

	// Err is the underlying I/O failure.
	Err error
}

// Error returns the user-facing description.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ConflictError reports that the rebase stopped on unresolved
// conflicts. The rewrite must be finished or abandoned manually.
type ConflictError struct {
	// Output is the combined rebase output.
	Output string
}

// Error returns the description plus the manual-resolution path.
func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"rebase conflict:\n%s\nresolve manually:\n"+
			"  git rebase --continue\n  git rebase --abort",
		e.Output,
	)
}

// FailedError reports any other non-success exit from the rebase.
type FailedError struct {
	// Output is the combined rebase output.
	Output string
}

// Error returns the captured output verbatim for diagnosis.
func (e *FailedError) Error() string {
	return fmt.Sprintf("rebase failed:\n%s", e.Output)
}

// classify turns a non-success rebase exit into the right error type
// by inspecting the combined output for conflict markers.
func classify(output string) error {
	if containsConflictMarker(output) {
		return &ConflictError{Output: output}
	}

	return &FailedError{Output: output}
}

// containsConflictMarker reports whether rebase output indicates
// unresolved conflicts rather than some other failure.
func containsConflictMarker(output string) bool {
	return strings.Contains(output, "CONFLICT") ||
		strings.Contains(output, "could not apply")
}
