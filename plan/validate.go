package plan

import "fmt"

// ValidationError reports a locally-recoverable plan defect. The plan
// builder shows the message inline and leaves the plan unchanged.
type ValidationError struct {
	Msg string
}

// Error returns the user-facing description.
func (e *ValidationError) Error() string {
	return e.Msg
}

// Validate checks plan-wide invariants before script generation:
// every entry carries a valid action, squash and fixup targets
// reference a different entry, and split actions have at least one
// non-empty group.
func Validate(entries []Entry) error {
	seen := make(map[int]bool, len(entries))

	for _, e := range entries {
		if seen[e.OriginalIndex] {
			return &ValidationError{Msg: fmt.Sprintf(
				"duplicate entry for commit %d", e.OriginalIndex,
			)}
		}
		seen[e.OriginalIndex] = true

		if err := validateAction(e); err != nil {
			return err
		}
	}

	return nil
}

func validateAction(e Entry) error {
	switch e.Action.Kind {
	case Squash, Fixup:
		if e.Action.Into == e.OriginalIndex {
			return &ValidationError{Msg: fmt.Sprintf(
				"%s cannot target its own commit", e.Action.Kind,
			)}
		}

	case Split:
		nonEmpty := 0
		for _, g := range e.Action.Groups {
			if len(g.HunkIndices) > 0 {
				nonEmpty++
			}
		}

		if nonEmpty == 0 {
			return &ValidationError{
				Msg: "split has no hunks assigned to any group",
			}
		}
	}

	return nil
}
