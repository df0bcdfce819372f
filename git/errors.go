package git

// StateError reports a repository state that prevents a planning
// session from starting: detached HEAD, dirty working tree, or a
// branch with no walkable history.
type StateError struct {
	// Reason describes what is wrong with the repository state.
	Reason string
}

// Error returns the user-facing description.
func (e *StateError) Error() string {
	return e.Reason
}

// ErrDetachedHead creates a StateError for a detached HEAD.
func ErrDetachedHead() *StateError {
	return &StateError{Reason: "detached HEAD: check out a branch first"}
}

// ErrDirtyWorkTree creates a StateError for uncommitted changes.
func ErrDirtyWorkTree() *StateError {
	return &StateError{
		Reason: "dirty working tree: commit or stash changes first",
	}
}

// ErrNoCommits creates a StateError for an empty branch.
func ErrNoCommits() *StateError {
	return &StateError{Reason: "branch has no commits"}
}
