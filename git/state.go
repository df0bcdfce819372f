package git

import "context"

// ValidateState enforces the guard rails that must hold before any
// planning session starts: HEAD is on a branch and the working tree
// and index are clean. Returns the branch name on success.
func ValidateState(ctx context.Context, e Executor) (string, error) {
	branch, err := e.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}

	clean, err := e.IsClean(ctx)
	if err != nil {
		return "", err
	}

	if !clean {
		return "", ErrDirtyWorkTree()
	}

	return branch, nil
}
