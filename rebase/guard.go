package rebase

import (
	"context"

	"github.com/K-NRS/repo-cli/git"
)

// CountPushed reports how many of the touched commits are already
// reachable from the current branch's upstream tracking tip. A
// non-zero count means the rewrite will require a force-push; the
// caller warns but does not fail.
//
// Resolution errors are treated as "no upstream": the guard never
// blocks a rewrite.
func CountPushed(
	ctx context.Context,
	g git.Executor,
	commits []git.Commit,
	touched []int,
) int {

	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		return 0
	}

	tip, err := g.UpstreamTip(ctx, branch)
	if err != nil || tip == "" {
		return 0
	}

	pushed := 0

	for _, idx := range touched {
		if idx < 0 || idx >= len(commits) {
			continue
		}

		ancestor, err := g.IsAncestor(ctx, commits[idx].Hash, tip)
		if err == nil && ancestor {
			pushed++
		}
	}

	return pushed
}
