// Package git wraps the git porcelain commands the rewrite engine
// needs behind an Executor interface so callers can be tested against
// a fake.
package git

import (
	"context"
	"io"
	"time"
)

// Commit is an immutable snapshot of a single commit's metadata.
// Descriptors are read once per planning session and never re-fetched.
type Commit struct {
	// Hash is the full commit hash.
	Hash string

	// ShortHash is the abbreviated commit hash.
	ShortHash string

	// Subject is the commit summary line.
	Subject string

	// Author is the author name.
	Author string

	// Date is the author timestamp.
	Date time.Time

	// Parents lists the full hashes of all parent commits.
	Parents []string
}

// IsRoot returns true if the commit has no parents.
func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// IsMerge returns true if the commit has more than one parent.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Executor abstracts git operations for testability.
type Executor interface {
	// Log walks the current branch's ancestry from its tip, newest
	// first, returning at most limit commits.
	Log(ctx context.Context, limit int) ([]Commit, error)

	// CommitPatch returns the unified diff between a commit's tree and
	// its first parent's tree (the empty tree for a root commit).
	CommitPatch(ctx context.Context, hash string) (string, error)

	// CurrentBranch returns the checked-out branch name.
	// Fails with a StateError if HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)

	// IsClean reports whether the working tree and index have no
	// uncommitted changes.
	IsClean(ctx context.Context) (bool, error)

	// UpstreamTip resolves the hash of the branch's upstream tracking
	// reference. Returns empty string if no upstream is configured.
	UpstreamTip(ctx context.Context, branch string) (string, error)

	// IsAncestor reports whether commit is an ancestor of (or equal
	// to) tip.
	IsAncestor(ctx context.Context, commit, tip string) (bool, error)

	// RebaseInteractive starts an interactive rebase onto base (or
	// from the root when base is empty) with the given programs wired
	// as GIT_SEQUENCE_EDITOR and GIT_EDITOR. Returns combined output.
	RebaseInteractive(
		ctx context.Context, base, seqEditor, msgEditor string,
	) (string, error)

	// RebaseInProgress reports whether an interactive rebase is
	// currently paused. Uses the rebase-merge state directory, not
	// status text.
	RebaseInProgress(ctx context.Context) (bool, error)

	// RebaseContinue resumes a paused rebase with msgEditor wired as
	// GIT_EDITOR, so later reword and squash stops in the same replay
	// still reach the message hook. Returns combined output.
	RebaseContinue(ctx context.Context, msgEditor string) (string, error)

	// RebaseStoppedCommit returns the hash recorded for the commit the
	// rebase is currently stopped at, possibly abbreviated. Returns
	// empty string when no stop is recorded.
	RebaseStoppedCommit(ctx context.Context) (string, error)

	// RebaseAbort aborts a paused rebase.
	RebaseAbort(ctx context.Context) error

	// ResetToParent resets HEAD and the index to HEAD's parent,
	// leaving the commit's changes in the working tree.
	ResetToParent(ctx context.Context) error

	// ResetHard discards all working tree and index changes,
	// restoring the HEAD tree.
	ResetHard(ctx context.Context) error

	// ApplyPatch applies a patch to the staging area.
	// The patch is read from the provided reader.
	ApplyPatch(ctx context.Context, patch io.Reader) error

	// Commit creates a commit from the index with the given message.
	Commit(ctx context.Context, message string) error

	// Root returns the repository root directory.
	Root(ctx context.Context) (string, error)
}
