package rebase

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/K-NRS/repo-cli/diff"
	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/plan"
)

// Runner executes a finalized plan against git's interactive rebase.
type Runner struct {
	// Git performs the repository operations.
	Git git.Executor

	// Exe is the path to this binary, re-invoked by git as the
	// sequence-editor and message-editor hooks.
	Exe string

	// Warn receives non-fatal warnings. Defaults to os.Stderr.
	Warn io.Writer
}

// Run executes the plan. commits is the immutable loaded list in
// original order; entries is the plan in final display order (newest
// first); cache holds decomposed hunks for split commits, keyed by
// original index.
//
// Returns paused=true when the rebase is intentionally left at an
// edit stop for manual amending. The temporary staging directory is
// removed on every path.
func (r *Runner) Run(
	ctx context.Context,
	commits []git.Commit,
	entries []plan.Entry,
	cache map[int][]diff.FileHunk,
) (paused bool, err error) {

	if len(entries) == 0 {
		return false, nil
	}

	if err := plan.Validate(entries); err != nil {
		return false, err
	}

	tmpDir, err := os.MkdirTemp("", "repo-craft-*")
	if err != nil {
		return false, &ScriptError{Path: "temp dir", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	staging, recipes, err := BuildStaging(tmpDir, commits, entries, cache)
	if err != nil {
		return false, err
	}

	// Base is the parent of the oldest commit in the plan, or a root
	// rebase when that commit has no parent.
	base := ""
	oldest := commits[plan.OldestIndex(entries)]
	if !oldest.IsRoot() {
		base = oldest.Parents[0]
	}

	seqEditor := fmt.Sprintf(
		"%s _seq-edit %s", r.Exe, staging.SequencePath,
	)
	msgEditor := fmt.Sprintf("%s _msg-edit %s", r.Exe, staging.MessageDir)

	out, runErr := r.Git.RebaseInteractive(ctx, base, seqEditor, msgEditor)
	if runErr != nil {
		return false, classify(out)
	}

	for _, recipe := range recipes {
		if err := r.runSplit(ctx, recipe, msgEditor); err != nil {
			return false, err
		}
	}

	// A user-assigned edit stop legitimately leaves the rebase
	// paused; anything else still in progress is a failure.
	inProgress, err := r.Git.RebaseInProgress(ctx)
	if err != nil {
		return false, err
	}

	if inProgress {
		if hasEditAction(entries) {
			return true, nil
		}

		return false, &FailedError{
			Output: "rebase unexpectedly still in progress",
		}
	}

	return false, nil
}

// runSplit replays one split recipe at the current edit stop: undo
// the single replayed commit, recreate it as one commit per group,
// then resume the rebase. msgEditor stays wired on continue so later
// reword and squash stops keep reaching the message hook.
func (r *Runner) runSplit(
	ctx context.Context, recipe SplitRecipe, msgEditor string,
) error {

	inProgress, err := r.Git.RebaseInProgress(ctx)
	if err != nil {
		return err
	}
	if !inProgress {
		return &FailedError{Output: fmt.Sprintf(
			"expected edit stop for split of %s, but no rebase is in progress",
			recipe.Commit,
		)}
	}

	// A manual Edit stop scheduled before the split commit would reach
	// here first. Refuse rather than reset the wrong commit.
	stopped, err := r.Git.RebaseStoppedCommit(ctx)
	if err != nil {
		return err
	}
	if stopped != "" && !sameCommit(stopped, recipe.Commit) {
		return &FailedError{Output: fmt.Sprintf(
			"rebase stopped at %s, expected split commit %s; "+
				"finish the edit stop manually and re-run",
			stopped, recipe.Commit,
		)}
	}

	if err := r.Git.ResetToParent(ctx); err != nil {
		return err
	}

	for _, step := range recipe.Steps {
		f, err := os.Open(step.PatchPath)
		if err != nil {
			return &ScriptError{Path: step.PatchPath, Err: err}
		}

		applyErr := r.Git.ApplyPatch(ctx, f)
		f.Close()
		if applyErr != nil {
			return applyErr
		}

		if err := r.Git.Commit(ctx, step.Message); err != nil {
			return err
		}
	}

	if recipe.Unassigned > 0 {
		fmt.Fprintf(r.warn(),
			"! dropping %d unassigned hunk(s) from %s\n",
			recipe.Unassigned, recipe.Commit,
		)

		if err := r.Git.ResetHard(ctx); err != nil {
			return err
		}
	}

	out, continueErr := r.Git.RebaseContinue(ctx, msgEditor)
	if continueErr != nil {
		return classify(out)
	}

	return nil
}

// sameCommit matches a possibly abbreviated hash against a full one.
func sameCommit(stopped, full string) bool {
	if len(stopped) > len(full) {
		return false
	}

	return strings.HasPrefix(full, stopped)
}

func (r *Runner) warn() io.Writer {
	if r.Warn != nil {
		return r.Warn
	}

	return os.Stderr
}

// hasEditAction reports whether any entry requests a manual edit stop.
func hasEditAction(entries []plan.Entry) bool {
	for _, e := range entries {
		if e.Action.Kind == plan.Edit {
			return true
		}
	}

	return false
}
