// Package tui implements the interactive plan builder: a modal
// terminal session for assigning rebase actions, reordering commits,
// editing messages, and partitioning a commit's hunks into split
// groups. The session produces a finalized plan plus a cache of
// decomposed hunks, or a cancellation.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/K-NRS/repo-cli/diff"
	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/plan"
)

// Mode identifies the builder's current modal state. Exactly one mode
// handler owns each input event.
type Mode int

const (
	// ModeCommitList is the initial state: cursor over the loaded
	// commits.
	ModeCommitList Mode = iota
	// ModeActionMenu chooses an action for the cursor commit.
	ModeActionMenu
	// ModeRewordEdit edits the cursor commit's message.
	ModeRewordEdit
	// ModeSplitView partitions the cursor commit's hunks into groups.
	ModeSplitView
	// ModeSquashTarget selects the commit to squash into.
	ModeSquashTarget
	// ModeReorder moves the cursor commit earlier or later.
	ModeReorder
	// ModePreview shows the compiled plan before execution.
	ModePreview
)

// Outcome is the session's terminal result.
type Outcome struct {
	// Execute is true when the user confirmed the plan.
	Execute bool

	// Entries is the finalized plan in display order (newest first).
	Entries []plan.Entry

	// HunkCache holds decomposed hunks for split commits, keyed by
	// original index.
	HunkCache map[int][]diff.FileHunk
}

// Loader supplies commit diffs on demand during planning.
type Loader interface {
	// CommitPatch returns the raw patch text for a commit.
	CommitPatch(hash string) (string, error)

	// CommitHunks decomposes a commit's patch into file-scoped hunks.
	CommitHunks(hash string) ([]diff.FileHunk, error)
}

// GitLoader implements Loader over a git Executor.
type GitLoader struct {
	// Ctx bounds the underlying git invocations.
	Ctx context.Context

	// Git performs the repository reads.
	Git git.Executor
}

// CommitPatch returns the raw patch text for a commit.
func (l *GitLoader) CommitPatch(hash string) (string, error) {
	return l.Git.CommitPatch(l.Ctx, hash)
}

// CommitHunks decomposes a commit's patch into file-scoped hunks.
func (l *GitLoader) CommitHunks(hash string) ([]diff.FileHunk, error) {
	text, err := l.Git.CommitPatch(l.Ctx, hash)
	if err != nil {
		return nil, &diff.ParseError{Commit: hash, Err: err}
	}

	hunks, err := diff.DecomposeCommitPatch(text)
	if err != nil {
		return nil, &diff.ParseError{Commit: hash, Err: err}
	}

	return hunks, nil
}

// Run drives a planning session to completion and returns its outcome.
func Run(commits []git.Commit, preselect int, loader Loader) (*Outcome, error) {
	model := New(commits, preselect, loader)

	prog := tea.NewProgram(model, tea.WithAltScreen())

	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("plan builder failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected final model type %T", final)
	}

	return m.Outcome(), nil
}
