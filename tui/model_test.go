package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/K-NRS/repo-cli/diff"
	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/plan"
)

// fakeLoader serves canned patches and hunks.
type fakeLoader struct {
	patches map[string]string
	hunks   map[string][]diff.FileHunk
	err     error
}

func (l *fakeLoader) CommitPatch(hash string) (string, error) {
	if l.err != nil {
		return "", l.err
	}

	return l.patches[hash], nil
}

func (l *fakeLoader) CommitHunks(hash string) ([]diff.FileHunk, error) {
	if l.err != nil {
		return nil, l.err
	}

	return l.hunks[hash], nil
}

func threeCommits() []git.Commit {
	return []git.Commit{
		{Hash: "ccc", ShortHash: "ccc3333", Subject: "Third", Parents: []string{"bbb"}},
		{Hash: "bbb", ShortHash: "bbb2222", Subject: "Second", Parents: []string{"aaa"}},
		{Hash: "aaa", ShortHash: "aaa1111", Subject: "First"},
	}
}

func twoHunks() []diff.FileHunk {
	return []diff.FileHunk{
		{
			Path: "main.go",
			Hunk: &diff.Hunk{
				OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 2,
				Lines: []diff.DiffLine{
					{Op: diff.OpContext, Content: "package main"},
					{Op: diff.OpAdd, Content: "// added"},
				},
			},
		},
		{
			Path: "util.go",
			Hunk: &diff.Hunk{
				OldStart: 3, OldLines: 1, NewStart: 4, NewLines: 2,
				Lines: []diff.DiffLine{
					{Op: diff.OpContext, Content: "kept"},
					{Op: diff.OpAdd, Content: "new"},
				},
			},
		},
	}
}

func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press feeds a key sequence through the model.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()

	for _, k := range keys {
		next, _ := m.Update(key(k))

		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}

	return m
}

func TestNewPreselects(t *testing.T) {
	m := New(threeCommits(), 2, &fakeLoader{})

	require.Equal(t, []bool{true, true, false}, m.selected)
	require.Equal(t, ModeCommitList, m.mode)
}

func TestCommitListNavigation(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "j", "j")
	require.Equal(t, 2, m.cursor)

	// Cursor clamps at the ends.
	m = press(t, m, "j")
	require.Equal(t, 2, m.cursor)

	m = press(t, m, "k", "k", "k")
	require.Equal(t, 0, m.cursor)
}

func TestCommitListToggleSelection(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "space")
	require.True(t, m.selected[0])

	m = press(t, m, "space")
	require.False(t, m.selected[0])
}

func TestActionMenuDrop(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "j", "enter", "d")

	require.Equal(t, ModeCommitList, m.mode)
	require.Equal(t, plan.Drop, m.entries[1].Action.Kind)
}

func TestActionMenuEditAndReset(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "enter", "e")
	require.Equal(t, plan.Edit, m.entries[0].Action.Kind)

	m = press(t, m, "enter", "x")
	require.Equal(t, plan.Pick, m.entries[0].Action.Kind)
}

func TestActionMenuFixup(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "j", "enter", "f")

	require.Equal(t, plan.Fixup, m.entries[1].Action.Kind)
	// The target is the displayed predecessor's original index.
	require.Equal(t, 0, m.entries[1].Action.Into)
}

func TestActionMenuFixupFirstCommitRejected(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "enter", "f")

	require.Equal(t, ModeCommitList, m.mode)
	require.Equal(t, plan.Pick, m.entries[0].Action.Kind)
	require.Contains(t, m.status, "cannot fixup")
}

func TestRewordFlow(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "enter", "r")
	require.Equal(t, ModeRewordEdit, m.mode)
	require.Equal(t, "Third", m.reword.Value())

	m.reword.SetValue("Better subject")
	m = press(t, m, "esc")

	require.Equal(t, ModeCommitList, m.mode)
	require.Equal(t, plan.Reword, m.entries[0].Action.Kind)
	require.Equal(t, "Better subject", m.entries[0].Action.Message)
}

func TestRewordUnchangedLeavesPick(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "enter", "r", "esc")

	require.Equal(t, plan.Pick, m.entries[0].Action.Kind)
}

func TestSquashFlow(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	// Squash the newest commit into the one below it.
	m = press(t, m, "enter", "q")
	require.Equal(t, ModeSquashTarget, m.mode)

	m = press(t, m, "j", "enter")

	require.Equal(t, ModeCommitList, m.mode)
	require.Equal(t, plan.Squash, m.entries[0].Action.Kind)
	require.Equal(t, 1, m.entries[0].Action.Into)

	// Cursor returns to the source commit.
	require.Equal(t, 0, m.cursor)
}

func TestSquashSelfTargetIsNoOp(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "enter", "q", "enter")

	require.Equal(t, ModeCommitList, m.mode)
	require.Equal(t, plan.Pick, m.entries[0].Action.Kind)
}

func TestReorderKeepsArraysInLockstep(t *testing.T) {
	m := New(threeCommits(), 1, &fakeLoader{})

	// Move the newest commit one position down.
	m = press(t, m, "enter", "m", "J")

	require.Equal(t, "bbb2222", m.commits[0].ShortHash)
	require.Equal(t, "ccc3333", m.commits[1].ShortHash)
	require.Equal(t, 1, m.entries[0].OriginalIndex)
	require.Equal(t, 0, m.entries[1].OriginalIndex)
	require.Equal(t, []bool{false, true, false}, m.selected)
	require.Equal(t, 1, m.cursor)

	// The multiset of original indices is intact.
	seen := make(map[int]bool)
	for _, e := range m.entries {
		seen[e.OriginalIndex] = true
	}
	require.Len(t, seen, 3)
}

func TestSplitFlow(t *testing.T) {
	loader := &fakeLoader{hunks: map[string][]diff.FileHunk{
		"bbb": twoHunks(),
	}}

	m := New(threeCommits(), 0, loader)

	m = press(t, m, "j", "enter", "s")
	require.Equal(t, ModeSplitView, m.mode)
	require.Len(t, m.hunks, 2)

	// First hunk to group 1, second to group 2.
	m = press(t, m, "space", "j", "2", "enter")

	require.Equal(t, ModeCommitList, m.mode)
	require.Equal(t, plan.Split, m.entries[1].Action.Kind)

	groups := m.entries[1].Action.Groups
	require.Len(t, groups, 2)
	require.Equal(t, []int{0}, groups[0].HunkIndices)
	require.Equal(t, []int{1}, groups[1].HunkIndices)
	require.Equal(t, "split part 1", groups[0].Message)

	// The hunk cache is keyed by the commit's original index.
	require.Contains(t, m.cache, 1)
}

func TestSplitRejectsEmptyAssignment(t *testing.T) {
	loader := &fakeLoader{hunks: map[string][]diff.FileHunk{
		"ccc": twoHunks(),
	}}

	m := New(threeCommits(), 0, loader)

	m = press(t, m, "enter", "s", "enter")

	// No hunks assigned: stay in the split view, plan unchanged.
	require.Equal(t, ModeSplitView, m.mode)
	require.Equal(t, plan.Pick, m.entries[0].Action.Kind)
	require.Contains(t, m.status, "no hunks assigned")
}

func TestSplitNoHunks(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "enter", "s")

	require.Equal(t, ModeCommitList, m.mode)
	require.Contains(t, m.status, "no hunks to split")
}

func TestSplitRejectsMergeCommit(t *testing.T) {
	commits := threeCommits()
	commits[0].Parents = []string{"bbb", "xyz"}

	m := New(commits, 0, &fakeLoader{})

	m = press(t, m, "enter", "s")

	require.Equal(t, ModeCommitList, m.mode)
	require.Contains(t, m.status, "merge")
}

func TestSplitLoaderError(t *testing.T) {
	loader := &fakeLoader{err: fmt.Errorf("boom")}

	m := New(threeCommits(), 0, loader)

	m = press(t, m, "enter", "s")

	require.Equal(t, ModeCommitList, m.mode)
	require.Contains(t, m.status, "boom")
}

func TestDiffPaneScrolls(t *testing.T) {
	var patch strings.Builder
	patch.WriteString("--- a/main.go\n+++ b/main.go\n")
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&patch, "+line %d\n", i)
	}

	loader := &fakeLoader{patches: map[string]string{"ccc": patch.String()}}

	m := New(threeCommits(), 0, loader)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	m = press(t, m, "D")
	require.True(t, m.diffLoaded)
	require.Zero(t, m.diffView.YOffset)

	// Keys the commit list does not handle scroll the loaded pane.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	m = next.(Model)
	require.Positive(t, m.diffView.YOffset)
}

func TestPreviewRequiresActions(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "p")

	require.Equal(t, ModeCommitList, m.mode)
	require.Contains(t, m.status, "no actions")
}

func TestPreviewConfirmProducesOutcome(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	m = press(t, m, "enter", "d", "p", "y")

	out := m.Outcome()
	require.NotNil(t, out)
	require.True(t, out.Execute)
	require.Len(t, out.Entries, 3)
	require.Equal(t, plan.Drop, out.Entries[0].Action.Kind)
}

func TestCancelOutcome(t *testing.T) {
	m := New(threeCommits(), 0, &fakeLoader{})

	require.Nil(t, m.Outcome())

	m = press(t, m, "q")

	out := m.Outcome()
	require.NotNil(t, out)
	require.False(t, out.Execute)
}

func TestNewCopiesCommitSlice(t *testing.T) {
	commits := threeCommits()

	m := New(commits, 0, &fakeLoader{})
	m = press(t, m, "enter", "m", "J")

	// The caller's slice keeps its original order.
	require.Equal(t, "ccc3333", commits[0].ShortHash)
	require.Equal(t, "bbb2222", m.commits[0].ShortHash)
}
