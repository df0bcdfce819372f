package rebase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/K-NRS/repo-cli/diff"
	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/plan"
)

func testCommits() []git.Commit {
	return []git.Commit{
		{Hash: "ccc3333ccc", ShortHash: "ccc3333", Subject: "Third"},
		{Hash: "bbb2222bbb", ShortHash: "bbb2222", Subject: "Second"},
		{Hash: "aaa1111aaa", ShortHash: "aaa1111", Subject: "First"},
	}
}

func testHunks() []diff.FileHunk {
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
				OldStart: 5, OldLines: 2, NewStart: 6, NewLines: 1,
				Lines: []diff.DiffLine{
					{Op: diff.OpDelete, Content: "old line"},
					{Op: diff.OpContext, Content: "kept line"},
				},
			},
		},
	}
}

func TestBuildStagingSequence(t *testing.T) {
	dir := t.TempDir()
	commits := testCommits()

	entries := plan.New(3)
	entries[1].Action = plan.Action{Kind: plan.Reword, Message: "new msg"}

	staging, recipes, err := BuildStaging(dir, commits, entries, nil)
	require.NoError(t, err)
	require.Empty(t, recipes)

	data, err := os.ReadFile(staging.SequencePath)
	require.NoError(t, err)

	seq, err := ParseSequencePlan(data)
	require.NoError(t, err)

	// Replay order is oldest first.
	require.Equal(t, []SequenceItem{
		{Commit: "aaa1111", Action: "pick"},
		{Commit: "bbb2222", Action: "reword"},
		{Commit: "ccc3333", Action: "pick"},
	}, seq.Items)

	// One message file for the reword, counter at zero.
	msg, err := os.ReadFile(filepath.Join(staging.MessageDir, "msg_0"))
	require.NoError(t, err)
	require.Equal(t, "new msg", string(msg))

	counter, err := os.ReadFile(filepath.Join(staging.MessageDir, "counter"))
	require.NoError(t, err)
	require.Equal(t, "0", string(counter))
}

func TestBuildStagingMessageOrder(t *testing.T) {
	dir := t.TempDir()
	commits := testCommits()

	// Newest commit reworded, oldest squashed with a message. Replay is
	// oldest first, so the squash message comes before the reword one.
	entries := plan.New(3)
	entries[0].Action = plan.Action{Kind: plan.Reword, Message: "newest"}
	entries[2].Action = plan.Action{
		Kind: plan.Squash, Into: 1, Message: "oldest",
	}

	staging, _, err := BuildStaging(dir, commits, entries, nil)
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(staging.MessageDir, "msg_0"))
	require.NoError(t, err)
	require.Equal(t, "oldest", string(first))

	second, err := os.ReadFile(filepath.Join(staging.MessageDir, "msg_1"))
	require.NoError(t, err)
	require.Equal(t, "newest", string(second))
}

func TestBuildStagingSquashWithoutMessage(t *testing.T) {
	dir := t.TempDir()
	commits := testCommits()

	// Oldest commit squashed without an override, newest reworded. The
	// squash still opens the editor, so it holds slot 0 with no file
	// and the reword message lands in slot 1.
	entries := plan.New(3)
	entries[0].Action = plan.Action{Kind: plan.Reword, Message: "renamed"}
	entries[2].Action = plan.Action{Kind: plan.Squash, Into: 1}

	staging, _, err := BuildStaging(dir, commits, entries, nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(staging.MessageDir, "msg_0"))
	require.True(t, os.IsNotExist(err))

	msg, err := os.ReadFile(filepath.Join(staging.MessageDir, "msg_1"))
	require.NoError(t, err)
	require.Equal(t, "renamed", string(msg))

	// Replayed through the hook: the squash stop keeps git's combined
	// message, the reword stop gets the override.
	dest := filepath.Join(dir, "COMMIT_EDITMSG")
	require.NoError(t, os.WriteFile(dest, []byte("combined"), 0600))

	require.NoError(t, ServeNextMessage(staging.MessageDir, dest))
	kept, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "combined", string(kept))

	require.NoError(t, ServeNextMessage(staging.MessageDir, dest))
	replaced, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "renamed", string(replaced))
}

func TestBuildStagingSplit(t *testing.T) {
	dir := t.TempDir()
	commits := testCommits()
	hunks := testHunks()

	entries := plan.New(3)
	entries[1].Action = plan.Action{
		Kind: plan.Split,
		Groups: []plan.SplitGroup{
			{HunkIndices: []int{0}, Message: "first part"},
			{HunkIndices: []int{1}},
		},
	}

	cache := map[int][]diff.FileHunk{1: hunks}

	staging, recipes, err := BuildStaging(dir, commits, entries, cache)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	recipe := recipes[0]
	require.Equal(t, "bbb2222bbb", recipe.Commit)
	require.Len(t, recipe.Steps, 2)
	require.Zero(t, recipe.Unassigned)

	require.Equal(t, "first part", recipe.Steps[0].Message)
	require.Equal(t, "split part 2", recipe.Steps[1].Message)

	for _, step := range recipe.Steps {
		content, err := os.ReadFile(step.PatchPath)
		require.NoError(t, err)
		require.NotEmpty(t, content)
		require.Equal(t, staging.PatchDir, filepath.Dir(step.PatchPath))
	}

	// The split commit is marked edit in the sequence.
	data, err := os.ReadFile(staging.SequencePath)
	require.NoError(t, err)

	seq, err := ParseSequencePlan(data)
	require.NoError(t, err)
	require.Equal(t, "edit", seq.Items[1].Action)
}

func TestBuildStagingSplitCountsUnassigned(t *testing.T) {
	dir := t.TempDir()
	commits := testCommits()
	hunks := testHunks()

	entries := plan.New(3)
	entries[0].Action = plan.Action{
		Kind: plan.Split,
		Groups: []plan.SplitGroup{
			{HunkIndices: []int{1}, Message: "only part"},
		},
	}

	cache := map[int][]diff.FileHunk{0: hunks}

	_, recipes, err := BuildStaging(dir, commits, entries, cache)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	require.Equal(t, 1, recipes[0].Unassigned)
}

func TestBuildStagingSplitMissingCache(t *testing.T) {
	dir := t.TempDir()
	commits := testCommits()

	entries := plan.New(3)
	entries[0].Action = plan.Action{
		Kind: plan.Split,
		Groups: []plan.SplitGroup{
			{HunkIndices: []int{0}, Message: "part"},
		},
	}

	_, _, err := BuildStaging(dir, commits, entries, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no cached hunks")
}
