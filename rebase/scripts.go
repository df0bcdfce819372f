package rebase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/K-NRS/repo-cli/diff"
	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/patch"
	"github.com/K-NRS/repo-cli/plan"
)

// Staging is the process-scoped temporary layout consumed by the
// editor hooks: the sequence plan, the message files, and one patch
// file per (commit, group). Removed on both success and failure.
type Staging struct {
	// Dir is the root temporary directory.
	Dir string

	// SequencePath is the serialized SequencePlan file.
	SequencePath string

	// MessageDir holds the numbered message files and the counter.
	MessageDir string

	// PatchDir holds the synthesized split patches.
	PatchDir string
}

// SplitStep creates one new commit from a synthesized patch.
type SplitStep struct {
	// PatchPath is the materialized patch file for the group.
	PatchPath string

	// Message is the new commit's message.
	Message string
}

// SplitRecipe automates one split commit's edit stop: undo the
// replayed commit, then apply and commit each step in order.
type SplitRecipe struct {
	// Commit is the full hash of the original commit being split.
	Commit string

	// Steps are the group commits, in group order.
	Steps []SplitStep

	// Unassigned counts hunks not assigned to any group. They are
	// dropped from history, with a warning at execution time.
	Unassigned int
}

// BuildStaging compiles a finalized plan into the staging layout.
// entries is the plan in final display order (newest first); commits
// is the immutable loaded list indexed by original index; cache holds
// the decomposed hunks for every split commit.
func BuildStaging(
	dir string,
	commits []git.Commit,
	entries []plan.Entry,
	cache map[int][]diff.FileHunk,
) (*Staging, []SplitRecipe, error) {

	staging := &Staging{
		Dir:          dir,
		SequencePath: filepath.Join(dir, "sequence.json"),
		MessageDir:   filepath.Join(dir, "messages"),
		PatchDir:     filepath.Join(dir, "patches"),
	}

	for _, sub := range []string{staging.MessageDir, staging.PatchDir} {
		if err := os.MkdirAll(sub, 0700); err != nil {
			return nil, nil, &ScriptError{Path: sub, Err: err}
		}
	}

	// Replay order is oldest first: the reverse of display order.
	ordered := make([]plan.Entry, len(entries))
	for i, e := range entries {
		ordered[len(entries)-1-i] = e
	}

	seq := &SequencePlan{Items: make([]SequenceItem, len(ordered))}
	for i, e := range ordered {
		seq.Items[i] = SequenceItem{
			Commit: commits[e.OriginalIndex].ShortHash,
			Action: e.Action.Kind.TodoKeyword(),
		}
	}

	data, err := seq.Marshal()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot serialize sequence plan: %w", err)
	}
	if err := os.WriteFile(staging.SequencePath, data, 0600); err != nil {
		return nil, nil, &ScriptError{Path: staging.SequencePath, Err: err}
	}

	// Message files follow replay order: git stops for each reword or
	// squash oldest first. A squash without an override message still
	// opens the editor, so it occupies a slot with no file and the hook
	// leaves git's combined message in place.
	var messages []string
	for _, e := range ordered {
		switch e.Action.Kind {
		case plan.Reword, plan.Squash:
			messages = append(messages, e.Action.Message)
		}
	}

	if err := WriteMessages(staging.MessageDir, messages); err != nil {
		return nil, nil, err
	}

	recipes, err := buildSplitRecipes(staging, commits, ordered, cache)
	if err != nil {
		return nil, nil, err
	}

	return staging, recipes, nil
}

// buildSplitRecipes materializes one patch file per (commit, group)
// and returns the recipes in replay order.
func buildSplitRecipes(
	staging *Staging,
	commits []git.Commit,
	ordered []plan.Entry,
	cache map[int][]diff.FileHunk,
) ([]SplitRecipe, error) {

	var recipes []SplitRecipe

	for _, e := range ordered {
		if e.Action.Kind != plan.Split {
			continue
		}

		hunks, ok := cache[e.OriginalIndex]
		if !ok {
			return nil, fmt.Errorf(
				"no cached hunks for split commit %s",
				commits[e.OriginalIndex].ShortHash,
			)
		}

		recipe := SplitRecipe{Commit: commits[e.OriginalIndex].Hash}
		assigned := 0

		for g, group := range e.Action.Groups {
			if len(group.HunkIndices) == 0 {
				continue
			}
			assigned += len(group.HunkIndices)

			name := fmt.Sprintf(
				"patch_%d_%d.patch", e.OriginalIndex, g,
			)
			path := filepath.Join(staging.PatchDir, name)

			content := patch.Synthesize(hunks, group.HunkIndices)
			if err := os.WriteFile(path, content, 0600); err != nil {
				return nil, &ScriptError{Path: path, Err: err}
			}

			message := group.Message
			if message == "" {
				message = fmt.Sprintf("split part %d", g+1)
			}

			recipe.Steps = append(recipe.Steps, SplitStep{
				PatchPath: path,
				Message:   message,
			})
		}

		recipe.Unassigned = len(hunks) - assigned
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}
