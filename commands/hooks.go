package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/K-NRS/repo-cli/rebase"
)

// newSeqEditCmd creates the hidden internal command git invokes as
// GIT_SEQUENCE_EDITOR to rewrite the rebase todo file.
func newSeqEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "_seq-edit PLANFILE TODOFILE",
		Hidden: true,
		Short:  "Internal command to rewrite the rebase todo (invoked by git)",
		Args:   cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return applySequencePlan(args[0], args[1])
		},
	}
}

// applySequencePlan reads the staged plan and transforms the todo file.
func applySequencePlan(planFile, todoFile string) error {
	planData, err := os.ReadFile(planFile)
	if err != nil {
		return fmt.Errorf("failed to read plan file: %w", err)
	}

	seq, err := rebase.ParseSequencePlan(planData)
	if err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	todoData, err := os.ReadFile(todoFile)
	if err != nil {
		return fmt.Errorf("failed to read todo file: %w", err)
	}

	rewritten := seq.Transform(string(todoData))

	if err := os.WriteFile(todoFile, []byte(rewritten), 0600); err != nil {
		return fmt.Errorf("failed to write todo file: %w", err)
	}

	return nil
}

// newMsgEditCmd creates the hidden internal command git invokes as
// GIT_EDITOR for each commit message during the rebase. The staged
// message directory carries the counter; each invocation runs in a
// fresh process, so the counter lives on disk.
func newMsgEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "_msg-edit MSGDIR DESTFILE",
		Hidden: true,
		Short:  "Internal command to inject commit messages (invoked by git)",
		Args:   cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return rebase.ServeNextMessage(args[0], args[1])
		},
	}
}
