package commands

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/plan"
	"github.com/K-NRS/repo-cli/rebase"
	"github.com/K-NRS/repo-cli/tui"
)

// defaultCraftDepth is how far back craft looks when no count is given.
const defaultCraftDepth = 10

// NewCraftCmd creates the craft command.
func NewCraftCmd() *cobra.Command {
	var preselect int

	cmd := &cobra.Command{
		Use:   "craft [count]",
		Short: "Plan and execute history rewrites interactively",
		Long: `Craft opens an interactive planner over the most recent commits.

Assign actions to commits (reword, squash, fixup, drop, split, edit,
reorder), preview the compiled plan, and confirm to execute it as a
single rebase. Exiting without confirming leaves the repository
untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := defaultCraftDepth
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid count %q", args[0])
				}

				count = n
			}

			return runCraft(cmd, count, preselect)
		},
	}

	cmd.Flags().IntVar(
		&preselect, "last", 0,
		"preselect the newest N commits",
	)

	return cmd
}

func runCraft(cmd *cobra.Command, count, preselect int) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	exec := &git.ShellExecutor{WorkDir: cfg.WorkDir}

	branch, err := git.ValidateState(ctx, exec)
	if err != nil {
		return err
	}

	commits, err := exec.Log(ctx, count)
	if err != nil {
		return err
	}

	if len(commits) == 0 {
		return git.ErrNoCommits()
	}

	loader := &tui.GitLoader{Ctx: ctx, Git: exec}

	outcome, err := tui.Run(commits, preselect, loader)
	if err != nil {
		return fmt.Errorf("plan builder: %w", err)
	}

	if !outcome.Execute {
		color.Yellow("cancelled")

		return nil
	}

	actions := plan.CountActions(outcome.Entries)
	if actions == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no changes to apply")

		return nil
	}

	touched := plan.TouchedIndices(outcome.Entries)
	if n := rebase.CountPushed(ctx, exec, commits, touched); n > 0 {
		warning := fmt.Sprintf(
			"%d of the selected commit(s) are already on the upstream; "+
				"rewriting them will require a force push", n,
		)
		if !confirm(cmd, warning) {
			color.Yellow("cancelled")

			return nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own executable: %w", err)
	}

	runner := &rebase.Runner{
		Git:  exec,
		Exe:  exe,
		Warn: cmd.ErrOrStderr(),
	}

	paused, err := runner.Run(ctx, commits, outcome.Entries, outcome.HunkCache)
	if err != nil {
		return err
	}

	if paused {
		color.Yellow(
			"rebase paused at an edit stop; finish with\n" +
				"  git rebase --continue\n" +
				"or abandon with\n" +
				"  git rebase --abort",
		)

		return nil
	}

	color.Green("done: crafted %d action(s) on %s", actions, branch)

	return nil
}

// confirm prints a prompt and reads a y/N answer from the command's
// input stream.
func confirm(cmd *cobra.Command, prompt string) bool {
	color.Yellow("warning: %s", prompt)
	fmt.Fprint(cmd.OutOrStdout(), "continue? [y/N] ")

	reader := bufio.NewReader(cmd.InOrStdin())

	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes"
}
