package commands

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/output"
	"github.com/K-NRS/repo-cli/plan"
	"github.com/K-NRS/repo-cli/rebase"
)

// defaultRewordDepth is how far back reword looks for candidates.
const defaultRewordDepth = 20

// NewRewordCmd creates the reword command.
func NewRewordCmd() *cobra.Command {
	var (
		lastN     int
		all       bool
		count     int
		useEditor bool
	)

	cmd := &cobra.Command{
		Use:   "reword",
		Short: "Rewrite recent commit messages",
		Long: `Reword rewrites the messages of recent commits without opening
the full planner.

With no flags it shows a numbered picker over recent commits. Select
with single numbers (3), ranges (1-5), comma lists (1,3,5), or a for
all. Merge commits are skipped. Each selected commit's message is then
edited inline, or in $EDITOR with --editor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if lastN > 0 && all {
				return fmt.Errorf("--last and --all are mutually exclusive")
			}

			return runReword(cmd, rewordOptions{
				lastN:     lastN,
				all:       all,
				count:     count,
				useEditor: useEditor,
			})
		},
	}

	cmd.Flags().IntVar(
		&lastN, "last", 0,
		"reword the newest N commits without the picker",
	)
	cmd.Flags().BoolVar(
		&all, "all", false,
		"reword every listed commit without the picker",
	)
	cmd.Flags().IntVar(
		&count, "count", defaultRewordDepth,
		"how many recent commits to list",
	)
	cmd.Flags().BoolVar(
		&useEditor, "editor", false,
		"edit each message in $EDITOR instead of inline",
	)

	return cmd
}

type rewordOptions struct {
	lastN     int
	all       bool
	count     int
	useEditor bool
}

func runReword(cmd *cobra.Command, opts rewordOptions) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	gitExec := &git.ShellExecutor{WorkDir: cfg.WorkDir}

	branch, err := git.ValidateState(ctx, gitExec)
	if err != nil {
		return err
	}

	commits, err := gitExec.Log(ctx, opts.count)
	if err != nil {
		return err
	}

	if len(commits) == 0 {
		return git.ErrNoCommits()
	}

	// Merge commits cannot be reworded here; their diff and replay
	// semantics differ from linear commits.
	candidates, skipped := splitMerges(commits)
	if skipped > 0 {
		color.Yellow("skipping %d merge commit(s)", skipped)
	}

	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no commits to reword")

		return nil
	}

	selected, err := selectCandidates(cmd, commits, candidates, opts)
	if err != nil {
		return err
	}

	if len(selected) == 0 {
		color.Yellow("cancelled")

		return nil
	}

	entries, touched, err := collectMessages(cmd, commits, selected, opts.useEditor)
	if err != nil {
		return err
	}

	if len(touched) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no changes to apply")

		return nil
	}

	// Replaying across a merge would flatten it. The plan spans every
	// commit back to the oldest touched one, so any merge in between
	// blocks the rewrite.
	for i := range entries {
		if commits[i].IsMerge() {
			return fmt.Errorf(
				"cannot rewrite history across merge commit %s",
				commits[i].ShortHash,
			)
		}
	}

	if n := rebase.CountPushed(ctx, gitExec, commits, touched); n > 0 {
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
		Git:  gitExec,
		Exe:  exe,
		Warn: cmd.ErrOrStderr(),
	}

	if _, err := runner.Run(ctx, commits, entries, nil); err != nil {
		return err
	}

	color.Green("done: reworded %d commit(s) on %s", len(touched), branch)

	return nil
}

// splitMerges partitions the log into reword candidates and a count of
// skipped merge commits. Candidates keep their log indices.
func splitMerges(commits []git.Commit) (candidates []int, skipped int) {
	for i := range commits {
		if commits[i].IsMerge() {
			skipped++

			continue
		}

		candidates = append(candidates, i)
	}

	return candidates, skipped
}

// selectCandidates resolves which log indices to reword, either from
// the auto-select flags or the interactive picker.
func selectCandidates(
	cmd *cobra.Command, commits []git.Commit, candidates []int,
	opts rewordOptions,
) ([]int, error) {
	switch {
	case opts.all:
		return candidates, nil

	case opts.lastN > 0:
		if opts.lastN < len(candidates) {
			return candidates[:opts.lastN], nil
		}

		return candidates, nil
	}

	return pickCandidates(cmd, commits, candidates)
}

// pickCandidates runs the numbered picker. The displayed numbers are
// 1-based positions within the candidate list, newest first.
func pickCandidates(
	cmd *cobra.Command, commits []git.Commit, candidates []int,
) ([]int, error) {
	out := cmd.OutOrStdout()

	for pos, idx := range candidates {
		c := commits[idx]
		fmt.Fprintf(out, "%3d. %s %s (%s)\n",
			pos+1, c.ShortHash, c.Subject, output.RelativeTime(c.Date))
	}

	fmt.Fprint(out, "select commits (e.g. 1, 1-5, 1,3,5, a=all, n=none): ")

	reader := bufio.NewReader(cmd.InOrStdin())

	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	switch answer {
	case "", "n":
		return nil, nil
	case "a":
		return candidates, nil
	}

	positions, err := parseSelection(answer, len(candidates))
	if err != nil {
		return nil, err
	}

	selected := make([]int, 0, len(positions))
	for _, pos := range positions {
		selected = append(selected, candidates[pos-1])
	}

	return selected, nil
}

// parseSelection parses a comma-separated list of 1-based positions
// and inclusive ranges, deduplicated, in input order.
func parseSelection(input string, max int) ([]int, error) {
	seen := make(map[int]bool)

	var positions []int

	add := func(pos int) error {
		if pos < 1 || pos > max {
			return fmt.Errorf("selection %d out of range 1-%d", pos, max)
		}

		if !seen[pos] {
			seen[pos] = true
			positions = append(positions, pos)
		}

		return nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid selection %q", part)
			}

			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid selection %q", part)
			}

			if end < start {
				start, end = end, start
			}

			for pos := start; pos <= end; pos++ {
				if err := add(pos); err != nil {
					return nil, err
				}
			}

			continue
		}

		pos, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}

		if err := add(pos); err != nil {
			return nil, err
		}
	}

	return positions, nil
}

// collectMessages prompts for a new message per selected commit and
// builds a reword-only plan covering the log back to the oldest
// touched commit. Unchanged or empty answers leave a commit alone.
func collectMessages(
	cmd *cobra.Command, commits []git.Commit, selected []int, useEditor bool,
) ([]plan.Entry, []int, error) {
	messages := make(map[int]string)
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for _, idx := range selected {
		c := commits[idx]

		var (
			text string
			err  error
		)

		if useEditor {
			text, err = editInEditor(c.Subject)
			if err != nil {
				return nil, nil, err
			}
		} else {
			fmt.Fprintf(out, "%s %s\n", c.ShortHash, c.Subject)
			fmt.Fprint(out, "new message (empty to keep): ")

			line, readErr := reader.ReadString('\n')
			if readErr != nil {
				break
			}

			text = strings.TrimSpace(line)
		}

		if text != "" && text != c.Subject {
			messages[idx] = text
		}
	}

	if len(messages) == 0 {
		return nil, nil, nil
	}

	oldest := 0
	for idx := range messages {
		if idx > oldest {
			oldest = idx
		}
	}

	entries := plan.New(oldest + 1)
	touched := make([]int, 0, len(messages))

	for idx, msg := range messages {
		entries[idx].Action = plan.Action{Kind: plan.Reword, Message: msg}
		touched = append(touched, idx)
	}

	return entries, touched, nil
}

// editInEditor opens $EDITOR (vi when unset) on a temp file seeded
// with the current message and returns the trimmed result.
func editInEditor(initial string) (string, error) {
	f, err := os.CreateTemp("", "repo-reword-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating message file: %w", err)
	}

	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial + "\n"); err != nil {
		f.Close()

		return "", fmt.Errorf("writing message file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing message file: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	ed := exec.Command(editor, path)
	ed.Stdin = os.Stdin
	ed.Stdout = os.Stdout
	ed.Stderr = os.Stderr

	if err := ed.Run(); err != nil {
		return "", fmt.Errorf("running editor: %w", err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading message file: %w", err)
	}

	return strings.TrimSpace(string(edited)), nil
}
