package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// logFormat encodes one commit per record: hash, short hash, subject,
// author name, author timestamp, parent hashes. Fields are separated by
// the unit separator, records by the record separator, so subjects may
// contain any printable character.
const logFormat = "%H%x1f%h%x1f%s%x1f%an%x1f%at%x1f%P%x1e"

// ShellExecutor implements Executor by shelling out to git.
type ShellExecutor struct {
	// WorkDir is the working directory for git commands.
	// If empty, uses current directory.
	WorkDir string
}

// NewShellExecutor creates a new ShellExecutor.
func NewShellExecutor(workDir string) *ShellExecutor {
	return &ShellExecutor{WorkDir: workDir}
}

// run executes a git command and returns stdout.
func (e *ShellExecutor) run(
	ctx context.Context, stdin io.Reader, args ...string,
) (string, error) {

	cmd := exec.CommandContext(ctx, "git", args...)
	if e.WorkDir != "" {
		cmd.Dir = e.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = stdin

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf(
			"git %s failed: %w: %s",
			strings.Join(args, " "), err, stderr.String(),
		)
	}

	return stdout.String(), nil
}

// runCombined executes a git command with extra environment entries and
// returns combined stdout+stderr along with the raw process error. The
// caller classifies failures from the output text.
func (e *ShellExecutor) runCombined(
	ctx context.Context, env []string, args ...string,
) (string, error) {

	cmd := exec.CommandContext(ctx, "git", args...)
	if e.WorkDir != "" {
		cmd.Dir = e.WorkDir
	}

	cmd.Env = append(os.Environ(), env...)

	out, err := cmd.CombinedOutput()

	return string(out), err
}

// Log walks the current branch's ancestry newest first, returning at
// most limit commits.
func (e *ShellExecutor) Log(ctx context.Context, limit int) ([]Commit, error) {
	output, err := e.run(
		ctx, nil, "log",
		"--max-count="+strconv.Itoa(limit),
		"--format="+logFormat,
	)
	if err != nil {
		return nil, ErrNoCommits()
	}

	var commits []Commit

	for _, record := range strings.Split(output, "\x1e") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		fields := strings.Split(record, "\x1f")
		if len(fields) != 6 {
			continue
		}

		secs, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			secs = 0
		}

		commits = append(commits, Commit{
			Hash:      fields[0],
			ShortHash: fields[1],
			Subject:   fields[2],
			Author:    fields[3],
			Date:      time.Unix(secs, 0),
			Parents:   strings.Fields(fields[5]),
		})
	}

	if len(commits) == 0 {
		return nil, ErrNoCommits()
	}

	return commits, nil
}

// CommitPatch returns the diff between a commit and its first parent.
func (e *ShellExecutor) CommitPatch(
	ctx context.Context, hash string,
) (string, error) {

	return e.run(
		ctx, nil, "diff-tree", "--patch", "--no-color",
		"--no-commit-id", "--root", hash,
	)
}

// CurrentBranch returns the checked-out branch name.
func (e *ShellExecutor) CurrentBranch(ctx context.Context) (string, error) {
	output, err := e.run(ctx, nil, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", ErrDetachedHead()
	}

	return strings.TrimSpace(output), nil
}

// IsClean reports whether the working tree and index are clean.
func (e *ShellExecutor) IsClean(ctx context.Context) (bool, error) {
	output, err := e.run(ctx, nil, "status", "--porcelain")
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(output) == "", nil
}

// UpstreamTip resolves the upstream tracking tip for a branch.
// Returns empty string if the branch has no upstream.
func (e *ShellExecutor) UpstreamTip(
	ctx context.Context, branch string,
) (string, error) {

	output, err := e.run(
		ctx, nil, "rev-parse", "--verify", "--quiet",
		branch+"@{upstream}",
	)
	if err != nil {
		// No upstream configured is not an error for the guard.
		return "", nil
	}

	return strings.TrimSpace(output), nil
}

// IsAncestor reports whether commit is an ancestor of (or equal to) tip.
func (e *ShellExecutor) IsAncestor(
	ctx context.Context, commit, tip string,
) (bool, error) {

	cmd := exec.CommandContext(
		ctx, "git", "merge-base", "--is-ancestor", commit, tip,
	)
	if e.WorkDir != "" {
		cmd.Dir = e.WorkDir
	}

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}

	return false, fmt.Errorf("merge-base --is-ancestor failed: %w", err)
}

// RebaseInteractive starts an interactive rebase with the given hook
// programs. base is a commit hash, or empty for a root rebase.
func (e *ShellExecutor) RebaseInteractive(
	ctx context.Context, base, seqEditor, msgEditor string,
) (string, error) {

	args := []string{"rebase", "--interactive"}
	if base == "" {
		args = append(args, "--root")
	} else {
		args = append(args, base)
	}

	env := []string{
		"GIT_SEQUENCE_EDITOR=" + seqEditor,
		"GIT_EDITOR=" + msgEditor,
	}

	return e.runCombined(ctx, env, args...)
}

// RebaseInProgress checks for the rebase-merge state directory.
func (e *ShellExecutor) RebaseInProgress(ctx context.Context) (bool, error) {
	output, err := e.run(ctx, nil, "rev-parse", "--git-path", "rebase-merge")
	if err != nil {
		return false, err
	}

	path := strings.TrimSpace(output)
	if !filepath.IsAbs(path) && e.WorkDir != "" {
		path = filepath.Join(e.WorkDir, path)
	}

	_, statErr := os.Stat(path)

	return statErr == nil, nil
}

// RebaseContinue resumes a paused rebase. msgEditor stays wired as
// GIT_EDITOR because the remainder of the replay can still hit reword
// and squash stops that must flow through the message hook.
func (e *ShellExecutor) RebaseContinue(
	ctx context.Context, msgEditor string,
) (string, error) {

	if msgEditor == "" {
		msgEditor = "true"
	}

	return e.runCombined(
		ctx, []string{"GIT_EDITOR=" + msgEditor}, "rebase", "--continue",
	)
}

// RebaseStoppedCommit reads the stopped-sha file from the rebase-merge
// state directory. Empty when the file does not exist.
func (e *ShellExecutor) RebaseStoppedCommit(
	ctx context.Context,
) (string, error) {

	output, err := e.run(
		ctx, nil, "rev-parse", "--git-path", "rebase-merge/stopped-sha",
	)
	if err != nil {
		return "", err
	}

	path := strings.TrimSpace(output)
	if !filepath.IsAbs(path) && e.WorkDir != "" {
		path = filepath.Join(e.WorkDir, path)
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", nil
	}

	return strings.TrimSpace(string(data)), nil
}

// RebaseAbort aborts a paused rebase.
func (e *ShellExecutor) RebaseAbort(ctx context.Context) error {
	_, err := e.run(ctx, nil, "rebase", "--abort")

	return err
}

// ResetToParent resets HEAD and the index to HEAD's parent, leaving
// the commit's changes in the working tree.
func (e *ShellExecutor) ResetToParent(ctx context.Context) error {
	_, err := e.run(ctx, nil, "reset", "HEAD^")

	return err
}

// ResetHard discards all working tree and index changes.
func (e *ShellExecutor) ResetHard(ctx context.Context) error {
	_, err := e.run(ctx, nil, "reset", "--hard", "HEAD")

	return err
}

// ApplyPatch applies a patch to the staging area.
func (e *ShellExecutor) ApplyPatch(
	ctx context.Context, patch io.Reader,
) error {

	_, err := e.run(ctx, patch, "apply", "--cached", "-")

	return err
}

// Commit creates a commit from the index with the given message.
func (e *ShellExecutor) Commit(ctx context.Context, message string) error {
	_, err := e.run(ctx, nil, "commit", "-m", message)

	return err
}

// Root returns the repository root directory.
func (e *ShellExecutor) Root(ctx context.Context) (string, error) {
	output, err := e.run(ctx, nil, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// Compile-time check that ShellExecutor implements Executor.
var _ Executor = (*ShellExecutor)(nil)
