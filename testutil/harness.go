// Package testutil provides test helpers for git repository testing.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// GitTestRepo creates a temporary git repository for testing.
type GitTestRepo struct {
	t   *testing.T
	Dir string
}

// NewGitTestRepo creates a new test repo with git initialized.
func NewGitTestRepo(t *testing.T) *GitTestRepo {
	t.Helper()

	dir, err := os.MkdirTemp("", "repo-test-*")
	require.NoError(t, err)

	repo := &GitTestRepo{t: t, Dir: dir}
	t.Cleanup(repo.cleanup)

	// Initialize git repo with basic config.
	repo.Git("init", "-b", "main")
	repo.Git("config", "user.email", "test@test.com")
	repo.Git("config", "user.name", "Test User")
	repo.Git("config", "commit.gpgsign", "false")

	return repo
}

func (r *GitTestRepo) cleanup() {
	os.RemoveAll(r.Dir)
}

// Git runs a git command in the test repo.
func (r *GitTestRepo) Git(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}

	return string(out)
}

// GitMayFail runs a git command that may fail, returning the error.
func (r *GitTestRepo) GitMayFail(args ...string) (string, error) {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()

	return string(out), err
}

// WriteFile creates or overwrites a file in the repo.
func (r *GitTestRepo) WriteFile(path, content string) {
	r.t.Helper()

	fullPath := filepath.Join(r.Dir, path)
	dir := filepath.Dir(fullPath)

	err := os.MkdirAll(dir, 0755)
	require.NoError(r.t, err)

	err = os.WriteFile(fullPath, []byte(content), 0644)
	require.NoError(r.t, err)
}

// ReadFile reads a file from the repo.
func (r *GitTestRepo) ReadFile(path string) string {
	r.t.Helper()

	data, err := os.ReadFile(filepath.Join(r.Dir, path))
	require.NoError(r.t, err)

	return string(data)
}

// FileExists checks if a file exists in the repo.
func (r *GitTestRepo) FileExists(path string) bool {
	r.t.Helper()

	_, err := os.Stat(filepath.Join(r.Dir, path))

	return err == nil
}

// CommitAll stages and commits all changes.
func (r *GitTestRepo) CommitAll(msg string) {
	r.t.Helper()

	r.Git("add", "-A")
	r.Git("commit", "-m", msg)
}

// CommitFile writes a file and commits it in one step.
func (r *GitTestRepo) CommitFile(path, content, msg string) {
	r.t.Helper()

	r.WriteFile(path, content)
	r.Git("add", path)
	r.Git("commit", "-m", msg)
}

// HeadHash returns the full hash of HEAD.
func (r *GitTestRepo) HeadHash() string {
	r.t.Helper()

	return strings.TrimSpace(r.Git("rev-parse", "HEAD"))
}

// Subjects returns the commit subjects reachable from HEAD, newest
// first.
func (r *GitTestRepo) Subjects() []string {
	r.t.Helper()

	out := strings.TrimSpace(r.Git("log", "--format=%s"))
	if out == "" {
		return nil
	}

	return strings.Split(out, "\n")
}

// CommitCount returns the number of commits reachable from HEAD.
func (r *GitTestRepo) CommitCount() int {
	r.t.Helper()

	out := strings.TrimSpace(r.Git("rev-list", "--count", "HEAD"))

	n := 0
	for _, c := range out {
		n = n*10 + int(c-'0')
	}

	return n
}

// FilesAt returns the paths tracked in the given revision's tree.
func (r *GitTestRepo) FilesAt(rev string) []string {
	r.t.Helper()

	out := strings.TrimSpace(r.Git("ls-tree", "-r", "--name-only", rev))
	if out == "" {
		return nil
	}

	return strings.Split(out, "\n")
}

// ShowFile returns a file's content at the given revision.
func (r *GitTestRepo) ShowFile(rev, path string) string {
	r.t.Helper()

	return r.Git("show", rev+":"+path)
}

// RebaseInProgress reports whether the repo has a paused rebase.
func (r *GitTestRepo) RebaseInProgress() bool {
	r.t.Helper()

	path := strings.TrimSpace(r.Git("rev-parse", "--git-path", "rebase-merge"))
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, path)
	}

	_, err := os.Stat(path)

	return err == nil
}
