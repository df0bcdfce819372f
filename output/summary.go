package output

import (
	"fmt"
	"strings"

	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/plan"
)

// PlanSummary renders the compiled plan in replay order (oldest
// first), one line per commit, in the shape of a rebase todo list.
// The commits and entries are parallel arrays in display order,
// newest first.
func PlanSummary(commits []git.Commit, entries []plan.Entry) string {
	// Short hashes by stable identity, for squash and fixup targets.
	hashes := make(map[int]string, len(entries))
	for i, e := range entries {
		hashes[e.OriginalIndex] = commits[i].ShortHash
	}

	var b strings.Builder

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		c := commits[i]

		fmt.Fprintf(&b, "%-6s %s %s", e.Action.Kind, c.ShortHash, c.Subject)

		switch e.Action.Kind {
		case plan.Reword:
			fmt.Fprintf(&b, "\n       -> %s", firstLine(e.Action.Message))

		case plan.Squash, plan.Fixup:
			fmt.Fprintf(&b, "\n       -> into %s", hashes[e.Action.Into])

		case plan.Split:
			for _, g := range e.Action.Groups {
				fmt.Fprintf(
					&b, "\n       -> %d hunk(s): %s",
					len(g.HunkIndices), firstLine(g.Message),
				)
			}
		}

		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
