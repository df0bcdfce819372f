// Package output formats diffs, timestamps, and plan summaries for
// terminal display.
package output

import (
	"fmt"
	"strings"
	"time"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// ColorizePatch colors a unified diff for terminal display. Additions
// are green, deletions red, hunk headers cyan, file headers yellow.
// The patch text itself is not modified.
func ColorizePatch(patch string) string {
	var b strings.Builder

	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"),
			strings.HasPrefix(line, "---"),
			strings.HasPrefix(line, "diff --git"):
			b.WriteString(colorYellow + line + colorReset)

		case strings.HasPrefix(line, "@@"):
			b.WriteString(colorCyan + line + colorReset)

		case strings.HasPrefix(line, "+"):
			b.WriteString(colorGreen + line + colorReset)

		case strings.HasPrefix(line, "-"):
			b.WriteString(colorRed + line + colorReset)

		case strings.HasPrefix(line, "index "),
			strings.HasPrefix(line, "new file"),
			strings.HasPrefix(line, "deleted file"),
			strings.HasPrefix(line, "similarity"),
			strings.HasPrefix(line, "rename "):
			b.WriteString(colorDim + line + colorReset)

		default:
			b.WriteString(line)
		}

		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// RelativeTime renders a timestamp relative to now, git-log style.
func RelativeTime(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"

	case d < time.Hour:
		n := int(d.Minutes())

		return fmt.Sprintf("%d minute%s ago", n, plural(n))

	case d < 24*time.Hour:
		n := int(d.Hours())

		return fmt.Sprintf("%d hour%s ago", n, plural(n))

	case d < 30*24*time.Hour:
		n := int(d.Hours() / 24)

		return fmt.Sprintf("%d day%s ago", n, plural(n))

	case d < 365*24*time.Hour:
		n := int(d.Hours() / (24 * 30))

		return fmt.Sprintf("%d month%s ago", n, plural(n))

	default:
		n := int(d.Hours() / (24 * 365))

		return fmt.Sprintf("%d year%s ago", n, plural(n))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}
