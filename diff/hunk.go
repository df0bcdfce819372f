package diff

import "fmt"

// Hunk represents a contiguous block of changes in a file.
type Hunk struct {
	// OldStart is the starting line in the original file.
	OldStart int

	// OldLines is the number of lines from the original file.
	OldLines int

	// NewStart is the starting line in the new file.
	NewStart int

	// NewLines is the number of lines in the new file.
	NewLines int

	// Section is the optional section header (e.g., function name).
	Section string

	// Lines contains all lines in this hunk.
	Lines []DiffLine
}

// Header returns the hunk header in unified diff format. The header is
// file-local and hunk-local: it describes only this hunk's own line
// ranges, so it stays valid when sibling hunks are excluded.
func (h *Hunk) Header() string {
	header := fmt.Sprintf(
		"@@ -%d,%d +%d,%d @@",
		h.OldStart, h.OldLines, h.NewStart, h.NewLines,
	)

	if h.Section != "" {
		header += " " + h.Section
	}

	return header
}

// Stats returns addition and deletion counts.
func (h *Hunk) Stats() (added, deleted int) {
	for _, line := range h.Lines {
		switch line.Op {
		case OpAdd:
			added++
		case OpDelete:
			deleted++
		}
	}

	return added, deleted
}
