package diff

import (
	"fmt"
	"strings"
)

// FileDiff represents all changes to a single file.
type FileDiff struct {
	// OldName is the path of the original file (with a/ prefix stripped).
	OldName string

	// NewName is the path of the new file (with b/ prefix stripped).
	NewName string

	// Hunks contains all hunks in this file diff.
	Hunks []*Hunk

	// IsBinary is true if this is a binary file.
	IsBinary bool

	// IsNew is true if this is a new file.
	IsNew bool

	// IsDeleted is true if this file is being deleted.
	IsDeleted bool
}

// Path returns the canonical file path.
// Uses OldName for deletions, NewName otherwise.
func (f *FileDiff) Path() string {
	if f.IsDeleted {
		return f.OldName
	}

	return f.NewName
}

// Stats returns total addition and deletion counts across all hunks.
func (f *FileDiff) Stats() (added, deleted int) {
	for _, hunk := range f.Hunks {
		a, d := hunk.Stats()
		added += a
		deleted += d
	}

	return added, deleted
}

// Format returns the file diff in unified diff format.
func (f *FileDiff) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "--- a/%s\n", f.OldName)
	fmt.Fprintf(&sb, "+++ b/%s\n", f.NewName)

	for _, hunk := range f.Hunks {
		sb.WriteString(hunk.Header())
		sb.WriteByte('\n')

		for _, line := range hunk.Lines {
			sb.WriteString(line.String())
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
