// Package patch synthesizes unified-diff text from a subset of a
// commit's decomposed hunks.
package patch

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/K-NRS/repo-cli/diff"
)

// Synthesize reconstructs patch text containing exactly the selected
// hunks. Selection is normalized to ascending original hunk order, so
// user-click order never matters. For each distinct file, in
// first-occurrence order, exactly one pair of file-header lines is
// emitted, followed by each selected hunk's own header and lines
// verbatim. Every line is re-terminated with a trailing newline.
//
// The result applies cleanly against the commit's parent tree
// restricted to the selected hunks: each hunk's header independently
// describes only that hunk's line range, so selecting a subset never
// requires recomputing counts across hunks.
func Synthesize(hunks []diff.FileHunk, selected []int) []byte {
	indices := make([]int, 0, len(selected))
	for _, idx := range selected {
		if idx >= 0 && idx < len(hunks) {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	// Group selected hunks by file, keeping first-occurrence order.
	var fileOrder []string
	byFile := make(map[string][]int)

	for _, idx := range indices {
		path := hunks[idx].Path
		if _, seen := byFile[path]; !seen {
			fileOrder = append(fileOrder, path)
		}
		byFile[path] = append(byFile[path], idx)
	}

	var buf bytes.Buffer

	for _, path := range fileOrder {
		fmt.Fprintf(&buf, "--- a/%s\n", path)
		fmt.Fprintf(&buf, "+++ b/%s\n", path)

		for _, idx := range byFile[path] {
			writeHunk(&buf, hunks[idx].Hunk)
		}
	}

	return buf.Bytes()
}

// writeHunk emits one hunk's header and lines, newline-terminated.
func writeHunk(buf *bytes.Buffer, h *diff.Hunk) {
	buf.WriteString(strings.TrimRight(h.Header(), "\n"))
	buf.WriteByte('\n')

	for _, line := range h.Lines {
		buf.WriteString(line.String())
		buf.WriteByte('\n')
	}
}
