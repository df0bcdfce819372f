package diff

import "fmt"

// FileHunk is one hunk of a commit's patch, tagged with the file it
// belongs to. A commit decomposes into an ordered flat list of these;
// split planning addresses them by index into that list.
type FileHunk struct {
	// Path is the file the hunk applies to.
	Path string

	// Hunk is the hunk itself, header fields and classified lines.
	Hunk *Hunk
}

// Summary returns a one-line description: path plus change counts.
func (fh FileHunk) Summary() string {
	added, deleted := fh.Hunk.Stats()

	return fmt.Sprintf("%s +%d -%d", fh.Path, added, deleted)
}

// ParseError reports that a commit's diff could not be decomposed.
type ParseError struct {
	// Commit is the hash of the commit whose diff failed.
	Commit string

	// Err is the underlying parse failure.
	Err error
}

// Error returns the user-facing description.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot decompose diff for %s: %v", e.Commit, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecomposeCommitPatch splits a commit's patch text into an ordered
// flat list of file-scoped hunks. Binary files are excluded, not
// split. File order and hunk order follow the patch text.
func DecomposeCommitPatch(patchText string) ([]FileHunk, error) {
	parsed, err := Parse(patchText)
	if err != nil {
		return nil, err
	}

	var hunks []FileHunk

	for _, file := range parsed.AllFiles() {
		if file.IsBinary {
			continue
		}

		for _, h := range file.Hunks {
			hunks = append(hunks, FileHunk{
				Path: file.Path(),
				Hunk: h,
			})
		}
	}

	return hunks, nil
}
