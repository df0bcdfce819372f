// Package plan holds the data model for a history-rewrite plan: one
// entry per loaded commit, each carrying exactly one rebase action.
package plan

// Kind identifies a rebase action variant.
type Kind int

const (
	// Pick replays the commit unchanged.
	Pick Kind = iota
	// Reword replays the commit with a new message.
	Reword
	// Squash melds the commit into another one.
	Squash
	// Fixup melds the commit into another one, discarding its message.
	Fixup
	// Drop removes the commit from history.
	Drop
	// Split breaks the commit into several new commits.
	Split
	// Edit pauses the replay at the commit for manual amending.
	Edit
)

// String returns the action name shown in the plan builder.
func (k Kind) String() string {
	switch k {
	case Pick:
		return "pick"
	case Reword:
		return "reword"
	case Squash:
		return "squash"
	case Fixup:
		return "fixup"
	case Drop:
		return "drop"
	case Split:
		return "split"
	case Edit:
		return "edit"
	default:
		return "unknown"
	}
}

// TodoKeyword returns the keyword substituted into the rebase todo
// file. Split commits are marked edit so the replay pauses for the
// split automation.
func (k Kind) TodoKeyword() string {
	if k == Split {
		return "edit"
	}

	return k.String()
}

// SplitGroup assigns a subset of a commit's hunks to one new commit.
type SplitGroup struct {
	// HunkIndices are indices into the commit's decomposed hunk list.
	HunkIndices []int

	// Message is the new commit's message.
	Message string
}

// Action is a tagged variant: Kind selects which auxiliary fields are
// meaningful. Reassigning an action replaces the whole value, so an
// entry always carries exactly one variant.
type Action struct {
	// Kind is the variant tag.
	Kind Kind

	// Message is the new commit message for Reword, or the optional
	// override message for Squash.
	Message string

	// Into is the original index of the target entry for Squash and
	// Fixup.
	Into int

	// Groups partitions the commit's hunks for Split.
	Groups []SplitGroup
}

// Entry assigns an action to one loaded commit. OriginalIndex is a
// stable back-reference into the immutable loaded commit list, never
// into the reorderable display order.
type Entry struct {
	// OriginalIndex is the commit's position in the loaded list.
	OriginalIndex int

	// Action is the assigned rebase action.
	Action Action
}

// PickEntry creates an all-default entry for a commit.
func PickEntry(idx int) Entry {
	return Entry{OriginalIndex: idx, Action: Action{Kind: Pick}}
}

// New creates the initial plan: one Pick entry per loaded commit, in
// original load order.
func New(commitCount int) []Entry {
	entries := make([]Entry, commitCount)
	for i := range entries {
		entries[i] = PickEntry(i)
	}

	return entries
}

// CountActions returns the number of entries with a non-Pick action.
func CountActions(entries []Entry) int {
	count := 0
	for _, e := range entries {
		if e.Action.Kind != Pick {
			count++
		}
	}

	return count
}

// TouchedIndices returns the original indices of entries with a
// non-Pick action.
func TouchedIndices(entries []Entry) []int {
	var touched []int
	for _, e := range entries {
		if e.Action.Kind != Pick {
			touched = append(touched, e.OriginalIndex)
		}
	}

	return touched
}

// OldestIndex returns the highest original index in the plan. Commits
// are loaded newest first, so the highest index is the oldest commit.
func OldestIndex(entries []Entry) int {
	oldest := 0
	for _, e := range entries {
		if e.OriginalIndex > oldest {
			oldest = e.OriginalIndex
		}
	}

	return oldest
}
