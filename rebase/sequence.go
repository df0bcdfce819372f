package rebase

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
)

// SequenceItem is one commit in the desired replay order with its
// todo keyword.
type SequenceItem struct {
	// Commit is the commit's short hash.
	Commit string `json:"commit"`

	// Action is the todo keyword (pick, reword, squash, ...).
	Action string `json:"action"`
}

// SequencePlan is the serialized input to the sequence-editor hook:
// the full replay order, oldest first. Git invokes the hook as a
// separate process, so the plan travels through a file.
type SequencePlan struct {
	// Items lists every commit in the rebase range, oldest first.
	Items []SequenceItem `json:"items"`
}

// ParseSequencePlan parses a SequencePlan from JSON data.
func ParseSequencePlan(data []byte) (*SequencePlan, error) {
	var p SequencePlan

	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid sequence plan: %w", err)
	}

	if len(p.Items) == 0 {
		return nil, fmt.Errorf("sequence plan has no items")
	}

	return &p, nil
}

// Marshal serializes the plan for the hook file.
func (p *SequencePlan) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// todoLine is one parsed line of git's generated todo file.
type todoLine struct {
	action  string
	commit  string
	subject string
}

// Transform rewrites git's generated todo text to match the plan:
// every line whose commit matches a plan item gets the item's action
// keyword, and matched lines are reordered to the plan's order.
// Unmatched lines (comments, blanks, unexpected commits) are appended
// at the end in their original relative order; no line is ever
// dropped. The transform is idempotent: applying it to already
// substituted, already ordered text is a no-op.
func (p *SequencePlan) Transform(content string) string {
	type ranked struct {
		rank int
		text string
	}

	var matched []ranked
	var unmatched []string

	scanner := bufio.NewScanner(strings.NewReader(
		strings.TrimRight(content, "\n"),
	))

	for scanner.Scan() {
		raw := scanner.Text()

		line, ok := parseTodoLine(raw)
		if !ok {
			unmatched = append(unmatched, raw)

			continue
		}

		rank, item := p.find(line.commit)
		if rank < 0 {
			unmatched = append(unmatched, raw)

			continue
		}

		text := item.Action + " " + line.commit
		if line.subject != "" {
			text += " " + line.subject
		}

		matched = append(matched, ranked{rank: rank, text: text})
	}

	// Stable insertion sort by rank: matched lines are few and nearly
	// ordered already.
	for i := 1; i < len(matched); i++ {
		for j := i; j > 0 && matched[j].rank < matched[j-1].rank; j-- {
			matched[j], matched[j-1] = matched[j-1], matched[j]
		}
	}

	var sb strings.Builder

	for _, m := range matched {
		sb.WriteString(m.text)
		sb.WriteByte('\n')
	}
	for _, u := range unmatched {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}

	return sb.String()
}

// find locates the plan item matching a todo commit, allowing prefix
// matching in either direction. Returns -1 if no item matches.
func (p *SequencePlan) find(commit string) (int, SequenceItem) {
	for i, item := range p.Items {
		if strings.HasPrefix(commit, item.Commit) ||
			strings.HasPrefix(item.Commit, commit) {

			return i, item
		}
	}

	return -1, SequenceItem{}
}

// parseTodoLine parses a line like "pick abc1234 commit message".
// Returns false for comments, blank lines, and non-commit commands.
func parseTodoLine(line string) (todoLine, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return todoLine{}, false
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return todoLine{}, false
	}

	action := expandShortAction(strings.ToLower(fields[0]))
	if !validTodoAction(action) {
		return todoLine{}, false
	}

	subject := ""
	if len(fields) > 2 {
		subject = strings.Join(fields[2:], " ")
	}

	return todoLine{
		action:  action,
		commit:  fields[1],
		subject: subject,
	}, true
}

// expandShortAction expands single-letter action abbreviations.
func expandShortAction(s string) string {
	switch s {
	case "p":
		return "pick"
	case "r":
		return "reword"
	case "e":
		return "edit"
	case "s":
		return "squash"
	case "f":
		return "fixup"
	case "d":
		return "drop"
	default:
		return s
	}
}

// validTodoAction reports whether s is a commit-bearing todo keyword.
func validTodoAction(s string) bool {
	switch s {
	case "pick", "reword", "edit", "squash", "fixup", "drop":
		return true
	default:
		return false
	}
}
