package rebase

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseSequencePlan(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *SequencePlan
		wantErr bool
	}{
		{
			name: "valid plan",
			data: `{"items":[{"commit":"abc1234","action":"pick"},` +
				`{"commit":"def5678","action":"reword"}]}`,
			want: &SequencePlan{Items: []SequenceItem{
				{Commit: "abc1234", Action: "pick"},
				{Commit: "def5678", Action: "reword"},
			}},
		},
		{
			name:    "empty items",
			data:    `{"items":[]}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			data:    `{"items":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSequencePlan([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSequencePlanTransform(t *testing.T) {
	plan := &SequencePlan{Items: []SequenceItem{
		{Commit: "abc1234", Action: "pick"},
		{Commit: "def5678", Action: "reword"},
		{Commit: "9876543", Action: "drop"},
	}}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "action substitution",
			content: `pick abc1234 First commit
pick def5678 Second commit
pick 9876543 Third commit
`,
			want: `pick abc1234 First commit
reword def5678 Second commit
drop 9876543 Third commit
`,
		},
		{
			name: "reorders to plan order",
			content: `pick 9876543 Third commit
pick abc1234 First commit
pick def5678 Second commit
`,
			want: `pick abc1234 First commit
reword def5678 Second commit
drop 9876543 Third commit
`,
		},
		{
			name: "comments and blanks move to the end",
			content: `pick abc1234 First commit

# Rebase onto xyz
pick def5678 Second commit
pick 9876543 Third commit
# Commands:
`,
			want: `pick abc1234 First commit
reword def5678 Second commit
drop 9876543 Third commit

# Rebase onto xyz
# Commands:
`,
		},
		{
			name: "short actions are recognized",
			content: `p abc1234 First commit
p def5678 Second commit
p 9876543 Third commit
`,
			want: `pick abc1234 First commit
reword def5678 Second commit
drop 9876543 Third commit
`,
		},
		{
			name: "full hashes match short plan hashes",
			content: `pick abc1234999999 First commit
pick def5678999999 Second commit
pick 9876543999999 Third commit
`,
			want: `pick abc1234999999 First commit
reword def5678999999 Second commit
drop 9876543999999 Third commit
`,
		},
		{
			name: "unknown commits are kept verbatim",
			content: `pick abc1234 First commit
pick ffffff0 Stray commit
pick def5678 Second commit
pick 9876543 Third commit
`,
			want: `pick abc1234 First commit
reword def5678 Second commit
drop 9876543 Third commit
pick ffffff0 Stray commit
`,
		},
		{
			name: "non-commit commands are kept verbatim",
			content: `pick abc1234 First commit
exec make test
pick def5678 Second commit
pick 9876543 Third commit
`,
			want: `pick abc1234 First commit
reword def5678 Second commit
drop 9876543 Third commit
exec make test
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plan.Transform(tt.content)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSequencePlanTransformIdempotent(t *testing.T) {
	plan := &SequencePlan{Items: []SequenceItem{
		{Commit: "abc1234", Action: "reword"},
		{Commit: "def5678", Action: "squash"},
	}}

	content := `pick def5678 Second commit
pick abc1234 First commit
# comment
`

	once := plan.Transform(content)
	twice := plan.Transform(once)

	require.Equal(t, once, twice)
}

func TestSequencePlanTransformProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")

		actions := []string{"pick", "reword", "edit", "squash", "fixup", "drop"}

		items := make([]SequenceItem, n)
		lines := make([]string, n)

		for i := range items {
			commit := rapid.StringMatching(`[0-9a-f]{7}`).Draw(t, "commit")
			items[i] = SequenceItem{
				Commit: commit,
				Action: rapid.SampledFrom(actions).Draw(t, "action"),
			}
			lines[i] = "pick " + commit + " subject line"
		}

		plan := &SequencePlan{Items: items}

		// Shuffle the todo lines.
		perm := rapid.Permutation(lines).Draw(t, "perm")

		content := ""
		for _, l := range perm {
			content += l + "\n"
		}

		out := plan.Transform(content)

		// Idempotent.
		require.Equal(t, out, plan.Transform(out))

		// Every input line survives in some form: line count preserved.
		require.Len(t, splitLines(out), len(perm))
	})
}

func splitLines(s string) []string {
	var lines []string

	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}

	if start < len(s) {
		lines = append(lines, s[start:])
	}

	return lines
}
