package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/K-NRS/repo-cli/diff"
	"github.com/K-NRS/repo-cli/git"
	"github.com/K-NRS/repo-cli/output"
	"github.com/K-NRS/repo-cli/plan"
)

// maxSplitGroups bounds the number of split groups per commit; groups
// are addressed by the digit keys 1-9.
const maxSplitGroups = 9

// Model is the plan builder's state. The commits, entries, and
// selection flags are three parallel arrays maintained in lockstep:
// reordering swaps all three so that an entry's OriginalIndex always
// travels with its commit.
type Model struct {
	loader Loader

	commits  []git.Commit
	entries  []plan.Entry
	selected []bool
	cursor   int
	mode     Mode

	outcome  Outcome
	quitting bool

	// Reword state.
	reword         textarea.Model
	rewordOriginal string

	// Split state.
	hunks      []diff.FileHunk
	hunkCursor int
	hunkGroups []int // group per hunk, 0 = unassigned
	nextGroup  int
	splitMsgs  []string // indexed by group number
	msgInput   textinput.Model
	editingMsg bool
	msgGroup   int

	// Squash state.
	squashSource int

	// Diff / preview panes.
	diffView   viewport.Model
	diffLoaded bool

	cache map[int][]diff.FileHunk

	status string
	width  int
	height int
}

// New creates a session over the loaded commits. The first preselect
// commits start selected.
func New(commits []git.Commit, preselect int, loader Loader) Model {
	// Reordering swaps in place; work on a copy so the caller's slice
	// keeps its original log order.
	commits = append([]git.Commit(nil), commits...)

	selected := make([]bool, len(commits))
	for i := 0; i < preselect && i < len(selected); i++ {
		selected[i] = true
	}

	ta := textarea.New()
	ta.ShowLineNumbers = false

	ti := textinput.New()
	ti.CharLimit = 200

	return Model{
		loader:   loader,
		commits:  commits,
		entries:  plan.New(len(commits)),
		selected: selected,
		reword:   ta,
		msgInput: ti,
		diffView: viewport.New(0, 0),
		cache:    make(map[int][]diff.FileHunk),
	}
}

// Outcome returns the session result. Nil until the session ended.
func (m Model) Outcome() *Outcome {
	if !m.quitting {
		return nil
	}

	out := m.outcome

	return &out
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model: one handler per mode.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.cancel()
		}

		switch m.mode {
		case ModeCommitList:
			return m.updateCommitList(msg)
		case ModeActionMenu:
			return m.updateActionMenu(msg)
		case ModeRewordEdit:
			return m.updateRewordEdit(msg)
		case ModeSplitView:
			return m.updateSplitView(msg)
		case ModeSquashTarget:
			return m.updateSquashTarget(msg)
		case ModeReorder:
			return m.updateReorder(msg)
		case ModePreview:
			return m.updatePreview(msg)
		}
	}

	return m, nil
}

func (m *Model) resize() {
	paneHeight := m.height - chromeHeight
	if paneHeight < 1 {
		paneHeight = 1
	}

	paneWidth := m.width/2 - 2
	if paneWidth < 1 {
		paneWidth = 1
	}

	m.diffView.Width = paneWidth
	m.diffView.Height = paneHeight
	m.reword.SetWidth(m.width - 4)
	m.reword.SetHeight(paneHeight - 2)
}

func (m Model) cancel() (tea.Model, tea.Cmd) {
	m.outcome = Outcome{Execute: false}
	m.quitting = true

	return m, tea.Quit
}

// --- CommitList mode ---

func (m Model) updateCommitList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, len(m.commits)-1)

	case "k", "up":
		m.cursor = max(m.cursor-1, 0)

	case " ", "space":
		m.selected[m.cursor] = !m.selected[m.cursor]

	case "enter":
		m.mode = ModeActionMenu
		m.status = "r=reword s=split q=squash f=fixup d=drop e=edit m=reorder x=pick"

	case "p":
		if plan.CountActions(m.entries) == 0 {
			m.status = "no actions assigned yet"

			break
		}

		m.diffView.SetContent(output.PlanSummary(m.commits, m.entries))
		m.diffView.GotoTop()
		m.mode = ModePreview
		m.status = "y/Enter=execute Esc=back"

	case "D":
		m.loadDiffForCursor()

	case "q", "esc":
		return m.cancel()

	default:
		// Unhandled keys scroll the loaded diff pane.
		if m.diffLoaded {
			var cmd tea.Cmd
			m.diffView, cmd = m.diffView.Update(msg)

			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) loadDiffForCursor() {
	text, err := m.loader.CommitPatch(m.commits[m.cursor].Hash)
	if err != nil {
		m.status = fmt.Sprintf("diff error: %v", err)

		return
	}

	m.diffView.SetContent(output.ColorizePatch(text))
	m.diffView.GotoTop()
	m.diffLoaded = true
	m.status = fmt.Sprintf("diff of %s", m.commits[m.cursor].ShortHash)
}

// --- ActionMenu mode ---

func (m Model) updateActionMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entry := &m.entries[m.cursor]
	commit := m.commits[m.cursor]

	switch msg.String() {
	case "r":
		m.rewordOriginal = commit.Subject
		m.reword.SetValue(commit.Subject)
		m.reword.Focus()
		m.reword.CursorEnd()
		m.mode = ModeRewordEdit
		m.status = "editing message - Esc=done"

		return m, textarea.Blink

	case "s":
		m.enterSplitView()

	case "q":
		m.squashSource = m.cursor
		m.mode = ModeSquashTarget
		m.status = "select target commit to squash into (j/k, Enter)"

	case "f":
		if m.cursor == 0 {
			m.status = "cannot fixup first commit"
			m.mode = ModeCommitList

			break
		}

		entry.Action = plan.Action{
			Kind: plan.Fixup,
			Into: m.entries[m.cursor-1].OriginalIndex,
		}
		m.status = fmt.Sprintf(
			"fixup %s into %s",
			commit.ShortHash, m.commits[m.cursor-1].ShortHash,
		)
		m.mode = ModeCommitList

	case "d":
		entry.Action = plan.Action{Kind: plan.Drop}
		m.status = "drop " + commit.ShortHash
		m.mode = ModeCommitList

	case "e":
		entry.Action = plan.Action{Kind: plan.Edit}
		m.status = "edit stop at " + commit.ShortHash
		m.mode = ModeCommitList

	case "m":
		m.mode = ModeReorder
		m.status = "J/K=move commit Esc=done"

	case "x":
		entry.Action = plan.Action{Kind: plan.Pick}
		m.status = fmt.Sprintf("reset %s to pick", commit.ShortHash)
		m.mode = ModeCommitList

	case "esc":
		m.mode = ModeCommitList
		m.status = ""
	}

	return m, nil
}

func (m *Model) enterSplitView() {
	commit := m.commits[m.cursor]

	if commit.IsMerge() {
		m.status = "cannot split a merge commit"
		m.mode = ModeCommitList

		return
	}

	origIdx := m.entries[m.cursor].OriginalIndex

	hunks, ok := m.cache[origIdx]
	if !ok {
		var err error
		hunks, err = m.loader.CommitHunks(commit.Hash)
		if err != nil {
			m.status = fmt.Sprintf("hunk parse error: %v", err)
			m.mode = ModeCommitList

			return
		}
	}

	if len(hunks) == 0 {
		m.status = "no hunks to split"
		m.mode = ModeCommitList

		return
	}

	m.cache[origIdx] = hunks
	m.hunks = hunks
	m.hunkCursor = 0
	m.hunkGroups = make([]int, len(hunks))
	m.splitMsgs = make([]string, maxSplitGroups+1)
	m.nextGroup = 1
	m.editingMsg = false
	m.mode = ModeSplitView
	m.status = "space=toggle 1-9=assign g=new group n=message Enter=done"
}

// --- RewordEdit mode ---

func (m Model) updateRewordEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		text := strings.TrimSpace(m.reword.Value())

		// Only a real change produces a reword action.
		if text != "" && text != m.rewordOriginal {
			m.entries[m.cursor].Action = plan.Action{
				Kind:    plan.Reword,
				Message: text,
			}
			m.status = "reword " + m.commits[m.cursor].ShortHash
		}

		m.reword.Blur()
		m.mode = ModeCommitList

		return m, nil
	}

	var cmd tea.Cmd
	m.reword, cmd = m.reword.Update(msg)

	return m, cmd
}

// --- SplitView mode ---

func (m Model) updateSplitView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingMsg {
		switch msg.String() {
		case "esc", "enter":
			m.splitMsgs[m.msgGroup] = strings.TrimSpace(m.msgInput.Value())
			m.msgInput.Blur()
			m.editingMsg = false
			m.status = "space=toggle 1-9=assign g=new group n=message Enter=done"

			return m, nil
		}

		var cmd tea.Cmd
		m.msgInput, cmd = m.msgInput.Update(msg)

		return m, cmd
	}

	key := msg.String()

	switch key {
	case "j", "down":
		m.hunkCursor = min(m.hunkCursor+1, len(m.hunks)-1)

	case "k", "up":
		m.hunkCursor = max(m.hunkCursor-1, 0)

	case " ", "space":
		if m.hunkGroups[m.hunkCursor] == 0 {
			m.hunkGroups[m.hunkCursor] = m.nextGroup
		} else {
			m.hunkGroups[m.hunkCursor] = 0
		}

	case "g":
		if m.nextGroup <= maxSplitGroups {
			m.hunkGroups[m.hunkCursor] = m.nextGroup
			m.nextGroup++
		}

	case "n":
		group := m.hunkGroups[m.hunkCursor]
		if group > 0 {
			m.msgGroup = group
			m.msgInput.SetValue(m.splitMsgs[group])
			m.msgInput.Focus()
			m.msgInput.CursorEnd()
			m.editingMsg = true
			m.status = fmt.Sprintf(
				"editing message for group %d (Esc=done)", group,
			)

			return m, textinput.Blink
		}

	case "enter":
		m.finalizeSplit()

	case "esc":
		m.mode = ModeCommitList
		m.status = ""

	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			group := int(key[0] - '0')
			m.hunkGroups[m.hunkCursor] = group
			if group >= m.nextGroup {
				m.nextGroup = group + 1
			}
		}
	}

	return m, nil
}

// finalizeSplit compiles the group assignment into a Split action and
// caches the hunk list for patch synthesis. Rejecting an empty
// assignment leaves the plan and the mode unchanged.
func (m *Model) finalizeSplit() {
	maxGroup := 0
	for _, g := range m.hunkGroups {
		if g > maxGroup {
			maxGroup = g
		}
	}

	if maxGroup == 0 {
		m.status = "no hunks assigned to groups"

		return
	}

	var groups []plan.SplitGroup

	for g := 1; g <= maxGroup; g++ {
		var indices []int
		for i, grp := range m.hunkGroups {
			if grp == g {
				indices = append(indices, i)
			}
		}

		if len(indices) == 0 {
			continue
		}

		msg := m.splitMsgs[g]
		if msg == "" {
			msg = fmt.Sprintf("split part %d", g)
		}

		groups = append(groups, plan.SplitGroup{
			HunkIndices: indices,
			Message:     msg,
		})
	}

	m.entries[m.cursor].Action = plan.Action{
		Kind:   plan.Split,
		Groups: groups,
	}

	unassigned := 0
	for _, g := range m.hunkGroups {
		if g == 0 {
			unassigned++
		}
	}

	m.status = fmt.Sprintf(
		"split %s into %d part(s)",
		m.commits[m.cursor].ShortHash, len(groups),
	)
	if unassigned > 0 {
		m.status += fmt.Sprintf(
			"; %d unassigned hunk(s) will be dropped", unassigned,
		)
	}

	m.mode = ModeCommitList
}

// --- SquashTarget mode ---

func (m Model) updateSquashTarget(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, len(m.commits)-1)

	case "k", "up":
		m.cursor = max(m.cursor-1, 0)

	case "enter":
		// Self-target is not a valid squash; treat it as a no-op.
		if m.cursor != m.squashSource {
			m.entries[m.squashSource].Action = plan.Action{
				Kind: plan.Squash,
				Into: m.entries[m.cursor].OriginalIndex,
			}
			m.status = fmt.Sprintf(
				"squash %s into %s",
				m.commits[m.squashSource].ShortHash,
				m.commits[m.cursor].ShortHash,
			)
		}

		m.cursor = m.squashSource
		m.mode = ModeCommitList

	case "esc":
		m.cursor = m.squashSource
		m.mode = ModeCommitList
		m.status = ""
	}

	return m, nil
}

// --- Reorder mode ---

func (m Model) updateReorder(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "J":
		if m.cursor < len(m.entries)-1 {
			m.swap(m.cursor, m.cursor+1)
			m.cursor++
		}

	case "K":
		if m.cursor > 0 {
			m.swap(m.cursor, m.cursor-1)
			m.cursor--
		}

	case "j", "down":
		m.cursor = min(m.cursor+1, len(m.commits)-1)

	case "k", "up":
		m.cursor = max(m.cursor-1, 0)

	case "esc", "enter":
		m.mode = ModeCommitList
		m.status = "reorder applied"
	}

	return m, nil
}

// swap exchanges two display positions in all three parallel arrays,
// so stable identity and display position never diverge.
func (m *Model) swap(a, b int) {
	m.commits[a], m.commits[b] = m.commits[b], m.commits[a]
	m.entries[a], m.entries[b] = m.entries[b], m.entries[a]
	m.selected[a], m.selected[b] = m.selected[b], m.selected[a]
}

// --- Preview mode ---

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.outcome = Outcome{
			Execute:   true,
			Entries:   m.entries,
			HunkCache: m.cache,
		}
		m.quitting = true

		return m, tea.Quit

	case "esc", "q":
		m.mode = ModeCommitList
		m.status = ""

		return m, nil
	}

	var cmd tea.Cmd
	m.diffView, cmd = m.diffView.Update(msg)

	return m, cmd
}
