package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/K-NRS/repo-cli/output"
	"github.com/K-NRS/repo-cli/plan"
)

// chromeHeight is the vertical space taken by the header, the status
// line, and the footer around the main panes.
const chromeHeight = 5

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	hashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	groupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	switch m.mode {
	case ModeRewordEdit:
		b.WriteString(m.rewordView())
	case ModeSplitView:
		b.WriteString(m.splitView())
	case ModePreview:
		b.WriteString(m.previewView())
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.footerView())

	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("repo craft")
	counts := dimStyle.Render(fmt.Sprintf(
		"%d commit(s), %d action(s)",
		len(m.commits), plan.CountActions(m.entries),
	))

	return title + "  " + counts
}

func (m Model) footerView() string {
	status := ""
	if m.status != "" {
		status = statusStyle.Render(m.status) + "\n"
	}

	var help string

	switch m.mode {
	case ModeCommitList:
		help = "j/k move  space select  Enter actions  p preview  D diff  q quit"
	case ModeActionMenu:
		help = "r reword  s split  q squash  f fixup  d drop  e edit  m reorder  x pick  Esc back"
	case ModeSquashTarget:
		help = "j/k choose target  Enter squash  Esc cancel"
	case ModeReorder:
		help = "J/K move commit  j/k cursor  Enter/Esc done"
	case ModeSplitView:
		help = "j/k move  space toggle  1-9 group  g new  n message  Enter done  Esc cancel"
	case ModeRewordEdit:
		help = "Esc done"
	case ModePreview:
		help = "y/Enter execute  j/k scroll  Esc back"
	}

	return status + dimStyle.Render(help)
}

// listView renders the commit list beside the diff pane.
func (m Model) listView() string {
	var lines []string

	for i, c := range m.commits {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}

		mark := "[ ]"
		if m.selected[i] {
			mark = selectedStyle.Render("[x]")
		}

		action := ""
		if kind := m.entries[i].Action.Kind; kind != plan.Pick {
			action = " " + actionStyle.Render(kind.String())
		}

		line := fmt.Sprintf(
			"%s%s %s %s %s%s",
			prefix, mark, hashStyle.Render(c.ShortHash), c.Subject,
			dimStyle.Render("("+output.RelativeTime(c.Date)+")"), action,
		)
		if i == m.cursor && m.mode == ModeSquashTarget {
			line += dimStyle.Render("  <- squash target")
		}

		lines = append(lines, line)
	}

	left := strings.Join(lines, "\n")
	if !m.diffLoaded {
		return left
	}

	right := paneStyle.Render(m.diffView.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m Model) rewordView() string {
	header := fmt.Sprintf(
		"rewording %s", hashStyle.Render(m.commits[m.cursor].ShortHash),
	)

	return header + "\n\n" + m.reword.View()
}

func (m Model) splitView() string {
	var lines []string

	for i, fh := range m.hunks {
		prefix := "  "
		if i == m.hunkCursor {
			prefix = cursorStyle.Render("> ")
		}

		group := dimStyle.Render("[-]")
		if g := m.hunkGroups[i]; g > 0 {
			group = groupStyle.Render(fmt.Sprintf("[%d]", g))
		}

		lines = append(lines, fmt.Sprintf("%s%s %s", prefix, group, fh.Summary()))
	}

	body := strings.Join(lines, "\n")

	if m.editingMsg {
		body += fmt.Sprintf(
			"\n\ngroup %d message: %s", m.msgGroup, m.msgInput.View(),
		)
	}

	preview := m.hunks[m.hunkCursor].Hunk.Header()

	return body + "\n\n" + dimStyle.Render(preview)
}

func (m Model) previewView() string {
	header := titleStyle.Render("plan preview") +
		dimStyle.Render("  (oldest first)")

	return header + "\n" + paneStyle.Render(m.diffView.View())
}
