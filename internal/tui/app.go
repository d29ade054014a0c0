package tui

import (
	"fmt"
	"strings"

	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/charmbracelet/lipgloss"
)

const (
	minColumnWidth = 14
	memoHeight     = 6
)

func (m *appModel) resizeInputs() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.goalInput.Width = w - len("Goal: ")
	m.memoArea.SetWidth(w)
	m.memoArea.SetHeight(memoHeight)
	m.addInput.Width = m.columnWidth() - 4
}

// columnWidth is the width of one day column; in narrow terminals only the selected day
// is shown and gets the full width.
func (m appModel) columnWidth() int {
	if m.width <= 0 {
		return minColumnWidth
	}
	if m.narrow() {
		return m.width
	}
	return m.width / week.NumDays
}

func (m appModel) narrow() bool {
	return m.width > 0 && m.width < minColumnWidth*week.NumDays
}

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	if m.modal != modalNone {
		return m.overlayModal(width)
	}

	header := m.viewHeader(width)

	var body string
	if !m.ready() {
		body = lipgloss.NewStyle().Padding(1, 2).Render(m.spinner.View() + " Loading your week…")
	} else {
		body = strings.Join([]string{
			m.viewGoal(width),
			m.viewColumns(),
			m.viewMemo(width),
		}, "\n\n")
	}

	footer := m.help.View(m.keys)
	if m.focus != focusDays {
		footer = styleMuted().Render(m.inputHelp())
	}

	return strings.Join([]string{header, body, footer}, "\n\n")
}

func (m appModel) viewHeader(width int) string {
	w := m.st.Week()
	title := lipgloss.NewStyle().Bold(true).Render("Weekly Planner") + "  " + w.Title()
	switch {
	case m.offset == 0:
		title += styleMuted().Render("  (this week)")
	case m.offset < 0:
		title += styleMuted().Render(fmt.Sprintf("  (%d week(s) ago)", -m.offset))
	default:
		title += styleMuted().Render(fmt.Sprintf("  (in %d week(s))", m.offset))
	}

	status := m.status
	if m.ready() && m.st.Saving() {
		status = "saving…"
	} else if m.ready() && m.st.Dirty() && status != "save failed" {
		status = "unsaved"
	}
	right := styleMuted().Render(status)

	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m appModel) viewGoal(width int) string {
	label := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Goal: ")
	if m.focus == focusGoal {
		return label + renderInputLine(width-lipgloss.Width(label), m.goalInput.View())
	}
	goal := strings.TrimSpace(m.st.Snapshot().WeekGoal)
	if goal == "" {
		goal = styleMuted().Render("(press g to set a goal)")
	}
	return label + goal
}

func (m appModel) viewMemo(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render("Memo")
	if m.focus == focusMemo {
		return title + "\n" + m.memoArea.View()
	}
	memo := strings.TrimSpace(m.st.Snapshot().Memo)
	if memo == "" {
		return title + "\n" + styleMuted().Render("(press m to write a memo)")
	}
	if m.opts.RenderMemo {
		if r := renderMarkdown(memo, width); r != "" {
			memo = r
		}
	}
	return title + "\n" + normalizePane(memo, width, 0)
}

func (m appModel) inputHelp() string {
	switch m.focus {
	case focusAdd:
		return "enter: add   tab/shift+tab: other day   esc: cancel"
	case focusGoal:
		return "enter/esc: done"
	case focusMemo:
		return "esc/ctrl+s: done"
	default:
		return ""
	}
}

func (m appModel) overlayModal(width int) string {
	var box string
	switch m.modal {
	case modalConfirmReset:
		box = renderConfirmModal(width, "Reset week", resetModalBody, "Reset", "Cancel", m.confirmFocus)
	case modalNotice:
		box = renderNoticeModal(width, "Something went wrong", m.notice)
	}
	h := m.height
	if h <= 0 {
		h = lipgloss.Height(box)
	}
	return lipgloss.Place(width, h, lipgloss.Center, lipgloss.Center, box)
}

const resetModalBody = "Remove every task, the weekly goal and the memo for this week?\nThis is saved right away and cannot be undone."
