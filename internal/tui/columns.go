package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// dayColumn is the render input for one day of the board.
type dayColumn struct {
	day      week.WeekDay
	tasks    []model.Task
	done     int
	selected bool
	today    bool
	row      int
	// input is the rendered add box when this day owns the pending-input slot.
	input string
}

func (m appModel) buildColumns() []dayColumn {
	snap := m.st.Snapshot()
	w := m.st.Week()
	now := time.Now()

	cols := make([]dayColumn, 0, week.NumDays)
	for _, d := range w.Days {
		done, _ := snap.Progress(d.Key)
		col := dayColumn{
			day:      d,
			tasks:    snap.Tasks[d.Key],
			done:     done,
			selected: d.Key == m.day,
			today:    d.FullDate == now.Format(week.DateLayout),
			row:      m.rows[d.Key],
		}
		if m.focus == focusAdd && d.Key == m.day {
			col.input = m.addInput.View()
		}
		cols = append(cols, col)
	}
	return cols
}

func (m appModel) viewColumns() string {
	cols := m.buildColumns()
	colW := m.columnWidth()
	height := m.columnsHeight()

	if m.narrow() {
		return renderDayColumn(cols[m.day], colW, height, m.focus == focusDays)
	}
	rendered := make([]string, 0, len(cols))
	for _, c := range cols {
		rendered = append(rendered, renderDayColumn(c, colW, height, m.focus == focusDays))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// columnsHeight leaves room for header, goal, memo and help.
func (m appModel) columnsHeight() int {
	if m.height <= 0 {
		return 12
	}
	h := m.height - memoHeight - 10
	if h < 6 {
		h = 6
	}
	return h
}

func renderDayColumn(c dayColumn, width, height int, cursor bool) string {
	inner := width - 2
	if inner < 4 {
		inner = 4
	}

	titleStyle := lipgloss.NewStyle().Bold(true)
	if c.today {
		titleStyle = titleStyle.Foreground(colorAccent)
	}
	title := titleStyle.Render(fmt.Sprintf("%s %s", c.day.Key.Title()[:3], c.day.Label))
	progress := styleMuted().Render(fmt.Sprintf("%d/%d", c.done, len(c.tasks)))

	lines := []string{
		title,
		progress + " " + progressBar(c.done, len(c.tasks), inner-xansi.StringWidth(progress)-1),
		styleMuted().Render(strings.Repeat(glyphHRule(), inner)),
	}

	for i, t := range c.tasks {
		box := glyphUnchecked()
		textStyle := lipgloss.NewStyle()
		if t.Completed {
			box = glyphChecked()
			textStyle = styleMuted().Strikethrough(true)
		}
		line := box + " " + textStyle.Render(oneLine(t.Text))
		if c.selected && cursor && i == c.row {
			line = lipgloss.NewStyle().
				Foreground(colorSelectedFg).
				Background(colorSelectedBg).
				Bold(true).
				Render(normalizePane(line, inner, 1))
		}
		lines = append(lines, line)
	}
	if len(c.tasks) == 0 {
		lines = append(lines, styleMuted().Render("no tasks"))
	}

	if c.input != "" {
		lines = append(lines, "", renderInputLine(inner, c.input))
	} else if c.selected {
		lines = append(lines, "", styleMuted().Render("+ add (a)"))
	}

	border := colorCardBorder
	if c.selected {
		border = colorSelectedBorder
	}
	body := normalizePane(strings.Join(lines, "\n"), inner, height-2)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(body)
}

func progressBar(done, total, width int) string {
	if width < 3 || total == 0 {
		return ""
	}
	filled := done * width / total
	return lipgloss.NewStyle().Foreground(colorAccent).Render(strings.Repeat(glyphBarFull(), filled)) +
		styleMuted().Render(strings.Repeat(glyphBarEmpty(), width-filled))
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
