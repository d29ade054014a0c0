package tui

import (
	"errors"
	"fmt"
	"log"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/planner"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeInputs()
		return m, nil

	case spinner.TickMsg:
		if m.ready() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadDoneMsg:
		return m.handleLoadDone(msg), nil

	case saveDoneMsg:
		return m.handleSaveDone(msg), waitForSave(m.saveCh)

	case resetDoneMsg:
		if msg.st != m.st {
			return m, nil
		}
		if msg.ok {
			m.rows = [week.NumDays]int{}
			m.addInput.Reset()
		}
		return m, nil

	case quitFlushDoneMsg:
		if msg.err != nil {
			log.Printf("flush on quit: %v", msg.err)
		}
		return m, tea.Quit

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		switch m.focus {
		case focusAdd:
			return m.updateAddInput(msg)
		case focusGoal:
			return m.updateGoalInput(msg)
		case focusMemo:
			return m.updateMemo(msg)
		default:
			return m.updateDays(msg)
		}
	}
	return m, nil
}

func (m appModel) handleLoadDone(msg loadDoneMsg) appModel {
	if msg.flushErr != nil {
		m.showNotice(fmt.Sprintf("Could not save the previous week: %v", msg.flushErr))
	}
	if msg.st != m.st {
		return m
	}
	if msg.err != nil {
		log.Printf("load: %v", msg.err)
		m.showNotice(fmt.Sprintf("Could not load your planner: %v\n\nStarting with an empty week.", msg.err))
	}
	snap := m.st.Snapshot()
	m.goalInput.SetValue(snap.WeekGoal)
	m.memoArea.SetValue(snap.Memo)
	return m
}

func (m appModel) handleSaveDone(msg saveDoneMsg) appModel {
	res := msg.res
	if res.Err != nil {
		log.Printf("save %s: %v", res.Week.StartDate(), res.Err)
		m.status = "save failed"
		m.showNotice(fmt.Sprintf("Could not save your changes: %v\n\nThey are kept on screen and will be sent with the next edit.", res.Err))
		return m
	}
	if res.Week.StartDate() == m.st.Week().StartDate() {
		m.status = "saved " + res.At.Local().Format("15:04:05")
	}
	return m
}

func (m *appModel) showNotice(text string) {
	// A second failure replaces the first; only the latest is actionable.
	m.modal = modalNotice
	m.notice = text
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalNotice:
		switch msg.String() {
		case "enter", "esc", "q", " ":
			m.modal = modalNone
			m.notice = ""
		}
		return m, nil

	case modalConfirmReset:
		switch msg.String() {
		case "tab", "shift+tab", "left", "right", "h", "l":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
			return m, nil
		case "y":
			m.modal = modalNone
			return m, resetCmd(m.st)
		case "n", "esc", "ctrl+g":
			m.modal = modalNone
			return m, nil
		case "enter":
			m.modal = modalNone
			if m.confirmFocus == confirmFocusConfirm {
				return m, resetCmd(m.st)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m appModel) updateDays(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if !m.ready() {
			return m, tea.Quit
		}
		m.status = "saving…"
		return m, quitCmd(m.st)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.PrevWeek):
		return m.switchWeek(m.offset - 1)
	case key.Matches(msg, m.keys.NextWeek):
		return m.switchWeek(m.offset + 1)
	case key.Matches(msg, m.keys.ThisWeek):
		return m.switchWeek(0)
	case key.Matches(msg, m.keys.Left):
		m.day = (m.day + week.NumDays - 1) % week.NumDays
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.day = (m.day + 1) % week.NumDays
		return m, nil
	}

	// Everything below edits the week and waits for the initial load.
	if !m.ready() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.rows[m.day] > 0 {
			m.rows[m.day]--
		}
	case key.Matches(msg, m.keys.Down):
		if m.rows[m.day] < len(m.st.Snapshot().Tasks[m.day])-1 {
			m.rows[m.day]++
		}
	case key.Matches(msg, m.keys.Add):
		return m.startAdd(m.day)
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selectedTask(); ok {
			_, err := m.st.ToggleTask(m.day, t.ID)
			m.reportErr(err)
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selectedTask(); ok {
			_, err := m.st.DeleteTask(m.day, t.ID)
			m.reportErr(err)
			m.clampRow()
		}
	case key.Matches(msg, m.keys.Goal):
		m.focus = focusGoal
		m.goalInput.SetValue(m.st.Snapshot().WeekGoal)
		m.goalInput.CursorEnd()
		return m, m.goalInput.Focus()
	case key.Matches(msg, m.keys.Memo):
		m.focus = focusMemo
		m.memoArea.SetValue(m.st.Snapshot().Memo)
		return m, m.memoArea.Focus()
	case key.Matches(msg, m.keys.Reset):
		m.modal = modalConfirmReset
		m.confirmFocus = confirmFocusCancel
	}
	return m, nil
}

func (m appModel) startAdd(day week.DayKey) (tea.Model, tea.Cmd) {
	if err := m.st.FocusInput(day); err != nil {
		m.reportErr(err)
		return m, nil
	}
	m.day = day
	m.focus = focusAdd
	// The slot may have moved; whatever it holds now is what the box shows.
	m.addInput.SetValue(m.st.Pending().Text)
	m.addInput.CursorEnd()
	return m, m.addInput.Focus()
}

func (m appModel) updateAddInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.st.ClearPending()
		m.addInput.Reset()
		m.addInput.Blur()
		m.focus = focusDays
		return m, nil
	case "tab":
		// Moving to another day's input discards what was typed here.
		m.addInput.Reset()
		return m.startAdd((m.day + 1) % week.NumDays)
	case "shift+tab":
		m.addInput.Reset()
		return m.startAdd((m.day + week.NumDays - 1) % week.NumDays)
	case "enter":
		t, added, err := m.st.AddTask(m.day, m.addInput.Value())
		m.reportErr(err)
		m.addInput.Reset()
		if !added {
			return m, nil
		}
		m.rows[m.day] = m.st.Snapshot().FindTask(m.day, t.ID)
		// Keep the box open for the next task.
		return m.startAdd(m.day)
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	m.reportErr(m.st.SetPendingText(m.addInput.Value()))
	return m, cmd
}

func (m appModel) updateGoalInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "tab":
		m.goalInput.Blur()
		m.focus = focusDays
		return m, nil
	}
	var cmd tea.Cmd
	m.goalInput, cmd = m.goalInput.Update(msg)
	m.reportErr(m.st.SetWeekGoal(m.goalInput.Value()))
	return m, cmd
}

func (m appModel) updateMemo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+s", "tab":
		m.memoArea.Blur()
		m.focus = focusDays
		return m, nil
	}
	var cmd tea.Cmd
	m.memoArea, cmd = m.memoArea.Update(msg)
	m.reportErr(m.st.SetMemo(m.memoArea.Value()))
	return m, cmd
}

func (m appModel) selectedTask() (model.Task, bool) {
	tasks := m.st.Snapshot().Tasks[m.day]
	i := m.rows[m.day]
	if i < 0 || i >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[i], true
}

func (m *appModel) clampRow() {
	n := len(m.st.Snapshot().Tasks[m.day])
	if m.rows[m.day] >= n {
		m.rows[m.day] = n - 1
	}
	if m.rows[m.day] < 0 {
		m.rows[m.day] = 0
	}
}

func (m *appModel) reportErr(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, planner.ErrNotReady) {
		m.status = "still loading…"
		return
	}
	m.status = err.Error()
}
