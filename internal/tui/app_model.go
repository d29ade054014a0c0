package tui

import (
	"context"
	"log"
	"time"

	"github.com/isq-24/weekly-planner/internal/planner"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loadTimeout  = 30 * time.Second
	flushTimeout = 10 * time.Second
)

type appModel struct {
	opts Options
	// thisWeek is the week the session started in; weeks are browsed relative to it.
	thisWeek week.Week
	offset   int

	st     *planner.State
	saveCh chan planner.SaveResult

	width  int
	height int

	keys     keyMap
	help     help.Model
	showHelp bool
	spinner  spinner.Model

	focus focus
	day   week.DayKey
	// rows remembers the selected task index per day.
	rows [week.NumDays]int

	addInput  textinput.Model
	goalInput textinput.Model
	memoArea  textarea.Model

	modal        modalKind
	confirmFocus confirmModalFocus
	notice       string

	status string
}

func newAppModel(opts Options) appModel {
	if opts.Debounce <= 0 {
		opts.Debounce = planner.DefaultDebounce
	}
	if opts.Week.Start.IsZero() {
		opts.Week = week.CurrentWeek(time.Now())
	}

	m := appModel{
		opts:     opts,
		thisWeek: opts.Week,
		saveCh:   make(chan planner.SaveResult, 32),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		day:      week.FromWeekday(time.Now().Weekday()),
	}
	if !opts.Week.Contains(time.Now()) {
		m.day = week.Mon
	}
	if opts.SingleWeek {
		m.keys.PrevWeek.SetEnabled(false)
		m.keys.NextWeek.SetEnabled(false)
		m.keys.ThisWeek.SetEnabled(false)
	}

	m.addInput = textinput.New()
	m.addInput.Placeholder = "New task"
	m.addInput.CharLimit = 500
	m.addInput.Prompt = ""

	m.goalInput = textinput.New()
	m.goalInput.Placeholder = "What matters most this week?"
	m.goalInput.CharLimit = 500
	m.goalInput.Prompt = ""

	m.memoArea = textarea.New()
	m.memoArea.Placeholder = "Notes for the week…"
	m.memoArea.CharLimit = 0
	m.memoArea.ShowLineNumbers = false
	m.memoArea.SetWidth(72)
	m.memoArea.SetHeight(6)

	m.st = m.newState(opts.Week)
	return m
}

func (m appModel) newState(w week.Week) *planner.State {
	ch := m.saveCh
	return planner.New(m.opts.Remote, w,
		planner.WithDebounce(m.opts.Debounce),
		planner.WithSaveHook(func(res planner.SaveResult) {
			select {
			case ch <- res:
			default:
				// The UI is not draining results; drop rather than block the saver.
				log.Printf("save result dropped (week %s, err=%v)", res.Week.StartDate(), res.Err)
			}
		}),
	)
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCmd(m.st, nil), waitForSave(m.saveCh))
}

// loadCmd flushes prev (the week being left, if any) and loads st.
func loadCmd(st *planner.State, prev *planner.State) tea.Cmd {
	return func() tea.Msg {
		var flushErr error
		if prev != nil {
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			flushErr = prev.Flush(ctx)
			cancel()
			prev.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		err := st.Load(ctx)
		return loadDoneMsg{st: st, err: err, flushErr: flushErr}
	}
}

func waitForSave(ch <-chan planner.SaveResult) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{res: <-ch}
	}
}

func resetCmd(st *planner.State) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		ok, err := st.ResetAll(ctx, planner.Confirmed)
		return resetDoneMsg{st: st, ok: ok, err: err}
	}
}

func quitCmd(st *planner.State) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		return quitFlushDoneMsg{err: st.Flush(ctx)}
	}
}

// shutdown sends edits still waiting for the debounce window and stops the timer.
func (m appModel) shutdown() error {
	if m.st == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	err := m.st.Flush(ctx)
	m.st.Close()
	return err
}

func (m appModel) ready() bool {
	return m.st != nil && m.st.Phase() == planner.PhaseReady
}

// switchWeek moves the view offset weeks from the starting week, flushing the current one.
func (m appModel) switchWeek(offset int) (appModel, tea.Cmd) {
	if offset == m.offset || m.opts.SingleWeek {
		return m, nil
	}
	prev := m.st
	m.offset = offset
	w := m.thisWeek.Shift(offset)
	m.st = m.newState(w)
	m.focus = focusDays
	m.addInput.Blur()
	m.addInput.Reset()
	m.goalInput.Blur()
	m.memoArea.Blur()
	m.rows = [week.NumDays]int{}
	m.status = ""
	if offset == 0 {
		m.day = week.FromWeekday(time.Now().Weekday())
		if !w.Contains(time.Now()) {
			m.day = week.Mon
		}
	}
	return m, tea.Batch(m.spinner.Tick, loadCmd(m.st, prev))
}
