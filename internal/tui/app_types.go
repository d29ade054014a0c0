package tui

import (
	"github.com/isq-24/weekly-planner/internal/planner"
)

type focus int

const (
	focusDays focus = iota
	focusAdd
	focusGoal
	focusMemo
)

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmReset
	modalNotice
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// loadDoneMsg reports the initial load of st. flushErr is the save of the week that was
// left behind when switching weeks.
type loadDoneMsg struct {
	st       *planner.State
	err      error
	flushErr error
}

type saveDoneMsg struct {
	res planner.SaveResult
}

type resetDoneMsg struct {
	st  *planner.State
	ok  bool
	err error
}

type quitFlushDoneMsg struct {
	err error
}
