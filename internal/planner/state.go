package planner

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/week"
)

// DefaultDebounce is the quiet period between the last edit and the save it triggers.
const DefaultDebounce = 1500 * time.Millisecond

const defaultSaveTimeout = 30 * time.Second

// Remote is the persistence bridge. *remote.Client implements it.
type Remote interface {
	Load(ctx context.Context, w week.Week) (*model.Snapshot, error)
	Save(ctx context.Context, w week.Week, s model.Snapshot) error
}

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// SaveResult is delivered to the save hook after every save attempt.
type SaveResult struct {
	Week      week.Week
	Snapshot  model.Snapshot
	Err       error
	At        time.Time
	Immediate bool
}

type SaveHook func(SaveResult)

// ConfirmFunc is the blocking yes/no prompt guarding ResetAll.
type ConfirmFunc func(prompt string) bool

// Confirmed is a ConfirmFunc for callers that already asked the user.
func Confirmed(string) bool { return true }

// ResetPrompt is the question shown before ResetAll.
const ResetPrompt = "Reset all tasks, the weekly goal and the memo for this week?"

type Option func(*State)

func WithDebounce(d time.Duration) Option {
	return func(s *State) {
		if d > 0 {
			s.debounce = d
		}
	}
}

func WithClock(c Clock) Option {
	return func(s *State) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithSaveHook(h SaveHook) Option {
	return func(s *State) { s.hook = h }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *State) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// State is the session's planner: one week of tasks, the weekly goal, and the memo,
// synchronized with a Remote. It starts in PhaseLoading; Load moves it to PhaseReady.
// Every mutation updates memory synchronously and schedules a debounced save.
type State struct {
	remote      Remote
	week        week.Week
	clock       Clock
	debounce    time.Duration
	saveTimeout time.Duration
	hook        SaveHook

	mu       sync.Mutex
	phase    Phase
	snap     model.Snapshot
	pending  model.PendingInput
	lastID   int64
	inflight int
	lastErr  error
	lastSave time.Time

	saver *debouncedSaver
}

func New(r Remote, w week.Week, opts ...Option) *State {
	s := &State{
		remote:      r,
		week:        w,
		clock:       SystemClock,
		debounce:    DefaultDebounce,
		saveTimeout: defaultSaveTimeout,
		phase:       PhaseLoading,
		snap:        model.EmptySnapshot(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.saver = newDebouncedSaver(s.clock, s.debounce, s.debouncedSave)
	return s
}

func (s *State) Week() week.Week { return s.week }

func (s *State) Debounce() time.Duration { return s.debounce }

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot returns a deep copy of the current value.
func (s *State) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

func (s *State) Pending() model.PendingInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Saving reports whether a save request is in flight.
func (s *State) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Dirty reports whether an edit is waiting for its debounce window.
func (s *State) Dirty() bool { return s.saver.Pending() }

// LastSave returns the time of the last transport-successful save and the last save error.
func (s *State) LastSave() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave, s.lastErr
}

// Load hydrates the state from the remote exactly once. On failure the state stays at
// the empty default, still becomes ready, and the error is returned for the caller to
// surface.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseLoading {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.mu.Unlock()

	snap, err := s.remote.Load(ctx, s.week)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseReady
	if err != nil {
		s.snap = model.EmptySnapshot()
		return err
	}
	if snap == nil {
		s.snap = model.EmptySnapshot()
		return nil
	}
	s.snap = snap.Normalize().Clone()
	for _, tasks := range s.snap.Tasks {
		for _, t := range tasks {
			if t.ID > s.lastID {
				s.lastID = t.ID
			}
		}
	}
	return nil
}

// FocusInput gives day's input box the single pending-input slot. Moving focus to a
// different day discards the text typed in the previous one.
func (s *State) FocusInput(day week.DayKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkReadyLocked(day); err != nil {
		return err
	}
	if s.pending.Active && s.pending.Day == day {
		return nil
	}
	s.pending = model.PendingInput{Day: day, Active: true}
	return nil
}

// SetPendingText updates the text of the focused input. It is ignored when no input
// holds the slot.
func (s *State) SetPendingText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReady {
		return ErrNotReady
	}
	if !s.pending.Active {
		return nil
	}
	s.pending.Text = text
	return nil
}

// ClearPending releases the pending-input slot.
func (s *State) ClearPending() {
	s.mu.Lock()
	s.pending = model.PendingInput{}
	s.mu.Unlock()
}

// AddTask appends a new incomplete task to day. It silently does nothing when text is
// blank or when day's input does not hold the pending-input slot.
func (s *State) AddTask(day week.DayKey, text string) (model.Task, bool, error) {
	s.mu.Lock()
	if err := s.checkReadyLocked(day); err != nil {
		s.mu.Unlock()
		return model.Task{}, false, err
	}
	text = strings.TrimSpace(text)
	if text == "" || !s.pending.Active || s.pending.Day != day {
		s.mu.Unlock()
		return model.Task{}, false, nil
	}
	t := model.Task{ID: s.nextIDLocked(), Text: text}
	s.snap.Tasks[day] = append(s.snap.Tasks[day], t)
	s.pending = model.PendingInput{}
	s.mu.Unlock()

	s.saver.Notify()
	return t, true, nil
}

// ToggleTask flips Completed on the task with id in day. Unknown ids are a no-op.
func (s *State) ToggleTask(day week.DayKey, id int64) (bool, error) {
	s.mu.Lock()
	if err := s.checkReadyLocked(day); err != nil {
		s.mu.Unlock()
		return false, err
	}
	i := s.snap.FindTask(day, id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.snap.Tasks[day][i].Completed = !s.snap.Tasks[day][i].Completed
	s.mu.Unlock()

	s.saver.Notify()
	return true, nil
}

// DeleteTask removes the task with id from day. Unknown ids are a no-op.
func (s *State) DeleteTask(day week.DayKey, id int64) (bool, error) {
	s.mu.Lock()
	if err := s.checkReadyLocked(day); err != nil {
		s.mu.Unlock()
		return false, err
	}
	i := s.snap.FindTask(day, id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	old := s.snap.Tasks[day]
	tasks := make([]model.Task, 0, len(old)-1)
	tasks = append(tasks, old[:i]...)
	tasks = append(tasks, old[i+1:]...)
	s.snap.Tasks[day] = tasks
	s.mu.Unlock()

	s.saver.Notify()
	return true, nil
}

func (s *State) SetWeekGoal(text string) error {
	return s.setField(func(snap *model.Snapshot) *string { return &snap.WeekGoal }, text)
}

func (s *State) SetMemo(text string) error {
	return s.setField(func(snap *model.Snapshot) *string { return &snap.Memo }, text)
}

func (s *State) setField(field func(*model.Snapshot) *string, text string) error {
	s.mu.Lock()
	if s.phase != PhaseReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	p := field(&s.snap)
	if *p == text {
		s.mu.Unlock()
		return nil
	}
	*p = text
	s.mu.Unlock()

	s.saver.Notify()
	return nil
}

// ResetAll asks confirm and, on yes, empties every day, the goal, and the memo, then
// saves immediately instead of waiting for the debounce window. It reports whether the
// reset happened; a non-nil error is the save failure.
func (s *State) ResetAll(ctx context.Context, confirm ConfirmFunc) (bool, error) {
	if s.Phase() != PhaseReady {
		return false, ErrNotReady
	}
	if confirm == nil || !confirm(ResetPrompt) {
		return false, nil
	}

	s.mu.Lock()
	s.snap = model.EmptySnapshot()
	s.pending = model.PendingInput{}
	s.mu.Unlock()

	s.saver.Take()
	return true, s.save(ctx, true)
}

// Flush saves right away if an edit is waiting for its debounce window.
func (s *State) Flush(ctx context.Context) error {
	if !s.saver.Take() {
		return nil
	}
	return s.save(ctx, true)
}

// Close cancels a pending debounced save without sending it.
func (s *State) Close() {
	s.saver.Take()
}

func (s *State) debouncedSave() {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	_ = s.save(ctx, false)
}

func (s *State) save(ctx context.Context, immediate bool) error {
	s.mu.Lock()
	snap := s.snap.Clone()
	s.inflight++
	s.mu.Unlock()

	err := s.remote.Save(ctx, s.week, snap)
	at := s.clock.Now()

	s.mu.Lock()
	s.inflight--
	s.lastErr = err
	if err == nil {
		s.lastSave = at
	}
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		hook(SaveResult{Week: s.week, Snapshot: snap, Err: err, At: at, Immediate: immediate})
	}
	return err
}

func (s *State) checkReadyLocked(day week.DayKey) error {
	if s.phase != PhaseReady {
		return ErrNotReady
	}
	if !day.Valid() {
		return week.ErrUnknownDay
	}
	return nil
}

// nextIDLocked returns a unix-ms id that is strictly greater than every id handed out
// or loaded in this session.
func (s *State) nextIDLocked() int64 {
	id := s.clock.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
