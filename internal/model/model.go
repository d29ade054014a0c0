package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/isq-24/weekly-planner/internal/week"
)

// Task is one checklist entry. ID is a creation timestamp (unix ms) and is unique
// within its day list.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON tolerates ids encoded as floats or numeric strings, which spreadsheet
// backends tend to produce.
func (t *Task) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Text      *string         `json:"text"`
		Completed *bool           `json:"completed"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := parseTaskID(raw.ID)
	if err != nil {
		return err
	}
	*t = Task{ID: id}
	if raw.Text != nil {
		t.Text = *raw.Text
	}
	if raw.Completed != nil {
		t.Completed = *raw.Completed
	}
	return nil
}

func parseTaskID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid task id: %s", string(raw))
	}
	return int64(f), nil
}

// DayTasks holds one ordered task list per DayKey. Insertion order is display order.
type DayTasks [week.NumDays][]Task

func (d DayTasks) Get(k week.DayKey) []Task {
	if !k.Valid() {
		return nil
	}
	return d[k]
}

// MarshalJSON encodes the lists as an object keyed by day ("mon".."sun"). Every day is
// present, empty days as [].
func (d DayTasks) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range week.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k.String()))
		buf.WriteByte(':')
		tasks := d[k]
		if tasks == nil {
			tasks = []Task{}
		}
		b, err := json.Marshal(tasks)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the lists wholesale. Unknown keys are ignored and missing days
// become empty lists.
func (d *DayTasks) UnmarshalJSON(b []byte) error {
	var m map[string][]Task
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out DayTasks
	for key, tasks := range m {
		k, err := week.ParseDayKey(key)
		if err != nil {
			continue
		}
		out[k] = tasks
	}
	*d = out.normalized()
	return nil
}

func (d DayTasks) normalized() DayTasks {
	for i := range d {
		if d[i] == nil {
			d[i] = []Task{}
		}
	}
	return d
}

// Snapshot is the full persisted value: tasks by day, weekly goal, and memo.
type Snapshot struct {
	Tasks    DayTasks `json:"tasks"`
	WeekGoal string   `json:"weekGoal"`
	Memo     string   `json:"memo"`
}

// EmptySnapshot has all seven days present and empty.
func EmptySnapshot() Snapshot {
	return Snapshot{Tasks: DayTasks{}.normalized()}
}

// Clone deep-copies the task lists.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{WeekGoal: s.WeekGoal, Memo: s.Memo}
	for i, tasks := range s.Tasks {
		out.Tasks[i] = append([]Task{}, tasks...)
	}
	return out
}

// Normalize makes every day non-nil.
func (s Snapshot) Normalize() Snapshot {
	s.Tasks = s.Tasks.normalized()
	return s
}

func (s Snapshot) IsEmpty() bool {
	if strings.TrimSpace(s.WeekGoal) != "" || strings.TrimSpace(s.Memo) != "" {
		return false
	}
	for _, tasks := range s.Tasks {
		if len(tasks) > 0 {
			return false
		}
	}
	return true
}

// Progress returns (done, total) for one day.
func (s Snapshot) Progress(k week.DayKey) (int, int) {
	tasks := s.Tasks.Get(k)
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return done, len(tasks)
}

// FindTask returns the index of id in day k, or -1.
func (s Snapshot) FindTask(k week.DayKey, id int64) int {
	for i, t := range s.Tasks.Get(k) {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// PendingInput is the single in-progress new-task slot. Only one day can own it.
type PendingInput struct {
	Day    week.DayKey `json:"day"`
	Active bool        `json:"active"`
	Text   string      `json:"text"`
}
