package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/week"
)

// Codec is one wire contract with the remote script. The two known contracts are
// incompatible, so a client speaks exactly one of them.
type Codec interface {
	Name() string
	// Query returns extra GET parameters used to scope a load to w.
	Query(w week.Week) url.Values
	Encode(w week.Week, s model.Snapshot) ([]byte, error)
	// Decode returns nil for an empty payload.
	Decode(w week.Week, body []byte) (*model.Snapshot, error)
}

const (
	CodecDays = "days"
	CodecFlat = "flat"
)

// CodecByName resolves a config value ("days" | "flat"); empty means days.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecDays:
		return DaysCodec{}, nil
	case CodecFlat:
		return FlatCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown wire format: %s (expected %s|%s)", name, CodecDays, CodecFlat)
	}
}

// FlatCodec speaks { tasks: { mon: [...], ... }, weekGoal, memo } with no week scoping.
type FlatCodec struct{}

func (FlatCodec) Name() string { return CodecFlat }

func (FlatCodec) Query(week.Week) url.Values { return nil }

func (FlatCodec) Encode(_ week.Week, s model.Snapshot) ([]byte, error) {
	return json.Marshal(s.Normalize())
}

func (FlatCodec) Decode(_ week.Week, body []byte) (*model.Snapshot, error) {
	if isEmptyPayload(body) {
		return nil, nil
	}
	var raw struct {
		Tasks    json.RawMessage `json:"tasks"`
		WeekGoal *string         `json:"weekGoal"`
		Memo     *string         `json:"memo"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if len(raw.Tasks) == 0 && raw.WeekGoal == nil && raw.Memo == nil {
		return nil, nil
	}

	s := model.EmptySnapshot()
	if len(raw.Tasks) > 0 {
		if err := json.Unmarshal(raw.Tasks, &s.Tasks); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
	}
	if raw.WeekGoal != nil {
		s.WeekGoal = *raw.WeekGoal
	}
	if raw.Memo != nil {
		s.Memo = *raw.Memo
	}
	s = s.Normalize()
	return &s, nil
}

// DaysCodec speaks { daysData: [{ date, label, tasks }], weekGoal, memo } scoped by
// the week's Monday date.
type DaysCodec struct{}

type dayData struct {
	Date  string       `json:"date"`
	Label string       `json:"label"`
	Tasks []model.Task `json:"tasks"`
}

type daysPayload struct {
	DaysData []dayData `json:"daysData"`
	WeekGoal *string   `json:"weekGoal,omitempty"`
	Memo     *string   `json:"memo,omitempty"`
}

func (DaysCodec) Name() string { return CodecDays }

func (DaysCodec) Query(w week.Week) url.Values {
	return url.Values{"weekStartDate": []string{w.StartDate()}}
}

func (DaysCodec) Encode(w week.Week, s model.Snapshot) ([]byte, error) {
	s = s.Normalize()
	p := daysPayload{
		DaysData: make([]dayData, 0, week.NumDays),
		WeekGoal: &s.WeekGoal,
		Memo:     &s.Memo,
	}
	for _, d := range w.Days {
		p.DaysData = append(p.DaysData, dayData{
			Date:  d.FullDate,
			Label: d.Label,
			Tasks: s.Tasks[d.Key],
		})
	}
	return json.Marshal(p)
}

func (DaysCodec) Decode(w week.Week, body []byte) (*model.Snapshot, error) {
	if isEmptyPayload(body) {
		return nil, nil
	}
	var p daysPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.DaysData == nil && p.WeekGoal == nil && p.Memo == nil {
		return nil, nil
	}

	s := model.EmptySnapshot()
	for _, d := range p.DaysData {
		k, ok := w.KeyForDate(d.Date)
		if !ok {
			continue
		}
		s.Tasks[k] = d.Tasks
	}
	if p.WeekGoal != nil {
		s.WeekGoal = *p.WeekGoal
	}
	if p.Memo != nil {
		s.Memo = *p.Memo
	}
	s = s.Normalize()
	return &s, nil
}

func isEmptyPayload(body []byte) bool {
	b := bytes.TrimSpace(body)
	return len(b) == 0 || string(b) == "null" || string(b) == "{}"
}
