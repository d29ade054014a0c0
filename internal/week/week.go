package week

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in storage keys.
const DateLayout = "2006-01-02"

// DayKey identifies one day column. The zero value is Monday.
type DayKey int

const (
	Mon DayKey = iota
	Tue
	Wed
	Thu
	Fri
	Sat
	Sun
)

// NumDays is the number of day keys; arrays indexed by DayKey use it as their length.
const NumDays = 7

// Days lists every DayKey in display order (Monday first).
var Days = [NumDays]DayKey{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var dayNames = [NumDays]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var dayTitles = [NumDays]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var ErrUnknownDay = errors.New("unknown day")

func (d DayKey) Valid() bool { return d >= Mon && d <= Sun }

func (d DayKey) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayKey(%d)", int(d))
	}
	return dayNames[d]
}

// Title is the long English day name ("Monday").
func (d DayKey) Title() string {
	if !d.Valid() {
		return d.String()
	}
	return dayTitles[d]
}

// ParseDayKey accepts the short key ("mon"), the full name ("monday"), or a 1-based
// index ("1" = Monday). Matching is case-insensitive.
func ParseDayKey(s string) (DayKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range dayNames {
		if s == name || s == strings.ToLower(dayTitles[i]) {
			return DayKey(i), nil
		}
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '7' {
		return DayKey(s[0] - '1'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDay, s)
}

func (d DayKey) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDay, int(d))
	}
	return []byte(dayNames[d]), nil
}

func (d *DayKey) UnmarshalText(b []byte) error {
	k, err := ParseDayKey(string(b))
	if err != nil {
		return err
	}
	*d = k
	return nil
}

// FromWeekday converts a time.Weekday (Sunday = 0) to a Monday-first DayKey.
func FromWeekday(wd time.Weekday) DayKey {
	return DayKey((int(wd) + 6) % NumDays)
}

// WeekDay is one derived, read-only column header.
type WeekDay struct {
	Key      DayKey    `json:"key"`
	Label    string    `json:"label"`
	FullDate string    `json:"fullDate"`
	Date     time.Time `json:"-"`
}

type Week struct {
	Start time.Time
	Days  [NumDays]WeekDay
}

// StartOfWeek returns Monday 00:00 of the ISO week containing now, in now's location.
func StartOfWeek(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -int(FromWeekday(now.Weekday())))
}

// CurrentWeek computes the seven dates of the week containing now.
func CurrentWeek(now time.Time) Week {
	start := StartOfWeek(now)
	w := Week{Start: start}
	for _, k := range Days {
		date := start.AddDate(0, 0, int(k))
		w.Days[k] = WeekDay{
			Key:      k,
			Label:    date.Format("Jan 2"),
			FullDate: date.Format(DateLayout),
			Date:     date,
		}
	}
	return w
}

// Shift returns the week n weeks after w (n may be negative).
func (w Week) Shift(n int) Week {
	// Use noon to stay clear of DST edges before snapping back to Monday.
	anchor := w.Start.Add(12 * time.Hour).AddDate(0, 0, 7*n)
	return CurrentWeek(anchor)
}

// StartDate is the Monday date in DateLayout.
func (w Week) StartDate() string { return w.Days[Mon].FullDate }

func (w Week) Day(k DayKey) WeekDay {
	if !k.Valid() {
		return WeekDay{}
	}
	return w.Days[k]
}

// KeyForDate maps an ISO date back to its DayKey; false when the date is not in w.
func (w Week) KeyForDate(date string) (DayKey, bool) {
	date = strings.TrimSpace(date)
	if len(date) > len(DateLayout) {
		// Spreadsheets store local midnight as a UTC instant ("2025-01-05T23:00:00.000Z"),
		// so the day is read in the week's location.
		if t, err := time.Parse(time.RFC3339Nano, date); err == nil {
			date = t.In(w.Start.Location()).Format(DateLayout)
		} else {
			date = date[:len(DateLayout)]
		}
	}
	for _, d := range w.Days {
		if d.FullDate == date {
			return d.Key, true
		}
	}
	return 0, false
}

func (w Week) Contains(t time.Time) bool {
	_, ok := w.KeyForDate(t.In(w.Start.Location()).Format(DateLayout))
	return ok
}

// Title renders "Jan 6 – Jan 12, 2025".
func (w Week) Title() string {
	first := w.Days[Mon].Date
	last := w.Days[Sun].Date
	return fmt.Sprintf("%s – %s", first.Format("Jan 2"), last.Format("Jan 2, 2006"))
}
