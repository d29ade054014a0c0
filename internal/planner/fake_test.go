package planner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/week"
)

// manualClock fires AfterFunc callbacks synchronously from Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	c      *manualClock
	at     time.Time
	f      func()
	active bool
}

func newManualClock(start time.Time) *manualClock { return &manualClock{now: start} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now.Add(d), f: f, active: true}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	was := t.active
	t.active = false
	return was
}

func (t *manualTimer) Reset(d time.Duration) bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	was := t.active
	t.at = t.c.now.Add(d)
	t.active = true
	return was
}

func (c *manualClock) activeTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.active {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing due timers in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*manualTimer
		for _, t := range c.timers {
			if t.active && !t.at.After(target) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		next := due[0]
		c.now = next.at
		next.active = false
		c.mu.Unlock()

		next.f()
	}
}

type savedCall struct {
	at   time.Time
	week string
	snap model.Snapshot
}

type fakeRemote struct {
	clock Clock

	mu      sync.Mutex
	loadRes *model.Snapshot
	loadErr error
	saveErr error
	loads   int
	saves   []savedCall
}

func (r *fakeRemote) Load(_ context.Context, _ week.Week) (*model.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.loadRes == nil {
		return nil, nil
	}
	s := r.loadRes.Clone()
	return &s, nil
}

func (r *fakeRemote) Save(_ context.Context, w week.Week, s model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var at time.Time
	if r.clock != nil {
		at = r.clock.Now()
	}
	r.saves = append(r.saves, savedCall{at: at, week: w.StartDate(), snap: s.Clone()})
	return r.saveErr
}

func (r *fakeRemote) Saves() []savedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]savedCall{}, r.saves...)
}
