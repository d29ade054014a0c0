package publish

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/week"
)

type RenderOptions struct {
	// SkipEmptyDays omits days with no tasks instead of printing "(no tasks)".
	SkipEmptyDays bool
	// IncludeIDs appends task ids, which the one-shot CLI commands take as arguments.
	IncludeIDs bool
}

// RenderWeekMarkdown renders one week as a markdown document: the weekly goal, one
// checklist per day, and the memo.
func RenderWeekMarkdown(w week.Week, snap model.Snapshot, opt RenderOptions) string {
	snap = snap.Normalize()

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Week of " + w.Title())
	writeLn("")

	if goal := strings.TrimSpace(snap.WeekGoal); goal != "" {
		writeLn("## Goal")
		writeLn("")
		writeLn(goal)
		writeLn("")
	}

	for _, d := range w.Days {
		if len(snap.Tasks[d.Key]) == 0 && opt.SkipEmptyDays {
			continue
		}
		writeDay(&buf, d, snap, opt.IncludeIDs)
		writeLn("")
	}

	if memo := strings.TrimSpace(snap.Memo); memo != "" {
		writeLn("## Memo")
		writeLn("")
		writeLn(memo)
		writeLn("")
	}

	return strings.TrimRight(buf.String(), "\n") + "\n"
}

// RenderDayMarkdown renders one day's heading with progress and its checklist.
func RenderDayMarkdown(d week.WeekDay, snap model.Snapshot, opt RenderOptions) string {
	var buf bytes.Buffer
	writeDay(&buf, d, snap.Normalize(), opt.IncludeIDs)
	return buf.String()
}

func writeDay(buf *bytes.Buffer, d week.WeekDay, snap model.Snapshot, withIDs bool) {
	tasks := snap.Tasks[d.Key]
	done, total := snap.Progress(d.Key)
	fmt.Fprintf(buf, "## %s, %s (%d/%d)\n\n", d.Key.Title(), d.Label, done, total)
	if len(tasks) == 0 {
		buf.WriteString("_(no tasks)_\n")
		return
	}
	for _, t := range tasks {
		writeTaskLine(buf, t, withIDs)
	}
}

func writeTaskLine(buf *bytes.Buffer, t model.Task, withID bool) {
	box := " "
	if t.Completed {
		box = "x"
	}
	text := strings.TrimSpace(strings.ReplaceAll(t.Text, "\n", " "))
	if withID {
		fmt.Fprintf(buf, "- [%s] %s `%d`\n", box, text, t.ID)
		return
	}
	fmt.Fprintf(buf, "- [%s] %s\n", box, text)
}
