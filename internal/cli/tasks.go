package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/publish"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/spf13/cobra"
)

type taskResult struct {
	Action   string       `json:"action"`
	Week     string       `json:"week"`
	Day      week.DayKey  `json:"day"`
	Task     *model.Task  `json:"task,omitempty"`
	Tasks    []model.Task `json:"tasks"`
	Progress string       `json:"progress"`

	day  week.WeekDay
	snap model.Snapshot
}

func newTaskResult(action string, w week.Week, day week.DayKey, snap model.Snapshot, task *model.Task) taskResult {
	done, total := snap.Progress(day)
	return taskResult{
		Action:   action,
		Week:     w.StartDate(),
		Day:      day,
		Task:     task,
		Tasks:    snap.Tasks[day],
		Progress: fmt.Sprintf("%d/%d", done, total),
		day:      w.Day(day),
		snap:     snap,
	}
}

func (r taskResult) Markdown() string {
	var b strings.Builder
	if r.Task != nil {
		fmt.Fprintf(&b, "%s: %s `%d`\n\n", r.Action, oneLineText(r.Task.Text), r.Task.ID)
	}
	b.WriteString(publish.RenderDayMarkdown(r.day, r.snap, publish.RenderOptions{IncludeIDs: true}))
	return b.String()
}

func oneLineText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <day> <text...>",
		Short: "Add a task to a day (mon..sun)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := week.ParseDayKey(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("task text is empty")
			}

			st, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return err
			}
			if err := st.FocusInput(day); err != nil {
				st.Close()
				return err
			}
			task, _, err := st.AddTask(day, text)
			if err != nil {
				st.Close()
				return err
			}
			if err := commit(cmd.Context(), st); err != nil {
				return err
			}
			return writeOut(cmd, app, newTaskResult("added", st.Week(), day, st.Snapshot(), &task))
		},
	}
}

// newTaskEditCmd builds toggle and delete, which share arguments and flow. edit returns
// nil when the task does not exist.
func newTaskEditCmd(app *App, use, short string, edit func(cmd *cobra.Command, day week.DayKey, id int64) (*taskResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <day> <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := week.ParseDayKey(args[0])
			if err != nil {
				return err
			}
			id, err := parseTaskID(args[1])
			if err != nil {
				return err
			}
			res, err := edit(cmd, day, id)
			if err != nil {
				return err
			}
			if res == nil {
				return errNotFound("task", fmt.Sprintf("%d on %s", id, day))
			}
			return writeOut(cmd, app, *res)
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return newTaskEditCmd(app, "toggle", "Flip a task between done and not done",
		func(cmd *cobra.Command, day week.DayKey, id int64) (*taskResult, error) {
			st, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return nil, err
			}
			ok, err := st.ToggleTask(day, id)
			if err != nil || !ok {
				st.Close()
				return nil, err
			}
			if err := commit(cmd.Context(), st); err != nil {
				return nil, err
			}
			snap := st.Snapshot()
			task := snap.Tasks[day][snap.FindTask(day, id)]
			res := newTaskResult("toggled", st.Week(), day, snap, &task)
			return &res, nil
		})
}

func newDeleteCmd(app *App) *cobra.Command {
	return newTaskEditCmd(app, "delete", "Remove a task",
		func(cmd *cobra.Command, day week.DayKey, id int64) (*taskResult, error) {
			st, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return nil, err
			}
			before := st.Snapshot()
			i := before.FindTask(day, id)
			ok, err := st.DeleteTask(day, id)
			if err != nil || !ok {
				st.Close()
				return nil, err
			}
			if err := commit(cmd.Context(), st); err != nil {
				return nil, err
			}
			task := before.Tasks[day][i]
			res := newTaskResult("deleted", st.Week(), day, st.Snapshot(), &task)
			return &res, nil
		})
}
