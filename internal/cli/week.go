package cli

import (
	"fmt"
	"strings"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/publish"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type weekInfo struct {
	Start string         `json:"start"`
	Title string         `json:"title"`
	Days  []week.WeekDay `json:"days"`
}

func newWeekInfo(w week.Week) weekInfo {
	return weekInfo{Start: w.StartDate(), Title: w.Title(), Days: w.Days[:]}
}

func (wi weekInfo) Markdown() string {
	var b strings.Builder
	b.WriteString("# Week of " + wi.Title + "\n\n")
	for _, d := range wi.Days {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", d.Key.Title(), d.Label, d.FullDate)
	}
	return b.String()
}

func newWeekCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Print the dates of the selected week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, newWeekInfo(app.currentWeek()))
		},
	}
}

type weekView struct {
	Week     weekInfo       `json:"week"`
	Snapshot model.Snapshot `json:"snapshot"`

	w week.Week
}

func (v weekView) Markdown() string {
	return publish.RenderWeekMarkdown(v.w, v.Snapshot, publish.RenderOptions{IncludeIDs: true})
}

func newShowCmd(app *App) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the tasks, goal and memo of the selected week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer st.Close()

			v := weekView{Week: newWeekInfo(st.Week()), Snapshot: st.Snapshot(), w: st.Week()}
			if !render {
				return writeOut(cmd, app, v)
			}
			out, err := renderTerminalMarkdown(v.Markdown())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal (ignores --format)")
	return cmd
}

func renderTerminalMarkdown(md string) (string, error) {
	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
