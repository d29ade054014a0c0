package cli

import (
	"io"
	"strings"

	"github.com/isq-24/weekly-planner/internal/planner"

	"github.com/spf13/cobra"
)

type textResult struct {
	Week    string `json:"week"`
	Field   string `json:"field"`
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

func (r textResult) Markdown() string {
	if strings.TrimSpace(r.Text) == "" {
		return ""
	}
	return r.Text + "\n"
}

// newTextFieldCmd builds goal and memo: print without arguments, replace otherwise.
func newTextFieldCmd(app *App, field, short string, get func(*planner.State) string, set func(*planner.State, string) error) *cobra.Command {
	var (
		fromStdin bool
		clear     bool
	)
	cmd := &cobra.Command{
		Use:   field + " [text...]",
		Short: short,
		Long: short + ".\n\nText that starts with a dash must follow \"--\" so it is not read as a flag,\n" +
			"or come from stdin with --stdin.",
		Example: "  planner " + field + " Ship the draft\n" +
			"  planner " + field + " -- \"- call plumber\"\n" +
			"  planner " + field + " --stdin < notes.md",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return err
			}

			write := clear || fromStdin || len(args) > 0
			if !write {
				st.Close()
				return writeOut(cmd, app, textResult{Week: st.Week().StartDate(), Field: field, Text: get(st)})
			}

			text := strings.Join(args, " ")
			switch {
			case clear:
				text = ""
			case fromStdin:
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					st.Close()
					return err
				}
				text = strings.TrimRight(string(b), "\n")
			}

			before := get(st)
			if err := set(st, text); err != nil {
				st.Close()
				return err
			}
			if err := commit(cmd.Context(), st); err != nil {
				return err
			}
			return writeOut(cmd, app, textResult{Week: st.Week().StartDate(), Field: field, Text: text, Changed: before != text})
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the text from stdin")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the text")
	return cmd
}

func newGoalCmd(app *App) *cobra.Command {
	return newTextFieldCmd(app, "goal", "Show or set the weekly goal",
		func(st *planner.State) string { return st.Snapshot().WeekGoal },
		(*planner.State).SetWeekGoal)
}

func newMemoCmd(app *App) *cobra.Command {
	return newTextFieldCmd(app, "memo", "Show or set the weekly memo",
		func(st *planner.State) string { return st.Snapshot().Memo },
		(*planner.State).SetMemo)
}
