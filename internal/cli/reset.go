package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/isq-24/weekly-planner/internal/planner"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

type resetResult struct {
	Week  string `json:"week"`
	Reset bool   `json:"reset"`
}

func (r resetResult) Markdown() string {
	if r.Reset {
		return "Week of " + r.Week + " reset.\n"
	}
	return "Week of " + r.Week + " left unchanged.\n"
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every task, the weekly goal and the memo of the selected week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer st.Close()

			var promptErr error
			confirm := planner.Confirmed
			if !yes {
				confirm = func(prompt string) bool {
					ok, err := app.confirm(cmd, fmt.Sprintf("%s (week of %s)", prompt, st.Week().Title()))
					promptErr = err
					return ok
				}
			}
			ok, err := st.ResetAll(cmd.Context(), confirm)
			if promptErr != nil {
				return promptErr
			}
			if err != nil {
				return err
			}
			return writeOut(cmd, app, resetResult{Week: st.Week().StartDate(), Reset: ok})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Do not ask for confirmation")
	return cmd
}

// linerConfirm asks a y/N question on the terminal. Anything but y/yes is a no.
func linerConfirm(cmd *cobra.Command, prompt string) (bool, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(prompt + " [y/N] ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
