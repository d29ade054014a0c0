package cli

import (
	"strings"

	"github.com/isq-24/weekly-planner/internal/publish"

	"github.com/spf13/cobra"
)

type publishResult publish.WriteResult

func (r publishResult) Markdown() string {
	var b strings.Builder
	for _, p := range r.Written {
		b.WriteString("- wrote `" + p + "`\n")
	}
	return b.String()
}

func newPublishCmd(app *App) *cobra.Command {
	var (
		toDir      string
		overwrite  bool
		skipEmpty  bool
		includeIDs bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export the selected week as Markdown (derived, not canonical)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openPlanner(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := publish.WriteWeek(st.Week(), st.Snapshot(), toDir, publish.WriteOptions{
				Overwrite: overwrite,
				Render: publish.RenderOptions{
					SkipEmptyDays: skipEmpty,
					IncludeIDs:    includeIDs,
				},
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, publishResult(res))
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&skipEmpty, "skip-empty", false, "Leave out days without tasks")
	cmd.Flags().BoolVar(&includeIDs, "ids", false, "Append task ids")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
