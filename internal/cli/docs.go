package cli

import (
	"fmt"
	"strings"

	"github.com/isq-24/weekly-planner/internal/docs"

	"github.com/spf13/cobra"
)

type docsTopic struct {
	Topic string `json:"topic"`
	Body  string `json:"markdown"`
}

func (d docsTopic) Markdown() string { return d.Body }

type docsTopics struct {
	Topics []string `json:"topics"`
}

func (d docsTopics) Markdown() string {
	var b strings.Builder
	for _, t := range d.Topics {
		b.WriteString("- " + t + "\n")
	}
	return b.String()
}

func newDocsCmd(app *App) *cobra.Command {
	var (
		raw    bool
		render bool
	)

	cmd := &cobra.Command{
		Use:       "docs [topic]",
		Short:     "Show the built-in guides",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: docs.Topics(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, docsTopics{Topics: docs.Topics()})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return fmt.Errorf("unknown docs topic: %q (run `planner docs` to list topics)", topic)
			}

			switch {
			case render:
				out, err := renderTerminalMarkdown(body)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, docsTopic{Topic: topic, Body: body})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown")
	cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal")
	return cmd
}
