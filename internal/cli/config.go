package cli

import (
	"fmt"
	"strings"

	"github.com/isq-24/weekly-planner/internal/store"

	"github.com/spf13/cobra"
)

type configView struct {
	Path   string       `json:"path"`
	Loaded bool         `json:"loaded"`
	Config store.Config `json:"config"`
}

func (v configView) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Config\n\n- path: `%s`\n", v.Path)
	fmt.Fprintf(&b, "- endpoint: %s\n", v.Config.Endpoint)
	fmt.Fprintf(&b, "- wire: %s\n", v.Config.Wire)
	fmt.Fprintf(&b, "- debounce: %s\n", v.Config.Debounce.Std())
	fmt.Fprintf(&b, "- timeout: %s\n", v.Config.Timeout.Std())
	if t := v.Config.TUI; t != nil {
		if t.Glyphs != "" {
			fmt.Fprintf(&b, "- tui.glyphs: %s\n", t.Glyphs)
		}
		if t.RenderMemo != nil {
			fmt.Fprintf(&b, "- tui.renderMemo: %t\n", *t.RenderMemo)
		}
	}
	return b.String()
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the config file",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config (defaults < file < env < flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return err
			}
			_, loaded, err := store.LoadConfigFile(path)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(app)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, configView{Path: path, Loaded: loaded, Config: cfg})
		},
	}

	setCmd := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set one key in the config file",
		Long:      "Known keys: " + strings.Join(store.ConfigKeys, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: store.ConfigKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return err
			}
			cfg, _, err := store.LoadConfigFile(path)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			// The file only holds overrides; validate what they resolve to.
			if err := store.Merge(store.DefaultConfig(), cfg).Validate(); err != nil {
				return err
			}
			if err := store.SaveConfigFile(path, cfg); err != nil {
				return err
			}
			return writeOut(cmd, app, configView{Path: path, Loaded: true, Config: cfg})
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.AddCommand(showCmd, setCmd, pathCmd)
	return cmd
}
