package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/isq-24/weekly-planner/internal/format"
	"github.com/isq-24/weekly-planner/internal/planner"
	"github.com/isq-24/weekly-planner/internal/remote"
	"github.com/isq-24/weekly-planner/internal/store"
	"github.com/isq-24/weekly-planner/internal/tui"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type App struct {
	Endpoint   string
	Wire       string
	ConfigPath string
	PrettyJSON bool
	Format     string
	WeekOffset int

	// Seams for tests.
	now        func() time.Time
	getenv     func(string) string
	httpClient *http.Client
	confirm    func(cmd *cobra.Command, prompt string) (bool, error)
	runTUI     func(ctx context.Context, opts tui.Options) error
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	if app.now == nil {
		app.now = time.Now
	}
	if app.getenv == nil {
		app.getenv = os.Getenv
	}
	if app.confirm == nil {
		app.confirm = linerConfirm
	}
	if app.runTUI == nil {
		app.runTUI = tui.Run
	}

	cmd := &cobra.Command{
		Use:          "planner",
		Short:        "Weekly planner: seven day checklists, a weekly goal and a memo, synced to a remote script",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive planner
  planner

  # Point it at your deployed script once
  planner config set endpoint https://script.google.com/macros/s/XXX/exec

  # Scriptable commands
  planner show --format markdown
  planner add wed "Dentist at 3pm"
  planner toggle wed 1736300000000

  # Run a local endpoint for testing
  planner endpoint serve --addr 127.0.0.1:8787
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loadDotEnv(cmd)
		if !cmd.Flags().Changed("format") {
			if v := strings.TrimSpace(app.getenv("PLANNER_FORMAT")); v != "" {
				app.Format = v
			}
		}
		return format.Check(app.Format)
	}

	cmd.PersistentFlags().StringVar(&app.Endpoint, "endpoint", "", "Remote script URL (env PLANNER_ENDPOINT)")
	cmd.PersistentFlags().StringVar(&app.Wire, "wire", "", "Wire format: days|flat (env PLANNER_WIRE)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file path (env PLANNER_CONFIG)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "json", "Output format: json|markdown (env PLANNER_FORMAT)")
	cmd.PersistentFlags().IntVar(&app.WeekOffset, "week", 0, "Week offset from the current week (-1 = last week)")

	cmd.AddCommand(newWeekCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newGoalCmd(app))
	cmd.AddCommand(newMemoCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newEndpointCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadDotEnv loads ./.env without overriding variables that are already set.
func loadDotEnv(cmd *cobra.Command) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnf(cmd, ".env: %v", err)
	}
}

func (app *App) configPath() (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(app.getenv("PLANNER_CONFIG")); p != "" {
		return p, nil
	}
	return store.ConfigPath()
}

// resolveConfig layers defaults < config file < environment < flags.
func resolveConfig(app *App) (store.Config, error) {
	path, err := app.configPath()
	if err != nil {
		return store.Config{}, err
	}
	fileCfg, _, err := store.LoadConfigFile(path)
	if err != nil {
		return store.Config{}, err
	}
	envCfg, err := store.FromEnv(app.getenv)
	if err != nil {
		return store.Config{}, err
	}
	cfg := store.Merge(store.Merge(store.DefaultConfig(), fileCfg), envCfg)
	cfg = store.Merge(cfg, store.Config{Endpoint: app.Endpoint, Wire: app.Wire})
	if err := cfg.Validate(); err != nil {
		return store.Config{}, err
	}
	return cfg, nil
}

// resolveSyncConfig is resolveConfig for commands that talk to the remote. The flat wire
// has no week scope, so any week but the current one would read and overwrite the same
// record.
func resolveSyncConfig(app *App) (store.Config, error) {
	cfg, err := resolveConfig(app)
	if err != nil {
		return store.Config{}, err
	}
	if cfg.Wire == remote.CodecFlat && app.WeekOffset != 0 {
		return store.Config{}, errFlatNoWeeks
	}
	return cfg, nil
}

func newClient(app *App, cfg store.Config) (*remote.Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errNoEndpoint
	}
	codec, err := remote.CodecByName(cfg.Wire)
	if err != nil {
		return nil, err
	}
	opts := []remote.Option{remote.WithCodec(codec), remote.WithTimeout(cfg.Timeout.Std())}
	if app.httpClient != nil {
		opts = append(opts, remote.WithHTTPClient(app.httpClient))
	}
	return remote.New(cfg.Endpoint, opts...)
}

func (app *App) currentWeek() week.Week {
	return week.CurrentWeek(app.now()).Shift(app.WeekOffset)
}

// openPlanner loads the selected week. One-shot commands refuse to continue on a load
// failure: saving on top of an empty fallback would overwrite the remote week.
func openPlanner(ctx context.Context, app *App) (*planner.State, error) {
	cfg, err := resolveSyncConfig(app)
	if err != nil {
		return nil, err
	}
	client, err := newClient(app, cfg)
	if err != nil {
		return nil, err
	}
	st := planner.New(client, app.currentWeek(),
		planner.WithDebounce(cfg.Debounce.Std()),
		planner.WithSaveTimeout(cfg.Timeout.Std()),
	)
	if err := st.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// commit sends the edits made by a one-shot command right away.
func commit(ctx context.Context, st *planner.State) error {
	defer st.Close()
	return st.Flush(ctx)
}

func runTUI(cmd *cobra.Command, app *App) error {
	cfg, err := resolveSyncConfig(app)
	if err != nil {
		return err
	}
	client, err := newClient(app, cfg)
	if err != nil {
		return err
	}
	opts := tui.Options{
		Remote:     client,
		Week:       app.currentWeek(),
		Debounce:   cfg.Debounce.Std(),
		SingleWeek: cfg.Wire == remote.CodecFlat,
	}
	if cfg.TUI != nil {
		opts.Glyphs = cfg.TUI.Glyphs
		opts.RenderMemo = cfg.TUI.RenderMemo != nil && *cfg.TUI.RenderMemo
	}
	return app.runTUI(cmd.Context(), opts)
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func warnf(cmd *cobra.Command, f string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+f+"\n", args...)
}
