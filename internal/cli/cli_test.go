package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/isq-24/weekly-planner/internal/endpoint"
	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/store"
	"github.com/isq-24/weekly-planner/internal/tui"
	"github.com/isq-24/weekly-planner/internal/week"

	"github.com/spf13/cobra"
)

var testNow = time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	t      *testing.T
	url    string
	ws     *store.WeekStore
	dir    string
	env    map[string]string
	client *httptest.Server

	// confirmAnswer is returned by the reset prompt.
	confirmAnswer bool
	prompts       []string
	tuiOpts       *tui.Options
	stdin         string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ws, err := store.OpenWeekStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenWeekStore: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	srv, err := endpoint.NewServer(endpoint.ServerConfig{Store: ws})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	return &testEnv{
		t:      t,
		url:    hs.URL + endpoint.Path,
		ws:     ws,
		dir:    t.TempDir(),
		env:    map[string]string{},
		client: hs,
	}
}

func (e *testEnv) configPath() string { return filepath.Join(e.dir, "config.json") }

func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()

	app := &App{
		now:        func() time.Time { return testNow },
		getenv:     func(k string) string { return e.env[k] },
		httpClient: e.client.Client(),
		confirm: func(_ *cobra.Command, prompt string) (bool, error) {
			e.prompts = append(e.prompts, prompt)
			return e.confirmAnswer, nil
		},
		runTUI: func(_ context.Context, opts tui.Options) error {
			e.tuiOpts = &opts
			return nil
		},
	}
	cmd := newRootCmd(app)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(e.stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath()}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	stdout, stderr, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("planner %v: %v\nstderr:\n%s", args, err, stderr)
	}
	return stdout
}

func (e *testEnv) remoteWeek(start string) model.Snapshot {
	e.t.Helper()
	snap, err := e.ws.Get(context.Background(), start)
	if err != nil {
		e.t.Fatalf("Get(%s): %v", start, err)
	}
	if snap == nil {
		return model.EmptySnapshot()
	}
	return *snap
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", s, err)
	}
	return v
}

func TestCLI_TaskLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url

	added := decode[taskResult](t, e.mustRun("add", "wed", "Dentist", "at", "3pm"))
	if added.Week != "2025-01-06" || added.Day != week.Wed || added.Task == nil || added.Task.Text != "Dentist at 3pm" {
		t.Fatalf("unexpected add result: %+v", added)
	}
	id := added.Task.ID
	e.mustRun("add", "wed", "Call mum")

	snap := e.remoteWeek("2025-01-06")
	if got := len(snap.Tasks[week.Wed]); got != 2 {
		t.Fatalf("expected 2 tasks saved remotely; got %d", got)
	}

	toggled := decode[taskResult](t, e.mustRun("toggle", "wed", itoa(id)))
	if toggled.Action != "toggled" || toggled.Task == nil || !toggled.Task.Completed {
		t.Fatalf("expected task to be completed: %+v", toggled)
	}
	if !e.remoteWeek("2025-01-06").Tasks[week.Wed][0].Completed {
		t.Fatalf("expected the toggle to be saved")
	}

	e.mustRun("delete", "wed", itoa(id))
	tasks := e.remoteWeek("2025-01-06").Tasks[week.Wed]
	if len(tasks) != 1 || tasks[0].Text != "Call mum" {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}

	_, _, err := e.run("toggle", "wed", itoa(id))
	var nf notFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found for a deleted task; got %v", err)
	}
}

func TestCLI_GoalMemoAndShow(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url

	e.mustRun("goal", "Ship", "the", "draft")
	e.mustRun("memo", "--", "- call plumber")
	got := decode[textResult](t, e.mustRun("goal"))
	if got.Text != "Ship the draft" || got.Changed {
		t.Fatalf("unexpected goal: %+v", got)
	}

	e.mustRun("add", "mon", "Buy milk")
	v := decode[weekView](t, e.mustRun("show"))
	if v.Week.Start != "2025-01-06" || v.Snapshot.WeekGoal != "Ship the draft" || v.Snapshot.Memo != "- call plumber" {
		t.Fatalf("unexpected show output: %+v", v)
	}
	if tasks := v.Snapshot.Tasks[week.Mon]; len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Fatalf("unexpected Monday tasks: %+v", tasks)
	}

	md := e.mustRun("--format", "markdown", "show")
	for _, s := range []string{"# Week of Jan 6", "## Goal", "Ship the draft", "- [ ] Buy milk", "## Memo"} {
		if !strings.Contains(md, s) {
			t.Fatalf("expected %q in markdown:\n%s", s, md)
		}
	}

	e.mustRun("goal", "--clear")
	if g := e.remoteWeek("2025-01-06").WeekGoal; g != "" {
		t.Fatalf("expected cleared goal; got %q", g)
	}
}

func TestCLI_WeekOffsetTargetsOtherWeek(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url

	e.mustRun("--week", "-1", "add", "fri", "Retro")
	if tasks := e.remoteWeek("2024-12-30").Tasks[week.Fri]; len(tasks) != 1 {
		t.Fatalf("expected last week's Friday to hold the task; got %+v", tasks)
	}
	if !e.remoteWeek("2025-01-06").IsEmpty() {
		t.Fatalf("this week must be untouched")
	}

	info := decode[weekInfo](t, e.mustRun("--week", "1", "week"))
	if info.Start != "2025-01-13" || len(info.Days) != week.NumDays {
		t.Fatalf("unexpected week info: %+v", info)
	}
}

func TestCLI_ResetAsksUnlessYes(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url
	e.mustRun("add", "sat", "Hike")

	res := decode[resetResult](t, e.mustRun("reset"))
	if res.Reset || len(e.prompts) != 1 {
		t.Fatalf("expected a declined prompt; res=%+v prompts=%v", res, e.prompts)
	}
	if e.remoteWeek("2025-01-06").IsEmpty() {
		t.Fatalf("declined reset must keep the week")
	}

	res = decode[resetResult](t, e.mustRun("reset", "--yes"))
	if !res.Reset || len(e.prompts) != 1 {
		t.Fatalf("expected --yes to skip the prompt; res=%+v prompts=%v", res, e.prompts)
	}
	if !e.remoteWeek("2025-01-06").IsEmpty() {
		t.Fatalf("expected an empty week after reset")
	}
}

func TestCLI_RequiresEndpoint(t *testing.T) {
	e := newTestEnv(t)

	_, _, err := e.run("show")
	if !errors.Is(err, errNoEndpoint) {
		t.Fatalf("expected errNoEndpoint; got %v", err)
	}
	_, _, err = e.run()
	if !errors.Is(err, errNoEndpoint) {
		t.Fatalf("expected the TUI to need an endpoint too; got %v", err)
	}
}

func TestCLI_LoadFailureRefusesToSave(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url
	e.mustRun("add", "mon", "Keep me")

	// A server that always fails.
	e.env["PLANNER_ENDPOINT"] = e.client.URL + "/missing"
	if _, _, err := e.run("add", "mon", "Lost"); err == nil {
		t.Fatalf("expected the load failure to abort the command")
	}
	if tasks := e.remoteWeek("2025-01-06").Tasks[week.Mon]; len(tasks) != 1 || tasks[0].Text != "Keep me" {
		t.Fatalf("remote week must be untouched; got %+v", tasks)
	}
}

func TestCLI_ConfigSetAndPrecedence(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun("config", "set", "endpoint", e.url)
	e.mustRun("config", "set", "wire", "flat")
	e.mustRun("config", "set", "tui.renderMemo", "true")
	if _, _, err := e.run("config", "set", "wire", "xml"); err == nil {
		t.Fatalf("expected an invalid wire to be rejected")
	}
	if _, _, err := e.run("config", "set", "colour", "blue"); err == nil {
		t.Fatalf("expected an unknown key to be rejected")
	}

	cfg, loaded, err := store.LoadConfigFile(e.configPath())
	if err != nil || !loaded {
		t.Fatalf("LoadConfigFile: loaded=%v err=%v", loaded, err)
	}
	if cfg.Wire != "flat" || cfg.Endpoint != e.url {
		t.Fatalf("unexpected saved config: %+v", cfg)
	}

	e.env["PLANNER_WIRE"] = "days"
	v := decode[configView](t, e.mustRun("config", "show"))
	if v.Config.Wire != "days" {
		t.Fatalf("env must override the file; got %q", v.Config.Wire)
	}
	v = decode[configView](t, e.mustRun("--wire", "flat", "config", "show"))
	if v.Config.Wire != "flat" {
		t.Fatalf("flags must override env; got %q", v.Config.Wire)
	}

	// The file endpoint and flat wire work end to end.
	delete(e.env, "PLANNER_WIRE")
	e.mustRun("add", "tue", "Flat wire")
	if tasks := e.remoteWeek(store.UnscopedWeek).Tasks[week.Tue]; len(tasks) != 1 {
		t.Fatalf("expected the flat wire to store an unscoped week; got %+v", tasks)
	}

	e.mustRun()
	if e.tuiOpts == nil || !e.tuiOpts.RenderMemo || e.tuiOpts.Week.StartDate() != "2025-01-06" {
		t.Fatalf("unexpected TUI options: %+v", e.tuiOpts)
	}

	if got := strings.TrimSpace(e.mustRun("config", "path")); got != e.configPath() {
		t.Fatalf("config path = %q, want %q", got, e.configPath())
	}
}

func TestCLI_PublishWritesMarkdown(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url
	e.mustRun("add", "thu", "Write report")

	out := t.TempDir()
	e.mustRun("publish", "--to", out)
	b, err := os.ReadFile(filepath.Join(out, "weeks", "2025-01-06.md"))
	if err != nil {
		t.Fatalf("read published file: %v", err)
	}
	if !strings.Contains(string(b), "- [ ] Write report") {
		t.Fatalf("unexpected markdown:\n%s", b)
	}
	if _, _, err := e.run("publish", "--to", out); err == nil {
		t.Fatalf("expected publish to refuse to overwrite")
	}
	e.mustRun("publish", "--to", out, "--overwrite")
}

func TestCLI_InvalidArguments(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url

	for _, args := range [][]string{
		{"add", "someday", "x"},
		{"add", "mon", "   "},
		{"toggle", "mon", "abc"},
	} {
		if _, _, err := e.run(args...); err == nil {
			t.Fatalf("expected %v to fail", args)
		}
	}
}

func TestCLI_DashLedTextNeedsSeparatorOrStdin(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url

	if _, _, err := e.run("memo", "- call plumber"); err == nil {
		t.Fatalf("expected a dash-led argument without -- to be read as a flag")
	}
	if m := e.remoteWeek("2025-01-06").Memo; m != "" {
		t.Fatalf("failed memo must not be saved; got %q", m)
	}

	e.stdin = "- call plumber\n- pay rent\n"
	got := decode[textResult](t, e.mustRun("memo", "--stdin"))
	if got.Text != "- call plumber\n- pay rent" || !got.Changed {
		t.Fatalf("unexpected memo from stdin: %+v", got)
	}
	if m := e.remoteWeek("2025-01-06").Memo; m != "- call plumber\n- pay rent" {
		t.Fatalf("unexpected saved memo %q", m)
	}

	e.mustRun("goal", "--", "-10kg")
	if g := e.remoteWeek("2025-01-06").WeekGoal; g != "-10kg" {
		t.Fatalf("unexpected goal %q", g)
	}

	help := e.mustRun("memo", "--help")
	if !strings.Contains(help, `planner memo -- "- call plumber"`) {
		t.Fatalf("memo help must show the -- separator:\n%s", help)
	}
}

func TestCLI_FlatWireRejectsOtherWeeks(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url
	e.env["PLANNER_WIRE"] = "flat"
	e.mustRun("add", "mon", "Keep me")

	for _, args := range [][]string{
		{"--week", "-1", "reset", "--yes"},
		{"--week", "1", "add", "mon", "Next week"},
		{"--week", "-1", "show"},
		{"--week", "1"},
	} {
		if _, _, err := e.run(args...); !errors.Is(err, errFlatNoWeeks) {
			t.Fatalf("planner %v: expected errFlatNoWeeks; got %v", args, err)
		}
	}
	if e.tuiOpts != nil {
		t.Fatalf("the TUI must not start for another week on the flat wire")
	}
	tasks := e.remoteWeek(store.UnscopedWeek).Tasks[week.Mon]
	if len(tasks) != 1 || tasks[0].Text != "Keep me" {
		t.Fatalf("flat record must be untouched; got %+v", tasks)
	}

	// The current week still works, and the TUI is told not to browse.
	e.mustRun("--week", "0", "show")
	e.mustRun()
	if e.tuiOpts == nil || !e.tuiOpts.SingleWeek {
		t.Fatalf("expected SingleWeek for the flat wire; got %+v", e.tuiOpts)
	}

	// The week command only does date math and stays available.
	info := decode[weekInfo](t, e.mustRun("--week", "1", "week"))
	if info.Start != "2025-01-13" {
		t.Fatalf("unexpected week info: %+v", info)
	}
}

func TestCLI_MutationsWithMarkdownFormat(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url

	out := e.mustRun("--format", "markdown", "add", "wed", "Dentist")
	id := e.remoteWeek("2025-01-06").Tasks[week.Wed][0].ID
	for _, s := range []string{"added: Dentist `" + itoa(id) + "`", "## Wed", "- [ ] Dentist"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in add output:\n%s", s, out)
		}
	}

	out = e.mustRun("--format", "md", "toggle", "wed", itoa(id))
	if !strings.Contains(out, "toggled: Dentist") || !strings.Contains(out, "- [x] Dentist") {
		t.Fatalf("unexpected toggle output:\n%s", out)
	}

	out = e.mustRun("--format", "markdown", "delete", "wed", itoa(id))
	if !strings.Contains(out, "deleted: Dentist") || !strings.Contains(out, "_(no tasks)_") {
		t.Fatalf("unexpected delete output:\n%s", out)
	}

	if out := e.mustRun("--format", "markdown", "goal", "Rest"); out != "Rest\n" {
		t.Fatalf("unexpected goal output %q", out)
	}
	if out := e.mustRun("--format", "markdown", "memo", "Groceries"); out != "Groceries\n" {
		t.Fatalf("unexpected memo output %q", out)
	}

	dir := t.TempDir()
	out = e.mustRun("--format", "markdown", "publish", "--to", dir)
	if !strings.Contains(out, "- wrote `") || !strings.Contains(out, "2025-01-06.md") {
		t.Fatalf("unexpected publish output:\n%s", out)
	}

	if out := e.mustRun("--format", "markdown", "reset", "--yes"); out != "Week of 2025-01-06 reset.\n" {
		t.Fatalf("unexpected reset output %q", out)
	}
	if !e.remoteWeek("2025-01-06").IsEmpty() {
		t.Fatalf("expected the reset to be saved")
	}
}

func TestCLI_UnknownFormatFailsBeforeSaving(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url

	if _, _, err := e.run("--format", "xml", "add", "mon", "Lost"); err == nil {
		t.Fatalf("expected an unknown format to be rejected")
	}
	if !e.remoteWeek("2025-01-06").IsEmpty() {
		t.Fatalf("nothing may be saved when the format is invalid")
	}
}

func TestCLI_FormatFromEnvironment(t *testing.T) {
	e := newTestEnv(t)
	e.env["PLANNER_ENDPOINT"] = e.url
	e.env["PLANNER_FORMAT"] = "markdown"
	e.mustRun("add", "mon", "Buy milk")

	if md := e.mustRun("show"); !strings.Contains(md, "# Week of Jan 6") {
		t.Fatalf("expected PLANNER_FORMAT to select markdown:\n%s", md)
	}
	v := decode[weekView](t, e.mustRun("--format", "json", "show"))
	if v.Week.Start != "2025-01-06" {
		t.Fatalf("explicit --format must win over the environment: %+v", v)
	}

	e.env["PLANNER_FORMAT"] = "yaml"
	if _, _, err := e.run("show"); err == nil {
		t.Fatalf("expected an unknown PLANNER_FORMAT to be rejected")
	}
}
