package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig_JSONC(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(`{
		// deployed web app
		"endpoint": "https://script.google.com/macros/s/abc/exec",
		"wire": "flat",
		"debounce": "2s",
		"timeout": 5000, // bare numbers are milliseconds
		"tui": {"glyphs": "ascii"},
	}`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	want := Config{
		Endpoint: "https://script.google.com/macros/s/abc/exec",
		Wire:     "flat",
		Debounce: Duration(2 * time.Second),
		Timeout:  Duration(5 * time.Second),
		TUI:      &TUIConfig{Glyphs: "ascii"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile_MissingAndInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, loaded, err := LoadConfigFile(filepath.Join(dir, "nope.json"))
	if err != nil || loaded {
		t.Fatalf("missing file: loaded=%v err=%v", loaded, err)
	}
	if cfg != (Config{}) {
		t.Fatalf("expected zero config; got %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"endpoint": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadConfigFile(bad); err == nil || !strings.Contains(err.Error(), bad) {
		t.Fatalf("expected error naming the file; got %v", err)
	}
}

func TestSaveConfigFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	in := DefaultConfig()
	in.Endpoint = "http://127.0.0.1:8787/exec"
	if err := in.Set("tui.renderMemo", "yes"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := SaveConfigFile(path, in); err != nil {
		t.Fatalf("SaveConfigFile: %v", err)
	}
	out, loaded, err := LoadConfigFile(path)
	if err != nil || !loaded {
		t.Fatalf("LoadConfigFile: loaded=%v err=%v", loaded, err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeAndEnvPrecedence(t *testing.T) {
	t.Parallel()

	file := Config{Endpoint: "https://file.example/exec", Wire: "flat", Debounce: Duration(3 * time.Second)}
	env, err := FromEnv(func(k string) string {
		switch k {
		case "PLANNER_ENDPOINT":
			return "https://env.example/exec"
		case "PLANNER_DEBOUNCE":
			return "750ms"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	cfg := Merge(Merge(DefaultConfig(), file), env)
	if cfg.Endpoint != "https://env.example/exec" {
		t.Fatalf("env must override file endpoint; got %q", cfg.Endpoint)
	}
	if cfg.Wire != "flat" {
		t.Fatalf("file wire must survive an empty env; got %q", cfg.Wire)
	}
	if cfg.Debounce.Std() != 750*time.Millisecond {
		t.Fatalf("expected 750ms; got %v", cfg.Debounce.Std())
	}
	if cfg.Timeout.Std() != DefaultTimeout {
		t.Fatalf("expected default timeout; got %v", cfg.Timeout.Std())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if _, err := FromEnv(func(k string) string {
		if k == "PLANNER_TIMEOUT" {
			return "soon"
		}
		return ""
	}); err == nil {
		t.Fatalf("expected bad duration error")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	bad := []Config{
		{Wire: "xml", Debounce: 1, Timeout: 1},
		{Wire: "days", Debounce: 0, Timeout: 1},
		{Wire: "days", Debounce: 1, Timeout: 1, Endpoint: "not a url"},
		{Wire: "days", Debounce: 1, Timeout: 1, TUI: &TUIConfig{Glyphs: "emoji"}},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, c)
		}
	}

	var c Config
	if err := c.Set("colour", "red"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	for _, v := range []string{"-1s", "0s", "0"} {
		if err := c.Set("debounce", v); err == nil {
			t.Fatalf("expected debounce %q to be rejected", v)
		}
		if err := c.Set("timeout", v); err == nil {
			t.Fatalf("expected timeout %q to be rejected", v)
		}
	}
	if c.Debounce != 0 || c.Timeout != 0 {
		t.Fatalf("rejected values must not be stored; got %+v", c)
	}
}
