package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

const (
	DefaultWire     = "days"
	DefaultDebounce = 1500 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

var (
	errConfigInvalid = errors.New("invalid config")
	errUnknownKey    = errors.New("unknown config key")
)

// Config is the user configuration. Zero fields mean "use the default".
type Config struct {
	// Endpoint is the remote script URL (e.g. a spreadsheet web-app /exec URL).
	Endpoint string `json:"endpoint,omitempty"`
	// Wire selects the payload contract: days|flat.
	Wire     string   `json:"wire,omitempty"`
	Debounce Duration `json:"debounce,omitempty"`
	Timeout  Duration `json:"timeout,omitempty"`

	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects checkbox glyphs: unicode|ascii.
	Glyphs string `json:"glyphs,omitempty"`
	// RenderMemo renders the memo preview as Markdown.
	RenderMemo *bool `json:"renderMemo,omitempty"`
}

// Duration marshals as a Go duration string ("1.5s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Bare numbers are milliseconds.
		var ms int64
		if err2 := json.Unmarshal(b, &ms); err2 != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func DefaultConfig() Config {
	return Config{
		Wire:     DefaultWire,
		Debounce: Duration(DefaultDebounce),
		Timeout:  Duration(DefaultTimeout),
	}
}

// ConfigDir resolves PLANNER_CONFIG_DIR, then $XDG_CONFIG_HOME/planner, then ~/.config/planner.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("PLANNER_CONFIG_DIR")); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); v != "" {
		return filepath.Join(v, "planner"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "planner"), nil
}

// ConfigPath is PLANNER_CONFIG when set, otherwise config.json in ConfigDir.
func ConfigPath() (string, error) {
	if v := strings.TrimSpace(os.Getenv("PLANNER_CONFIG")); v != "" {
		return v, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfigFile reads a JSONC config file. A missing file yields the zero Config and
// loaded=false.
func LoadConfigFile(path string) (cfg Config, loaded bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, false, nil
		}
		return Config{}, false, err
	}
	cfg, err = ParseConfig(b)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return cfg, true, nil
}

func ParseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

// SaveConfigFile writes cfg atomically, creating parent directories.
func SaveConfigFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return atomic.WriteFile(path, strings.NewReader(string(b)))
}

// Merge overlays non-zero fields of overlay onto base.
func Merge(base, overlay Config) Config {
	if strings.TrimSpace(overlay.Endpoint) != "" {
		base.Endpoint = strings.TrimSpace(overlay.Endpoint)
	}
	if strings.TrimSpace(overlay.Wire) != "" {
		base.Wire = strings.ToLower(strings.TrimSpace(overlay.Wire))
	}
	if overlay.Debounce > 0 {
		base.Debounce = overlay.Debounce
	}
	if overlay.Timeout > 0 {
		base.Timeout = overlay.Timeout
	}
	if overlay.TUI != nil {
		base.TUI = overlay.TUI
	}
	return base
}

// FromEnv reads PLANNER_ENDPOINT, PLANNER_WIRE, PLANNER_DEBOUNCE and PLANNER_TIMEOUT.
// Unparseable durations are reported, not ignored.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Endpoint: strings.TrimSpace(getenv("PLANNER_ENDPOINT")),
		Wire:     strings.TrimSpace(getenv("PLANNER_WIRE")),
	}
	if v := strings.TrimSpace(getenv("PLANNER_DEBOUNCE")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("PLANNER_DEBOUNCE: %w", err)
		}
		cfg.Debounce = Duration(d)
	}
	if v := strings.TrimSpace(getenv("PLANNER_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("PLANNER_TIMEOUT: %w", err)
		}
		cfg.Timeout = Duration(d)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Wire {
	case "days", "flat":
	default:
		return fmt.Errorf("%w: wire must be days|flat, got %q", errConfigInvalid, c.Wire)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("%w: debounce must be positive", errConfigInvalid)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", errConfigInvalid)
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: endpoint must be an http(s) url, got %q", errConfigInvalid, c.Endpoint)
		}
	}
	if c.TUI != nil {
		switch c.TUI.Glyphs {
		case "", "unicode", "ascii":
		default:
			return fmt.Errorf("%w: tui.glyphs must be unicode|ascii, got %q", errConfigInvalid, c.TUI.Glyphs)
		}
	}
	return nil
}

// ConfigKeys lists the keys accepted by Set.
var ConfigKeys = []string{"endpoint", "wire", "debounce", "timeout", "tui.glyphs", "tui.renderMemo"}

// Set assigns one key from its string form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "endpoint":
		c.Endpoint = value
	case "wire":
		c.Wire = strings.ToLower(value)
	case "debounce", "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", errConfigInvalid, key, value)
		}
		if key == "debounce" {
			c.Debounce = Duration(d)
		} else {
			c.Timeout = Duration(d)
		}
	case "tui.glyphs":
		if c.TUI == nil {
			c.TUI = &TUIConfig{}
		}
		c.TUI.Glyphs = strings.ToLower(value)
	case "tui.renderMemo":
		if c.TUI == nil {
			c.TUI = &TUIConfig{}
		}
		b := value == "1" || strings.EqualFold(value, "true") || strings.EqualFold(value, "yes") || strings.EqualFold(value, "on")
		c.TUI.RenderMemo = &b
	default:
		return fmt.Errorf("%w: %s (known: %s)", errUnknownKey, key, strings.Join(ConfigKeys, ", "))
	}
	return nil
}
