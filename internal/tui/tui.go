package tui

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/isq-24/weekly-planner/internal/planner"
	"github.com/isq-24/weekly-planner/internal/week"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Remote   planner.Remote
	Week     week.Week
	Debounce time.Duration
	// Glyphs is "unicode" or "ascii"; empty falls back to PLANNER_TUI_GLYPHS.
	Glyphs string
	// RenderMemo shows the memo through the markdown renderer when it is not being edited.
	RenderMemo bool
	// SingleWeek disables week navigation, for remotes that keep one record for all weeks.
	SingleWeek bool
}

// Run starts the interactive planner and blocks until the user quits. Pending edits are
// flushed to the remote before it returns.
func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference(opts.Glyphs)

	if path := strings.TrimSpace(os.Getenv("PLANNER_DEBUG_LOG")); path != "" {
		f, err := tea.LogToFile(path, "planner")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		// Stray log lines would draw over the alt screen.
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	final, err := tea.NewProgram(newAppModel(opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		// Interrupted sessions skip the quit flush.
		if ferr := fm.shutdown(); err == nil {
			err = ferr
		}
	}
	return err
}
