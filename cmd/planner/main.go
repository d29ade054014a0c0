package main

import (
	"os"
	"strings"

	"github.com/isq-24/weekly-planner/internal/cli"
	"github.com/isq-24/weekly-planner/internal/week"
)

func isDay(s string) bool {
	_, err := week.ParseDayKey(s)
	return err == nil
}

// rewriteDayShortcutArgs turns `planner <day> <text...>` into `planner add <day> <text...>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first (`planner --week -1 fri Retro`), so the first
// positional token is searched for rather than assumed to be argv[1].
func rewriteDayShortcutArgs(argv []string) []string {
	if len(argv) < 3 {
		return argv
	}

	valueFlags := map[string]bool{
		"--endpoint": true,
		"--wire":     true,
		"--config":   true,
		"--format":   true,
		"--week":     true,
	}

	insertAdd := func(i int) []string {
		// A day alone is not a task.
		if i+1 >= len(argv) {
			return argv
		}
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "add")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isDay(argv[i+1]) {
				return insertAdd(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isDay(a) {
			return insertAdd(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDayShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
