package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Markdowner is implemented by CLI payloads that have a markdown rendition.
type Markdowner interface {
	Markdown() string
}

// Check reports whether format is one Write understands. Commands call it before doing
// any work so a bad --format cannot fail after a side effect.
func Check(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json", "markdown", "md":
		return nil
	default:
		return fmt.Errorf("unknown format: %s (expected json|markdown)", format)
	}
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - markdown (payload must implement Markdowner)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "markdown", "md":
		m, ok := v.(Markdowner)
		if !ok {
			return fmt.Errorf("markdown output is not available for this command")
		}
		_, err := io.WriteString(w, m.Markdown())
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
