package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"tagmedic/internal/rules"
)

type ConsoleSink struct {
	writer          io.Writer
	format          string // "text", "json", "ndjson"
	mu              sync.Mutex
	verdicts        []rules.Verdict // For JSON array output
	allowedStatuses map[string]bool
}

var statusColors = map[rules.Status]*color.Color{
	rules.StatusPass:           color.New(color.FgGreen),
	rules.StatusFail:           color.New(color.FgRed),
	rules.StatusIncorrectValue: color.New(color.FgYellow),
	rules.StatusInvalidURL:     color.New(color.FgMagenta),
	rules.StatusMissingValue:   color.New(color.FgCyan),
}

func NewConsoleSink(w io.Writer, format string, filterStatuses []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer: w,
		format: format,
	}

	if len(filterStatuses) > 0 {
		s.allowedStatuses = make(map[string]bool)
		for _, st := range filterStatuses {
			// Status values are compared case-insensitively; the enum uses
			// title case ("Incorrect Value").
			s.allowedStatuses[strings.ToLower(st)] = true
		}
	}

	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	// Apply filtering if configured
	if len(s.allowedStatuses) > 0 {
		if r, ok := v.(rules.Verdict); ok {
			if !s.allowedStatuses[strings.ToLower(string(r.Status))] {
				return nil
			}
		}
	}

	switch s.format {
	case "json":
		r, ok := v.(rules.Verdict)
		if !ok {
			// Ignore non-verdict events in JSON console mode.
			return nil
		}
		s.verdicts = append(s.verdicts, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case rules.Verdict:
			if err := encoder.Encode(eventFromVerdict(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		r, ok := v.(rules.Verdict)
		if !ok {
			// Ignore events in text mode.
			return nil
		}
		status := string(r.Status)
		if c, ok := statusColors[r.Status]; ok {
			status = c.Sprint(status)
		}
		if _, err := fmt.Fprintf(s.writer, "[%s] %s (%s): %s", status, r.RowID, r.Category, r.Key); err != nil {
			return err
		}
		if r.Value != "" {
			if _, err := fmt.Fprintf(s.writer, " = %q", r.Value); err != nil {
				return err
			}
		}
		if r.Message != "" {
			if _, err := fmt.Fprintf(s.writer, " - %s", r.Message); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(s.writer); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

// flushIfPossible pushes buffered bytes through writers that expose a Flush
// method, so streamed NDJSON lines land per verdict rather than per run.
// Shared by the console and emit sinks.
func flushIfPossible(w io.Writer) error {
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.verdicts); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
