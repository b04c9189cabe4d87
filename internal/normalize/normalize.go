// Package normalize collapses the many representations of "no value" that show
// up in crawled page state (nil, empty string, the literal "N/A") into a single
// sentinel, and tolerantly parses string-encoded lists and mappings into native
// structures before any rule comparison happens.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Empty is the canonical sentinel every absent representation collapses to.
const Empty = ""

// absent markers seen in crawled data layers and tag parameters.
var absentMarkers = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"null": {},
	"none": {},
}

// IsEmpty reports whether a raw cell carries no usable value.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		_, ok := absentMarkers[strings.ToLower(strings.TrimSpace(t))]
		return ok
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// Canonical returns the canonical form of a raw cell: absent representations
// become the Empty sentinel, string-encoded structures become native ones,
// everything else passes through unchanged.
func Canonical(v any, log *zap.Logger) any {
	if IsEmpty(v) {
		return Empty
	}
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "[") {
			return List(trimmed, log)
		}
		if strings.HasPrefix(trimmed, "{") {
			return Mapping(trimmed, log)
		}
	}
	return v
}

// List coerces a raw cell to a []any. Native slices pass through; strings are
// parsed as encoded literals. Malformed input yields an empty slice and a
// warning, never an error.
func List(v any, log *zap.Logger) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case string:
		if IsEmpty(t) {
			return nil
		}
		out, err := parseLiteral[[]any](t)
		if err != nil {
			warn(log, "malformed list literal", t, err)
			return []any{}
		}
		return out
	default:
		return []any{t}
	}
}

// ParseList strictly decodes a string-encoded list literal, reporting malformed
// input instead of degrading it. Callers that must distinguish "empty list" from
// "garbage" use this; everything else goes through List.
func ParseList(s string) ([]any, error) {
	return parseLiteral[[]any](s)
}

// Mapping coerces a raw cell to a map[string]any with the same tolerance as List.
func Mapping(v any, log *zap.Logger) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	case string:
		if IsEmpty(t) {
			return nil
		}
		out, err := parseLiteral[map[string]any](t)
		if err != nil {
			warn(log, "malformed mapping literal", t, err)
			return map[string]any{}
		}
		return out
	default:
		warn(log, "unexpected mapping type", fmt.Sprintf("%T", v), nil)
		return map[string]any{}
	}
}

// String coerces a cell to its textual comparison form. JSON numbers decode as
// float64 and are rendered in plain decimal notation ("5", "1000000"), never
// scientific, which keeps "5" == 5 comparisons honest at any magnitude.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return Empty
	case string:
		if IsEmpty(t) {
			return Empty
		}
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseLiteral decodes a string-encoded structure. Crawled snapshots often use
// JS-style single quotes, so a failed strict decode is retried with quotes
// rewritten before giving up.
func parseLiteral[T any](s string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out, nil
	}
	rewritten := strings.ReplaceAll(s, "'", `"`)
	var retry T
	if err := json.Unmarshal([]byte(rewritten), &retry); err != nil {
		return out, err
	}
	return retry, nil
}

func warn(log *zap.Logger, msg, input string, err error) {
	if log == nil {
		return
	}
	fields := []zap.Field{zap.String("input", input)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	log.Warn(msg, fields...)
}
