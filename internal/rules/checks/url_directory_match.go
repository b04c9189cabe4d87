package checks

import (
	"strconv"
	"strings"

	"tagmedic/internal/normalize"
	"tagmedic/internal/rules"
	"tagmedic/internal/site"
)

// URLDirectoryMatch verifies that a field mirrors a specific directory segment
// of the page URL, or the whole canonicalized URL.
type URLDirectoryMatch struct{}

func (s *URLDirectoryMatch) ID() string {
	return rules.AuditURLDirectory
}

func (s *URLDirectoryMatch) Title() string {
	return "URL Directory Match"
}

func (s *URLDirectoryMatch) Description() string {
	return "Field must equal the rule's URL path segment, or the whole canonical URL when the specifier is \"whole\"."
}

func (s *URLDirectoryMatch) Evaluate(value any, rule rules.Rule, rc rules.RowContext) rules.Status {
	val := normalize.String(value)
	specifier := strings.TrimSpace(rule.URLDirectory)

	if strings.EqualFold(specifier, rules.URLDirWhole) {
		if val == normalize.Empty {
			return rules.StatusFail
		}
		canon, err := site.Canonicalize(rc.URL)
		if err != nil {
			return rules.StatusFail
		}
		// Slash-insensitive at the edges; canon is already stripped.
		if strings.TrimRight(val, "/") == canon {
			return rules.StatusPass
		}
		return rules.StatusFail
	}

	idx, err := strconv.Atoi(specifier)
	if err != nil {
		return rules.StatusFail
	}

	segs, err := site.Segments(rc.URL)
	if err != nil {
		return rules.StatusFail
	}
	if idx < 0 || idx >= len(segs) {
		// The page has no such depth; absence is the expected state.
		if val == normalize.Empty {
			return rules.StatusPass
		}
		return rules.StatusFail
	}
	if val == segs[idx] {
		return rules.StatusPass
	}
	return rules.StatusFail
}

func init() {
	rules.Register(&URLDirectoryMatch{})
}
