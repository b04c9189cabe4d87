package rules

import (
	"fmt"
	"strings"
)

// Audit-type discriminators a lookup rule may carry. Anything else (including
// "none") dispatches to no strategy and fails closed.
const (
	AuditSingleProduct   = "single-product-presence"
	AuditURLDirectory    = "url-directory-match"
	AuditEnumeratedValue = "enumerated-value-match"
	AuditNone            = "none"
)

// URLDirWhole is the directory specifier meaning "match the whole canonical URL".
const URLDirWhole = "whole"

// Rule is one row of a lookup table. Immutable once loaded.
type Rule struct {
	// Key is the field name this rule governs.
	Key string
	// AuditType selects the evaluation strategy.
	AuditType string
	// PossibleValues is the pipe-delimited set of recognized values.
	PossibleValues string
	// AcceptableValues is the pipe-delimited compliant subset of PossibleValues.
	AcceptableValues string
	// URLDirectory is "whole" or a zero-based segment index, as text.
	URLDirectory string
	// Pattern documents the expected display shape; it is never evaluated.
	Pattern string
	// Valid gates whether the rule participates in auditing at all.
	Valid bool
}

// Possible returns the parsed possible-values set. An empty string is an empty
// set, not a set containing "".
func (r Rule) Possible() []string { return splitPipe(r.PossibleValues) }

// Acceptable returns the parsed acceptable-values subset.
func (r Rule) Acceptable() []string { return splitPipe(r.AcceptableValues) }

func splitPipe(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Table is an ordered rule table keyed by field key. Rule keys are unique
// within one table.
type Table struct {
	rules []Rule
	byKey map[string]int
}

func NewTable(rules []Rule) (*Table, error) {
	t := &Table{byKey: make(map[string]int, len(rules))}
	for _, r := range rules {
		if r.Key == "" {
			return nil, fmt.Errorf("rule with empty key")
		}
		if _, exists := t.byKey[r.Key]; exists {
			return nil, fmt.Errorf("duplicate rule key %q", r.Key)
		}
		t.byKey[r.Key] = len(t.rules)
		t.rules = append(t.rules, r)
	}
	return t, nil
}

// Ordered returns rules in table order.
func (t *Table) Ordered() []Rule {
	if t == nil {
		return nil
	}
	return t.rules
}

// Get looks a rule up by field key.
func (t *Table) Get(key string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	i, ok := t.byKey[key]
	if !ok {
		return Rule{}, false
	}
	return t.rules[i], true
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Platform scopes a cross-platform mapping rule.
type Platform string

const (
	PlatformFacebook Platform = "facebook"
	PlatformGoogle   Platform = "google"
)

// CrossPlatformMapping pairs an external-platform parameter key with the
// canonical data-layer key it must agree with.
type CrossPlatformMapping struct {
	PlatformKey  string
	DataLayerKey string
	Platform     Platform
	Valid        bool
}
