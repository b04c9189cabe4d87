package checks

import (
	"slices"

	"tagmedic/internal/normalize"
	"tagmedic/internal/rules"
)

// EnumeratedValueMatch verifies that a field falls inside the rule's possible
// set and, more strictly, inside its acceptable subset.
type EnumeratedValueMatch struct{}

func (s *EnumeratedValueMatch) ID() string {
	return rules.AuditEnumeratedValue
}

func (s *EnumeratedValueMatch) Title() string {
	return "Enumerated Value Match"
}

func (s *EnumeratedValueMatch) Description() string {
	return "Field must be an acceptable value; a possible-but-not-acceptable value is flagged as Incorrect Value for triage."
}

func (s *EnumeratedValueMatch) Evaluate(value any, rule rules.Rule, rc rules.RowContext) rules.Status {
	val := normalize.String(value)

	if slices.Contains(rule.Acceptable(), val) {
		return rules.StatusPass
	}
	// A recognized but non-compliant value is triaged separately from a
	// wholly unexpected one.
	if slices.Contains(rule.Possible(), val) {
		return rules.StatusIncorrectValue
	}
	return rules.StatusFail
}

func init() {
	rules.Register(&EnumeratedValueMatch{})
}
