package rules

import "tagmedic/internal/row"

// NewVerdict stamps a verdict with the originating row's identity.
func NewVerdict(r row.ExtractedRow, key string, category Category, status Status) Verdict {
	return Verdict{
		RowID:    r.ID,
		RowName:  r.Name,
		RowURL:   r.URL,
		Key:      key,
		Category: category,
		Status:   status,
	}
}

// FieldVerdict records a field evaluation with the value compared and the rule
// parameters consulted.
func FieldVerdict(r row.ExtractedRow, rule Rule, category Category, value string, status Status) Verdict {
	v := NewVerdict(r, rule.Key, category, status)
	v.Value = value
	v.Expected = expectedForRule(rule)
	return v
}

// InvalidURLVerdict marks a rule evaluation short-circuited by the locality gate.
func InvalidURLVerdict(r row.ExtractedRow, rule Rule, category Category, message string) Verdict {
	v := NewVerdict(r, rule.Key, category, StatusInvalidURL)
	v.Expected = expectedForRule(rule)
	v.Message = message
	return v
}

func expectedForRule(rule Rule) string {
	switch rule.AuditType {
	case AuditURLDirectory:
		return "url directory: " + rule.URLDirectory
	case AuditEnumeratedValue:
		if rule.AcceptableValues != "" {
			return "acceptable: " + rule.AcceptableValues
		}
		return "possible: " + rule.PossibleValues
	case AuditSingleProduct:
		return "single product context"
	default:
		return ""
	}
}
