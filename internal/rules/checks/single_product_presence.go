package checks

import (
	"tagmedic/internal/normalize"
	"tagmedic/internal/rules"
)

// SingleProductPresence verifies that a product-scoped field is populated
// exactly when the page carries exactly one well-formed product record.
type SingleProductPresence struct{}

func (s *SingleProductPresence) ID() string {
	return rules.AuditSingleProduct
}

func (s *SingleProductPresence) Title() string {
	return "Single Product Presence"
}

func (s *SingleProductPresence) Description() string {
	return "Field must be populated when, and only when, the page has exactly one well-formed product record."
}

func (s *SingleProductPresence) Evaluate(value any, rule rules.Rule, rc rules.RowContext) rules.Status {
	// String-encoded product lists are parsed first; unparsable input fails
	// the rule outright. A literal "[]" is a legitimately empty list, not garbage.
	if str, ok := rc.Products.(string); ok && !normalize.IsEmpty(str) {
		parsed, err := normalize.ParseList(str)
		if err != nil {
			return rules.StatusFail
		}
		rc.Products = parsed
	}
	products := normalize.List(rc.Products, rc.Log)

	if normalize.IsEmpty(value) {
		if len(products) == 0 {
			// Nothing expected, nothing present.
			return rules.StatusPass
		}
		return rules.StatusFail
	}

	if len(products) == 1 && wellFormedProduct(products[0]) {
		return rules.StatusPass
	}
	return rules.StatusFail
}

// wellFormedProduct is a shallow shape check: a product record is a non-empty
// mapping. Field contents of the record are not validated.
func wellFormedProduct(p any) bool {
	m, ok := p.(map[string]any)
	return ok && len(m) > 0
}

func init() {
	rules.Register(&SingleProductPresence{})
}
