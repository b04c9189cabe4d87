package rules

// Status is the closed verdict classification.
type Status string

const (
	StatusPass           Status = "Pass"
	StatusFail           Status = "Fail"
	StatusIncorrectValue Status = "Incorrect Value"
	StatusInvalidURL     Status = "Invalid URL"
	StatusMissingValue   Status = "Missing Value"
)

// Category groups verdicts into the audit tables the report renders.
type Category string

const (
	CategoryTagPresence   Category = "tag-presence"
	CategoryCrossPlatform Category = "cross-platform"
	CategoryDataLayer     Category = "data-layer"
)

// Verdict is the engine's output unit: one classification per (row, rule)
// evaluation. Verdicts are append-only and never mutate after creation.
type Verdict struct {
	RowID   string `json:"row_id"`
	RowName string `json:"row_name,omitempty"`
	RowURL  string `json:"row_url,omitempty"`
	// Key is the field or mapping key under test.
	Key string `json:"key"`
	// Value is the raw value (string-coerced) that was compared.
	Value string `json:"value,omitempty"`
	// Expected records the rule parameters consulted (possible/acceptable
	// values, directory specifier, or the canonical-side value).
	Expected string   `json:"expected,omitempty"`
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	Message  string   `json:"message,omitempty"`
}
