// Package row models one audited unit as materialized by the crawl collaborator:
// a list entry or a journey step with its extracted field values, product
// context, and captured outbound requests. Rows are read-only inside the engine.
package row

import (
	"fmt"
)

// Kind tags which shape of audited unit a row is. The kind is resolved exactly
// once at ingestion; nothing downstream re-detects it from field presence.
type Kind string

const (
	KindList    Kind = "list"
	KindJourney Kind = "journey"
)

// ExtractedRow is one audited unit.
type ExtractedRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`

	// Fields maps field name to the extracted value: scalar, list, or nested
	// mapping, possibly still string-encoded.
	Fields map[string]any `json:"fields"`

	// Products is the associated product identifier list; the crawl may hand
	// it over as a native list or a string-encoded literal.
	Products any `json:"products,omitempty"`

	// Requests holds captured outbound request URLs.
	Requests []string `json:"requests,omitempty"`
}

// Validate enforces the input shape the engine cannot default around.
func (r ExtractedRow) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("row missing identifier")
	}
	if r.URL == "" {
		return fmt.Errorf("row %s missing url", r.ID)
	}
	switch r.Kind {
	case KindList, KindJourney:
	default:
		return fmt.Errorf("row %s has unknown kind %q", r.ID, r.Kind)
	}
	return nil
}

// ResolveKind fills in the kind for rows ingested from sources that predate the
// explicit tag: a row carrying a step field is a journey step, anything else is
// a list entry. Called once at ingestion.
func (r *ExtractedRow) ResolveKind() {
	if r.Kind != "" {
		return
	}
	if _, ok := r.Fields["step"]; ok {
		r.Kind = KindJourney
		return
	}
	r.Kind = KindList
}
