package rules

import "go.uber.org/zap"

// RowContext carries the per-row context a strategy may consult alongside the
// field value. Strategies read it; they never mutate it.
type RowContext struct {
	// URL is the row's resolved page URL. Locality is already checked by the
	// driver before any strategy runs, so strategies only use it for
	// directory matching.
	URL string
	// Products is the row's associated product identifier list, possibly
	// still string-encoded.
	Products any
	// Log receives value-parse warnings. May be nil.
	Log *zap.Logger
}

// Strategy is one field audit evaluation. Implementations are pure: same
// inputs, same verdict, no I/O.
//
// Evaluate returns Pass, Fail, Incorrect Value, or Missing Value. It never
// returns Invalid URL, which is decided upstream by the locality gate.
type Strategy interface {
	// ID is the audit-type discriminator rule tables reference.
	ID() string
	Title() string
	Description() string

	Evaluate(value any, rule Rule, rc RowContext) Status
}
