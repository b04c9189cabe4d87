package output

import "tagmedic/internal/rules"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - audit.started
// - verdict
// - audit.finished
// - run.finished
//
// JSON mode remains an aggregate of rules.Verdict values.
type Event struct {
	Type  string `json:"type"`
	RunID string `json:"run_id,omitempty"`
	*rules.Verdict
	Audit    string `json:"audit,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Rules    int    `json:"rules,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

func eventFromVerdict(v rules.Verdict) Event {
	return Event{Type: "verdict", Verdict: &v}
}
