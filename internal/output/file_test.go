package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagmedic/internal/rules"
)

func TestFileSinkInfersFormatFromExtension(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		format  string
		wantErr bool
	}{
		{"json extension", "out.json", "", false},
		{"ndjson extension", "out.ndjson", "", false},
		{"jsonl extension", "out.jsonl", "", false},
		{"explicit format", "out.dat", "json", false},
		{"unknown extension", "out.txt", "", true},
		{"unsupported format", "out.json", "csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewFileSink(filepath.Join(dir, tt.file), tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFileSink: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
		})
	}
}

func TestFileSinkJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := s.Write(sampleVerdict(rules.StatusFail)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write(Event{Type: "run.finished", ExitCode: 1}); err != nil {
		t.Fatalf("Write event: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got []rules.Verdict
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 1 || got[0].Status != rules.StatusFail {
		t.Fatalf("unexpected verdicts: %+v", got)
	}
}

func TestFileSinkNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := s.Write(Event{Type: "run.started", RunID: "abc"}); err != nil {
		t.Fatalf("Write event: %v", err)
	}
	if err := s.Write(sampleVerdict(rules.StatusPass)); err != nil {
		t.Fatalf("Write verdict: %v", err)
	}
	if err := s.Write(Event{Type: "run.finished", RunID: "abc", ExitCode: 0}); err != nil {
		t.Fatalf("Write event: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	var mid Event
	if err := json.Unmarshal([]byte(lines[1]), &mid); err != nil {
		t.Fatalf("line 2: %v", err)
	}
	if mid.Type != "verdict" || mid.Verdict == nil {
		t.Fatalf("unexpected middle event: %+v", mid)
	}
}
