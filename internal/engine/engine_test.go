package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tagmedic/internal/config"
	"tagmedic/internal/output"
)

func TestExitCodeForRun(t *testing.T) {
	tests := []struct {
		name                   string
		fatal, partial, wrongs bool
		want                   int
	}{
		{"clean", false, false, false, 0},
		{"wrongs", false, false, true, 1},
		{"partial", false, true, false, 2},
		{"partial outranks wrongs", false, true, true, 2},
		{"fatal", true, false, false, 3},
		{"fatal outranks everything", true, true, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeForRun(tt.fatal, tt.partial, tt.wrongs); got != tt.want {
				t.Fatalf("exitCodeForRun(%v, %v, %v) = %d, want %d", tt.fatal, tt.partial, tt.wrongs, got, tt.want)
			}
		})
	}
}

func writeTestWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheets := map[string][][]any{
		"Data Layer Rules": {
			{"Key", "Audit Type", "Possible Values", "Acceptable Values", "URL Directory", "Valid"},
			{"color", "enumerated-value-match", "x|y|z", "x", "", "TRUE"},
			{"category", "url-directory-match", "", "", "1", "TRUE"},
		},
		"Tag Rules": {
			{"Key", "Audit Type", "Possible Values", "Acceptable Values", "URL Directory", "Valid"},
			{"ev", "enumerated-value-match", "view|purchase", "view|purchase", "", "TRUE"},
		},
		"Facebook Mappings": {
			{"Platform Key", "Data Layer Key", "Valid"},
			{"pid", "product_id", "TRUE"},
		},
		"Google Mappings": {
			{"Platform Key", "Data Layer Key", "Valid"},
			{"item", "product_id", "TRUE"},
		},
	}

	first := true
	for sheet, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, cells := range rows {
			for c, val := range cells {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet, cell, val); err != nil {
					t.Fatalf("set cell: %v", err)
				}
			}
		}
	}

	path := filepath.Join(dir, "lookups.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func writeTestRows(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return path
}

func TestEngineRun(t *testing.T) {
	dir := t.TempDir()
	workbook := writeTestWorkbook(t, dir)

	dataLayerRows := writeTestRows(t, dir, "datalayer.json", `[
		{"id": "r1", "url": "https://www.example.com/cat/prod", "kind": "list",
		 "fields": {"color": "x", "category": "cat", "product_id": "5"}}
	]`)
	tagRows := writeTestRows(t, dir, "tags.json", `[
		{"id": "r1", "url": "https://www.example.com/cat/prod", "kind": "list",
		 "fields": {"ev": "view", "pid": "5", "item": "5"}}
	]`)

	outFile := filepath.Join(dir, "out.ndjson")

	cfg := config.New()
	cfg.Site.Host = "www.example.com"
	cfg.Inputs.DataLayerRows = dataLayerRows
	cfg.Inputs.TagRows = tagRows
	cfg.Inputs.Workbook = workbook
	cfg.Output.NoConsole = true
	cfg.Output.Out = outFile
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	code := NewEngine(zap.NewNop()).Run(context.Background(), cfg)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	raw, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	var types []string
	verdicts := 0
	for i, line := range lines {
		var ev output.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %d: %v", i+1, err)
		}
		types = append(types, ev.Type)
		if ev.Type == "verdict" {
			verdicts++
		}
	}

	if types[0] != "run.started" || types[len(types)-1] != "run.finished" {
		t.Fatalf("unexpected lifecycle framing: %v", types)
	}
	// 1 tag-presence + 2 data-layer + 2 cross-platform verdicts.
	if verdicts != 5 {
		t.Fatalf("expected 5 verdicts, got %d", verdicts)
	}
}

func TestEngineRunFindsWrongs(t *testing.T) {
	dir := t.TempDir()
	workbook := writeTestWorkbook(t, dir)

	dataLayerRows := writeTestRows(t, dir, "datalayer.json", `[
		{"id": "r1", "url": "https://www.example.com/cat/prod", "kind": "list",
		 "fields": {"color": "q", "category": "cat"}}
	]`)

	cfg := config.New()
	cfg.Site.Host = "www.example.com"
	cfg.Inputs.DataLayerRows = dataLayerRows
	cfg.Inputs.Workbook = workbook
	cfg.Output.NoConsole = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	code := NewEngine(zap.NewNop()).Run(context.Background(), cfg)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestEngineRunFatalOnMissingInputs(t *testing.T) {
	cfg := config.New()
	cfg.Site.Host = "www.example.com"
	cfg.Inputs.DataLayerRows = filepath.Join(t.TempDir(), "missing.json")
	cfg.Inputs.Workbook = filepath.Join(t.TempDir(), "missing.xlsx")
	cfg.Output.NoConsole = true

	code := NewEngine(zap.NewNop()).Run(context.Background(), cfg)
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
}
