package output

import (
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"tagmedic/internal/rules"
)

// ReportSink buffers verdicts and writes an xlsx workbook on Close: one sheet
// per audit category plus a summary sheet.
type ReportSink struct {
	path     string
	mu       sync.Mutex
	verdicts []rules.Verdict
	runID    string
	exitCode int
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	return &ReportSink{path: path}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case rules.Verdict:
		s.verdicts = append(s.verdicts, t)
	case Event:
		if t.RunID != "" {
			s.runID = t.RunID
		}
		if t.Type == "run.finished" {
			s.exitCode = t.ExitCode
		}
	}
	return nil
}

var categorySheets = []struct {
	category rules.Category
	sheet    string
}{
	{rules.CategoryTagPresence, "Tag Presence"},
	{rules.CategoryCrossPlatform, "Cross-Platform Parameters"},
	{rules.CategoryDataLayer, "Data Layer Fields"},
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("report: rename summary sheet: %w", err)
	}
	if err := s.writeSummary(f); err != nil {
		return err
	}

	for _, cs := range categorySheets {
		if err := s.writeCategory(f, cs.sheet, cs.category); err != nil {
			return err
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("report: save %s: %w", s.path, err)
	}
	return nil
}

func (s *ReportSink) writeSummary(f *excelize.File) error {
	counts := make(map[rules.Status]int)
	for _, v := range s.verdicts {
		counts[v.Status]++
	}

	rows := [][]any{
		{"Run ID", s.runID},
		{"Exit Code", s.exitCode},
		{"Verdicts", len(s.verdicts)},
		{},
		{"Status", "Count"},
		{string(rules.StatusPass), counts[rules.StatusPass]},
		{string(rules.StatusFail), counts[rules.StatusFail]},
		{string(rules.StatusIncorrectValue), counts[rules.StatusIncorrectValue]},
		{string(rules.StatusInvalidURL), counts[rules.StatusInvalidURL]},
		{string(rules.StatusMissingValue), counts[rules.StatusMissingValue]},
	}
	return writeRows(f, "Summary", rows)
}

func (s *ReportSink) writeCategory(f *excelize.File, sheet string, category rules.Category) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("report: create sheet %s: %w", sheet, err)
	}

	rows := [][]any{{"Row ID", "Name", "URL", "Key", "Value", "Expected", "Status", "Message"}}
	for _, v := range s.verdicts {
		if v.Category != category {
			continue
		}
		rows = append(rows, []any{v.RowID, v.RowName, v.RowURL, v.Key, v.Value, v.Expected, string(v.Status), v.Message})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, cells := range rows {
		for c, val := range cells {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("report: cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cellName, val); err != nil {
				return fmt.Errorf("report: write %s!%s: %w", sheet, cellName, err)
			}
		}
	}
	return nil
}
