// Package loader reads the audit inputs: crawled rows from JSON and lookup
// rule tables from an xlsx workbook. Input-shape problems (missing required
// columns, rows without identifiers) are rejected here, never defaulted
// inside the engine.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"tagmedic/internal/row"
	"tagmedic/internal/rules"
)

// LoadRows reads crawled rows from a JSON file, resolving each row's kind once
// at ingestion and validating the identifier/URL shape.
func LoadRows(path string) ([]row.ExtractedRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows file: %w", err)
	}

	var rows []row.ExtractedRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse rows file %s: %w", path, err)
	}

	for i := range rows {
		rows[i].ResolveKind()
		if err := rows[i].Validate(); err != nil {
			return nil, fmt.Errorf("rows file %s, row %d: %w", path, i, err)
		}
	}
	return rows, nil
}

// Rule table column headers, matched case-insensitively.
const (
	colKey        = "key"
	colAuditType  = "audit type"
	colPossible   = "possible values"
	colAcceptable = "acceptable values"
	colURLDir     = "url directory"
	colPattern    = "pattern"
	colValid      = "valid"

	colPlatformKey  = "platform key"
	colDataLayerKey = "data layer key"
)

// Workbook wraps an open lookup workbook.
type Workbook struct {
	f    *excelize.File
	path string
}

func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{f: f, path: path}, nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// RuleTable loads one rule-table sheet. A missing required column is fatal.
func (w *Workbook) RuleTable(sheet string) (*rules.Table, error) {
	records, cols, err := w.sheetRecords(sheet, []string{colKey, colAuditType, colPossible, colAcceptable, colURLDir, colValid})
	if err != nil {
		return nil, err
	}

	var loaded []rules.Rule
	for i, rec := range records {
		key := cell(rec, cols[colKey])
		if key == "" {
			return nil, fmt.Errorf("workbook %s sheet %s row %d: empty rule key", w.path, sheet, i+2)
		}
		loaded = append(loaded, rules.Rule{
			Key:              key,
			AuditType:        strings.ToLower(cell(rec, cols[colAuditType])),
			PossibleValues:   cell(rec, cols[colPossible]),
			AcceptableValues: cell(rec, cols[colAcceptable]),
			URLDirectory:     cell(rec, cols[colURLDir]),
			Pattern:          cell(rec, colIdx(cols, colPattern)),
			Valid:            parseValidFlag(cell(rec, cols[colValid])),
		})
	}

	table, err := rules.NewTable(loaded)
	if err != nil {
		return nil, fmt.Errorf("workbook %s sheet %s: %w", w.path, sheet, err)
	}
	return table, nil
}

// Mappings loads one cross-platform mapping sheet scoped to a platform.
func (w *Workbook) Mappings(sheet string, platform rules.Platform) ([]rules.CrossPlatformMapping, error) {
	records, cols, err := w.sheetRecords(sheet, []string{colPlatformKey, colDataLayerKey, colValid})
	if err != nil {
		return nil, err
	}

	var mappings []rules.CrossPlatformMapping
	for i, rec := range records {
		pk := cell(rec, cols[colPlatformKey])
		dk := cell(rec, cols[colDataLayerKey])
		if pk == "" || dk == "" {
			return nil, fmt.Errorf("workbook %s sheet %s row %d: mapping needs both keys", w.path, sheet, i+2)
		}
		mappings = append(mappings, rules.CrossPlatformMapping{
			PlatformKey:  pk,
			DataLayerKey: dk,
			Platform:     platform,
			Valid:        parseValidFlag(cell(rec, cols[colValid])),
		})
	}
	return mappings, nil
}

// sheetRecords reads a sheet, maps headers to column indexes, and enforces the
// required column set.
func (w *Workbook) sheetRecords(sheet string, required []string) ([][]string, map[string]int, error) {
	all, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("workbook %s: read sheet %s: %w", w.path, sheet, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("workbook %s sheet %s: empty sheet", w.path, sheet)
	}

	cols := make(map[string]int)
	for i, h := range all[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("workbook %s sheet %s: missing required columns: %s", w.path, sheet, strings.Join(missing, ", "))
	}

	return all[1:], cols, nil
}

// colIdx resolves an optional column, -1 when the sheet does not carry it.
func colIdx(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func parseValidFlag(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}
