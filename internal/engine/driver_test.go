package engine

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"tagmedic/internal/row"
	"tagmedic/internal/rules"
	_ "tagmedic/internal/rules/checks"
	"tagmedic/internal/site"
)

func testDriver(t *testing.T) *Driver {
	t.Helper()
	st, err := site.New("www.example.com")
	if err != nil {
		t.Fatalf("site.New: %v", err)
	}
	return &Driver{Site: st, Log: zap.NewNop(), Concurrency: 1}
}

func mustTable(t *testing.T, rs []rules.Rule) *rules.Table {
	t.Helper()
	table, err := rules.NewTable(rs)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestAuditRows_EnumeratedScenario(t *testing.T) {
	// possible "x|y|z", acceptable "x": y -> Incorrect Value, q -> Fail, x -> Pass.
	d := testDriver(t)
	table := mustTable(t, []rules.Rule{{
		Key:              "color",
		AuditType:        rules.AuditEnumeratedValue,
		PossibleValues:   "x|y|z",
		AcceptableValues: "x",
		Valid:            true,
	}})

	tests := []struct {
		name  string
		value string
		want  rules.Status
	}{
		{"acceptable", "x", rules.StatusPass},
		{"possible only", "y", rules.StatusIncorrectValue},
		{"unknown", "q", rules.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []row.ExtractedRow{{
				ID: "r1", URL: "https://www.example.com/p", Kind: row.KindList,
				Fields: map[string]any{"color": tt.value},
			}}
			verdicts, degraded := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
			if degraded != 0 {
				t.Fatalf("unexpected degraded rows: %d", degraded)
			}
			if len(verdicts) != 1 {
				t.Fatalf("expected 1 verdict, got %d", len(verdicts))
			}
			if verdicts[0].Status != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, verdicts[0].Status)
			}
		})
	}
}

func TestAuditRows_DirectoryScenario(t *testing.T) {
	// specifier 1, URL https://www.example.com/cat/prod: "cat" -> Pass, "shoes" -> Fail.
	d := testDriver(t)
	table := mustTable(t, []rules.Rule{{
		Key:          "category",
		AuditType:    rules.AuditURLDirectory,
		URLDirectory: "1",
		Valid:        true,
	}})

	for value, want := range map[string]rules.Status{
		"cat":   rules.StatusPass,
		"shoes": rules.StatusFail,
	} {
		rows := []row.ExtractedRow{{
			ID: "r1", URL: "https://www.example.com/cat/prod", Kind: row.KindList,
			Fields: map[string]any{"category": value},
		}}
		verdicts, _ := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
		if len(verdicts) != 1 || verdicts[0].Status != want {
			t.Fatalf("value %q: expected %v, got %+v", value, want, verdicts)
		}
	}
}

func TestAuditRows_OffHostRowIsInvalidURLForEveryField(t *testing.T) {
	d := testDriver(t)
	table := mustTable(t, []rules.Rule{
		{Key: "a", AuditType: rules.AuditEnumeratedValue, PossibleValues: "1", AcceptableValues: "1", Valid: true},
		{Key: "b", AuditType: rules.AuditURLDirectory, URLDirectory: "whole", Valid: true},
	})
	rows := []row.ExtractedRow{{
		ID: "r1", URL: "https://other.com/a/b", Kind: row.KindList,
		Fields: map[string]any{"a": "1", "b": "https://other.com/a/b"},
	}}

	verdicts, _ := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
	}
	for _, v := range verdicts {
		if v.Status != rules.StatusInvalidURL {
			t.Fatalf("expected Invalid URL for %s, got %v", v.Key, v.Status)
		}
	}
}

func TestAuditRows_UnparsableURLDegradesRow(t *testing.T) {
	d := testDriver(t)
	table := mustTable(t, []rules.Rule{
		{Key: "a", AuditType: rules.AuditEnumeratedValue, PossibleValues: "1", AcceptableValues: "1", Valid: true},
	})
	rows := []row.ExtractedRow{
		{ID: "bad", URL: "https://exa mple.com/", Kind: row.KindList, Fields: map[string]any{"a": "1"}},
		{ID: "good", URL: "https://www.example.com/", Kind: row.KindList, Fields: map[string]any{"a": "1"}},
	}

	verdicts, degraded := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
	if degraded != 1 {
		t.Fatalf("expected 1 degraded row, got %d", degraded)
	}
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
	}
	// One row's failure never aborts the other.
	if verdicts[0].Status != rules.StatusInvalidURL {
		t.Fatalf("bad row: expected Invalid URL, got %v", verdicts[0].Status)
	}
	if verdicts[1].Status != rules.StatusPass {
		t.Fatalf("good row: expected Pass, got %v", verdicts[1].Status)
	}
}

func TestAuditRows_InvalidRulesProduceNoVerdicts(t *testing.T) {
	d := testDriver(t)
	table := mustTable(t, []rules.Rule{
		{Key: "a", AuditType: rules.AuditEnumeratedValue, PossibleValues: "1", AcceptableValues: "1", Valid: false},
		{Key: "b", AuditType: rules.AuditEnumeratedValue, PossibleValues: "2", AcceptableValues: "2", Valid: true},
	})
	rows := []row.ExtractedRow{{
		ID: "r1", URL: "https://www.example.com/", Kind: row.KindList,
		Fields: map[string]any{"a": "1", "b": "2"},
	}}

	verdicts, _ := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
	if len(verdicts) != 1 {
		t.Fatalf("expected 1 verdict, got %d", len(verdicts))
	}
	if verdicts[0].Key != "b" {
		t.Fatalf("expected verdict for b only, got %s", verdicts[0].Key)
	}
}

func TestAuditRows_AbsentFieldKeyIsSkippedNotFailed(t *testing.T) {
	d := testDriver(t)
	table := mustTable(t, []rules.Rule{
		{Key: "present", AuditType: rules.AuditEnumeratedValue, PossibleValues: "1", AcceptableValues: "1", Valid: true},
		{Key: "absent", AuditType: rules.AuditEnumeratedValue, PossibleValues: "1", AcceptableValues: "1", Valid: true},
	})
	rows := []row.ExtractedRow{{
		ID: "r1", URL: "https://www.example.com/", Kind: row.KindList,
		Fields: map[string]any{"present": "1"},
	}}

	verdicts, _ := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
	if len(verdicts) != 1 {
		t.Fatalf("expected 1 verdict, got %d", len(verdicts))
	}
	if verdicts[0].Key != "present" {
		t.Fatalf("expected verdict for present only, got %s", verdicts[0].Key)
	}
}

func TestAuditRows_UnrecognizedDiscriminatorFails(t *testing.T) {
	d := testDriver(t)
	for _, auditType := range []string{"none", "bogus", ""} {
		table := mustTable(t, []rules.Rule{{Key: "a", AuditType: auditType, Valid: true}})
		rows := []row.ExtractedRow{{
			ID: "r1", URL: "https://www.example.com/", Kind: row.KindList,
			Fields: map[string]any{"a": "1"},
		}}
		verdicts, _ := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
		if len(verdicts) != 1 || verdicts[0].Status != rules.StatusFail {
			t.Fatalf("audit type %q: expected Fail, got %+v", auditType, verdicts)
		}
	}
}

func TestAuditRows_OrderIsRowMajorUnderConcurrency(t *testing.T) {
	st, err := site.New("www.example.com")
	if err != nil {
		t.Fatalf("site.New: %v", err)
	}
	d := &Driver{Site: st, Log: zap.NewNop(), Concurrency: 8}

	table := mustTable(t, []rules.Rule{
		{Key: "k1", AuditType: rules.AuditEnumeratedValue, PossibleValues: "v", AcceptableValues: "v", Valid: true},
		{Key: "k2", AuditType: rules.AuditEnumeratedValue, PossibleValues: "v", AcceptableValues: "v", Valid: true},
	})

	var rows []row.ExtractedRow
	for i := 0; i < 20; i++ {
		rows = append(rows, row.ExtractedRow{
			ID:     string(rune('a' + i)),
			URL:    "https://www.example.com/",
			Kind:   row.KindList,
			Fields: map[string]any{"k1": "v", "k2": "v"},
		})
	}

	verdicts, _ := d.AuditRows(context.Background(), rows, table, rules.CategoryDataLayer)
	if len(verdicts) != 40 {
		t.Fatalf("expected 40 verdicts, got %d", len(verdicts))
	}
	for i, v := range verdicts {
		wantRow := rows[i/2].ID
		wantKey := "k1"
		if i%2 == 1 {
			wantKey = "k2"
		}
		if v.RowID != wantRow || v.Key != wantKey {
			t.Fatalf("verdict %d: expected (%s,%s), got (%s,%s)", i, wantRow, wantKey, v.RowID, v.Key)
		}
	}
}
