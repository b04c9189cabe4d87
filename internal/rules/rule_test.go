package rules

import (
	"reflect"
	"testing"
)

func TestSplitPipeSets(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want []string
	}{
		{"three values", Rule{PossibleValues: "x|y|z"}, []string{"x", "y", "z"}},
		{"empty string is empty set", Rule{PossibleValues: ""}, nil},
		{"whitespace trimmed", Rule{PossibleValues: " x | y "}, []string{"x", "y"}},
		{"single value", Rule{PossibleValues: "only"}, []string{"only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Possible(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Possible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTable(t *testing.T) {
	table, err := NewTable([]Rule{
		{Key: "a", Valid: true},
		{Key: "b", Valid: false},
	})
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rules, got %d", table.Len())
	}

	ordered := table.Ordered()
	if ordered[0].Key != "a" || ordered[1].Key != "b" {
		t.Fatalf("table order not preserved: %v", ordered)
	}

	if _, ok := table.Get("a"); !ok {
		t.Fatal("expected to find rule a")
	}
	if _, ok := table.Get("missing"); ok {
		t.Fatal("did not expect to find rule missing")
	}
}

func TestNewTableRejectsDuplicateKeys(t *testing.T) {
	if _, err := NewTable([]Rule{{Key: "a"}, {Key: "a"}}); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestNewTableRejectsEmptyKey(t *testing.T) {
	if _, err := NewTable([]Rule{{Key: ""}}); err == nil {
		t.Fatal("expected empty key error")
	}
}

func TestNilTableIsEmpty(t *testing.T) {
	var table *Table
	if table.Len() != 0 {
		t.Fatal("nil table should have zero length")
	}
	if got := table.Ordered(); got != nil {
		t.Fatalf("nil table should have no rules, got %v", got)
	}
}
