package types

import (
	"testing"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.14 ", 3.14, true},
		{"1,234.5", 1234.5, true},
		{"12.5%", 12.5, true},
		{"-7", -7, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"-", 0, false},
		{"1.2.3", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestProvenanceBefore(t *testing.T) {
	cases := []struct {
		a, b Provenance
		want bool
	}{
		{Provenance{Page: 1, Row: 0}, Provenance{Page: 1, Row: 1}, true},
		{Provenance{Page: 1, Row: 5}, Provenance{Page: 2, Row: 0}, true},
		{Provenance{Page: 2, Row: 0}, Provenance{Page: 1, Row: 9}, false},
		{Provenance{Page: 1, Row: 1}, Provenance{Page: 1, Row: 1}, false},
	}
	for _, c := range cases {
		if got := c.a.Before(c.b); got != c.want {
			t.Errorf("%+v.Before(%+v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestScoreDomain(t *testing.T) {
	d := ScoreDomain{Name: "low", Min: 0, Max: 19}

	if !d.Contains(0) || !d.Contains(19) {
		t.Error("bounds are inclusive")
	}
	if d.Contains(19.5) || d.Contains(-1) {
		t.Error("values outside bounds must not match")
	}

	other := ScoreDomain{Name: "mid", Min: 15, Max: 40}
	if !d.Overlaps(other) || !other.Overlaps(d) {
		t.Error("15..19 overlap not detected")
	}
	disjoint := ScoreDomain{Name: "high", Min: 20, Max: 40}
	if d.Overlaps(disjoint) {
		t.Error("0..19 and 20..40 are disjoint")
	}
}

func TestSortIssues(t *testing.T) {
	issues := []Issue{
		{RuleID: "b-rule", TableID: "t2"},
		{RuleID: "a-rule", TableID: "t1", Rows: []Provenance{{Page: 2, Row: 0}}},
		{RuleID: "a-rule", TableID: "t1", Rows: []Provenance{{Page: 1, Row: 3}}},
		{RuleID: "a-rule", TableID: "t1"},
	}
	SortIssues(issues)

	if issues[0].TableID != "t1" || len(issues[0].Rows) != 0 {
		t.Errorf("rowless issue should sort first within its rule: %+v", issues[0])
	}
	if issues[1].Rows[0].Page != 1 || issues[2].Rows[0].Page != 2 {
		t.Errorf("row-scoped issues not in document order: %+v, %+v", issues[1], issues[2])
	}
	if issues[3].TableID != "t2" {
		t.Errorf("table id is the primary key: %+v", issues[3])
	}
}

func TestReportHelpers(t *testing.T) {
	r := Report{
		Issues: []Issue{
			{RuleID: "x", Severity: SeverityError, TableID: "t1"},
			{RuleID: "y", Severity: SeverityWarning, TableID: "t2"},
		},
		Tables: []TableResult{
			{TableID: "t1", Passed: false},
			{TableID: "t2", Passed: true},
		},
	}

	if r.ErrorCount() != 1 || r.WarningCount() != 1 {
		t.Errorf("counts wrong: %d errors, %d warnings", r.ErrorCount(), r.WarningCount())
	}
	if r.AllPassed() {
		t.Error("t1 failed, report must not be all-passed")
	}
	if !r.Passed("t2") || r.Passed("t1") {
		t.Error("per-table pass flags wrong")
	}
}

func TestLogicalTableHelpers(t *testing.T) {
	lt := LogicalTable{ID: UnclassifiedTableID}
	if !lt.IsUnclassified() {
		t.Error("unclassified id not recognized")
	}
	if !lt.IsEmpty() || lt.RowCount() != 0 {
		t.Error("empty table helpers wrong")
	}

	lt.Rows = append(lt.Rows, Row{Cells: []string{"x"}})
	if lt.IsEmpty() || lt.RowCount() != 1 {
		t.Error("non-empty table helpers wrong")
	}
}

func TestRawRow(t *testing.T) {
	r := RawRow{Cells: []string{" ", ""}, Page: 3, Index: 7}
	if !r.IsEmpty() {
		t.Error("whitespace-only row is empty")
	}
	if p := r.Provenance(); p.Page != 3 || p.Row != 7 {
		t.Errorf("unexpected provenance %+v", p)
	}

	r.Cells = []string{"", "x"}
	if r.IsEmpty() {
		t.Error("row with content is not empty")
	}
}
