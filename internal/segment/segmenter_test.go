package segment

import (
	"testing"

	"github.com/docutura/docutura/internal/types"
)

// makePage builds a page table from plain cell rows, numbering rows within
// the page.
func makePage(page int, id string, header []string, rows ...[]string) types.PageTable {
	pt := types.PageTable{Page: page, ID: id, Header: header}
	for i, cells := range rows {
		pt.Rows = append(pt.Rows, types.RawRow{
			Cells:       cells,
			Page:        page,
			Index:       i,
			SourceTable: id,
		})
	}
	return pt
}

func scoreDomainsFixture() []types.ScoreDomain {
	return []types.ScoreDomain{
		{Name: "low", Min: 0, Max: 19},
		{Name: "high", Min: 20, Max: 40},
	}
}

func TestSegmentScoreDomain(t *testing.T) {
	t.Run("scenario A: two domains, document order preserved", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil, []string{"5", "12"}, []string{"25", "3"}),
			makePage(2, "t2", nil, []string{"19", "7"}, []string{"20", "1"}),
		}

		res, err := Segment(pages, ScoreDomains(scoreDomainsFixture(), 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(res.Logical) != 2 {
			t.Fatalf("expected 2 logical tables, got %d", len(res.Logical))
		}

		low := res.Table("low")
		if low == nil || len(low.Rows) != 2 {
			t.Fatalf("expected low domain with 2 rows, got %+v", low)
		}
		if low.Rows[0].Cells[0] != "5" || low.Rows[1].Cells[0] != "19" {
			t.Errorf("low domain rows out of order: %v, %v", low.Rows[0].Cells, low.Rows[1].Cells)
		}

		high := res.Table("high")
		if high == nil || len(high.Rows) != 2 {
			t.Fatalf("expected high domain with 2 rows, got %+v", high)
		}
		if high.Rows[0].Cells[0] != "25" || high.Rows[1].Cells[0] != "20" {
			t.Errorf("high domain rows out of order: %v, %v", high.Rows[0].Cells, high.Rows[1].Cells)
		}
	})

	t.Run("overlapping domains tie-break by declaration order", func(t *testing.T) {
		domains := []types.ScoreDomain{
			{Name: "objective", Min: 0, Max: 19},
			{Name: "essay", Min: 15, Max: 40},
		}
		pages := []types.PageTable{
			makePage(1, "t1", nil, []string{"17", "4"}),
		}

		res, err := Segment(pages, ScoreDomains(domains, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Table("objective") == nil {
			t.Fatal("expected row 17 routed to first-declared domain")
		}
		if res.Table("essay") != nil {
			t.Error("second-declared domain should not open for a tied value")
		}
	})

	t.Run("scenario D: unparsable value quarantined, job completes", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil, []string{"5", "12"}, []string{"N/A", "3"}),
		}

		res, err := Segment(pages, ScoreDomains(scoreDomainsFixture(), 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		unc := res.Table(types.UnclassifiedTableID)
		if unc == nil {
			t.Fatal("expected an Unclassified table")
		}
		if len(unc.Rows) != 1 || unc.Rows[0].Cells[0] != "N/A" {
			t.Errorf("unexpected unclassified rows: %+v", unc.Rows)
		}
	})

	t.Run("value outside every domain goes to Unclassified", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil, []string{"99", "1"}),
		}

		res, err := Segment(pages, ScoreDomains(scoreDomainsFixture(), 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		unc := res.Table(types.UnclassifiedTableID)
		if unc == nil || len(unc.Rows) != 1 {
			t.Fatalf("expected 1 unclassified row, got %+v", unc)
		}
	})

	t.Run("page-boundary independence", func(t *testing.T) {
		// Same rows in the same document order, different page splits.
		split1 := []types.PageTable{
			makePage(1, "t1", nil, []string{"5", "1"}, []string{"25", "2"}, []string{"19", "3"}),
			makePage(2, "t2", nil, []string{"20", "4"}),
		}
		split2 := []types.PageTable{
			makePage(1, "t1", nil, []string{"5", "1"}),
			makePage(2, "t2", nil, []string{"25", "2"}, []string{"19", "3"}, []string{"20", "4"}),
		}

		strategy := ScoreDomains(scoreDomainsFixture(), 0)
		res1, err := Segment(split1, strategy)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res2, err := Segment(split2, strategy)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, id := range []string{"low", "high"} {
			t1, t2 := res1.Table(id), res2.Table(id)
			if t1 == nil || t2 == nil {
				t.Fatalf("domain %s missing in one split", id)
			}
			if len(t1.Rows) != len(t2.Rows) {
				t.Fatalf("domain %s sizes differ: %d vs %d", id, len(t1.Rows), len(t2.Rows))
			}
			for i := range t1.Rows {
				if t1.Rows[i].Cells[0] != t2.Rows[i].Cells[0] {
					t.Errorf("domain %s row %d differs: %v vs %v",
						id, i, t1.Rows[i].Cells, t2.Rows[i].Cells)
				}
			}
		}
	})

	t.Run("repeated page header rows are consumed, not quarantined", func(t *testing.T) {
		header := []string{"Score", "Frequency"}
		pages := []types.PageTable{
			makePage(1, "t1", header, []string{"5", "12"}),
			makePage(2, "t2", nil, []string{"SCORE", "FREQUENCY"}, []string{"25", "3"}),
		}

		res, err := Segment(pages, ScoreDomains(scoreDomainsFixture(), 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Table(types.UnclassifiedTableID) != nil {
			t.Error("repeated header row should not land in Unclassified")
		}
		if got := res.TotalLogicalRows(); got != 2 {
			t.Errorf("expected 2 data rows, got %d", got)
		}
	})

	t.Run("input pages unchanged", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil, []string{"5", "12"}, []string{"25", "3"}),
		}
		res, err := Segment(pages, ScoreDomains(scoreDomainsFixture(), 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Pages) != 1 || len(res.Pages[0].Rows) != 2 {
			t.Fatal("pages view should be the unmodified input")
		}
		if res.Pages[0].Rows[0].Cells[0] != "5" {
			t.Error("page rows must not be reordered or rewritten")
		}
	})
}

func TestSegmentHeaderRepetition(t *testing.T) {
	sig := []string{"Name", "Position", "Department"}

	t.Run("scenario B: repeated header stitches one table", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil,
				[]string{"Name", "Position", "Department"},
				[]string{"Ada", "Engineer", "R&D"},
				[]string{"Grace", "Analyst", "Ops"},
			),
			makePage(2, "t2", nil,
				[]string{"Name", "Position", "Department"},
				[]string{"Alan", "Engineer", "R&D"},
			),
		}

		res, err := Segment(pages, HeaderRepetition(sig))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(res.Logical) != 1 {
			t.Fatalf("expected a single logical table, got %d", len(res.Logical))
		}
		if got := len(res.Logical[0].Rows); got != 3 {
			t.Errorf("expected 3 data rows, got %d", got)
		}
		if len(res.Anomalies) != 0 {
			t.Errorf("verbatim repeated header must raise no anomalies, got %+v", res.Anomalies)
		}
	})

	t.Run("repeated header with drift raises header-consistency", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil,
				[]string{"Name", "Position", "Department"},
				[]string{"Ada", "Engineer", "R&D"},
			),
			makePage(2, "t2", nil,
				[]string{"NAME", "POSITION", "DEPARTMENT"}, // case drift
				[]string{"Alan", "Engineer", "R&D"},
			),
		}

		res, err := Segment(pages, HeaderRepetition(sig))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(res.Anomalies) != 1 {
			t.Fatalf("expected 1 anomaly, got %d", len(res.Anomalies))
		}
		a := res.Anomalies[0]
		if a.RuleID != RuleHeaderConsistency {
			t.Errorf("expected %s anomaly, got %s", RuleHeaderConsistency, a.RuleID)
		}
		if a.Severity != types.SeverityWarning {
			t.Errorf("header drift is recorded, not fatal; got severity %s", a.Severity)
		}
		// The drifted header is still discarded, never added as data.
		if got := len(res.Logical[0].Rows); got != 2 {
			t.Errorf("expected 2 data rows, got %d", got)
		}
	})

	t.Run("new header opens a new section", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil,
				[]string{"Name", "Position", "Department"},
				[]string{"Ada", "Engineer", "R&D"},
			),
		}
		res, err := Segment(pages, HeaderRepetition(sig))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Logical[0].ID != "section-1" {
			t.Errorf("unexpected section id %q", res.Logical[0].ID)
		}
		if got := res.Logical[0].Header; len(got) != 3 || got[0] != "Name" {
			t.Errorf("header row should become table metadata, got %v", got)
		}
	})

	t.Run("section title labels the open table", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil,
				[]string{"Name", "Position", "Department"},
				[]string{"Finance", "", ""},
				[]string{"Ada", "Engineer", "R&D"},
			),
		}
		res, err := Segment(pages, HeaderRepetition(sig))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Logical[0].Label != "Finance" {
			t.Errorf("expected label Finance, got %q", res.Logical[0].Label)
		}
		if got := len(res.Logical[0].Rows); got != 1 {
			t.Errorf("section title must not be a data row, got %d rows", got)
		}
	})

	t.Run("rows before any header are orphans", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil,
				[]string{"Ada", "Engineer", "R&D"},
				[]string{"Name", "Position", "Department"},
				[]string{"Grace", "Analyst", "Ops"},
			),
		}
		res, err := Segment(pages, HeaderRepetition(sig))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		unc := res.Table(types.UnclassifiedTableID)
		if unc == nil || len(unc.Rows) != 1 {
			t.Fatalf("expected 1 orphan row, got %+v", unc)
		}
		if unc.Rows[0].Cells[0] != "Ada" {
			t.Errorf("wrong orphan row: %v", unc.Rows[0].Cells)
		}
	})
}

func TestSegmentPassthrough(t *testing.T) {
	pages := []types.PageTable{
		makePage(1, "t1", []string{"A", "B"}, []string{"1", "2"}),
		makePage(2, "t2", nil, []string{"3", "4"}, []string{"5", "6"}),
	}

	res, err := Segment(pages, Passthrough())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Logical) != 2 {
		t.Fatalf("expected one logical table per page table, got %d", len(res.Logical))
	}
	if res.Logical[0].ID != "t1" || res.Logical[1].ID != "t2" {
		t.Errorf("unexpected table ids: %s, %s", res.Logical[0].ID, res.Logical[1].ID)
	}
	if len(res.Logical[1].Rows) != 2 {
		t.Errorf("rows must be copied verbatim, got %d", len(res.Logical[1].Rows))
	}
}

func TestSegmentProperties(t *testing.T) {
	t.Run("completeness and resolvable provenance", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil, []string{"5", "1"}, []string{"bad", "2"}, []string{"30", "3"}),
			makePage(2, "t2", nil, []string{"10", "4"}),
		}

		res, err := Segment(pages, ScoreDomains(scoreDomainsFixture(), 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		inputRows := 0
		for _, p := range pages {
			inputRows += len(p.Rows)
		}
		if got := res.TotalLogicalRows(); got != inputRows {
			t.Errorf("row count mismatch: logical %d, input %d", got, inputRows)
		}

		// Every logical row must resolve back to its source raw row.
		byProv := map[types.Provenance][]string{}
		for _, p := range pages {
			for _, raw := range p.Rows {
				byProv[raw.Provenance()] = raw.Cells
			}
		}
		for _, lt := range res.Logical {
			for _, row := range lt.Rows {
				src, ok := byProv[row.Prov]
				if !ok {
					t.Fatalf("table %s: unresolvable provenance %+v", lt.ID, row.Prov)
				}
				if src[0] != row.Cells[0] {
					t.Errorf("table %s: provenance %+v resolves to %v, row holds %v",
						lt.ID, row.Prov, src, row.Cells)
				}
			}
		}
	})

	t.Run("rows within a table are non-decreasing in document order", func(t *testing.T) {
		pages := []types.PageTable{
			makePage(1, "t1", nil, []string{"18", "1"}, []string{"2", "2"}),
			makePage(2, "t2", nil, []string{"7", "3"}, []string{"19", "4"}),
		}

		res, err := Segment(pages, ScoreDomains(scoreDomainsFixture(), 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, lt := range res.Logical {
			for i := 1; i < len(lt.Rows); i++ {
				if lt.Rows[i].Prov.Before(lt.Rows[i-1].Prov) {
					t.Errorf("table %s: rows %d and %d out of document order", lt.ID, i-1, i)
				}
			}
		}
	})
}
