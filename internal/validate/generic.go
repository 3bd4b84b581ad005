package validate

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"

	"github.com/docutura/docutura/internal/types"
)

// Generic rule identifiers.
const (
	RulePercentTotal        = "percent-total"
	RuleNoDuplicateRows     = "no-duplicate-rows"
	RuleMonotonicCumulative = "monotonic-cumulative"
	RuleNonNegativeCounts   = "non-negative-counts"
	RuleOrphanRows          = "orphan-rows"
	RuleColumnConsistency   = "column-consistency"
)

// Column keyword sets used to designate columns by header text. Matching
// is substring, case-insensitive, same as the source documents' loose
// header wording requires.
var (
	percentKeywords    = []string{"percent", "percentage", "%"}
	cumulativeKeywords = []string{"cumulative", "cum"}
	countKeywords      = []string{"frequency", "freq", "count"}
)

// GenericRules returns the generic rule set that runs against every
// logical table, in registration order.
func GenericRules() []Rule {
	return []Rule{
		{ID: RulePercentTotal, Scope: ScopeGeneric, Severity: types.SeverityError, Eval: evalPercentTotal},
		{ID: RuleNoDuplicateRows, Scope: ScopeGeneric, Severity: types.SeverityError, Eval: evalNoDuplicateRows},
		{ID: RuleMonotonicCumulative, Scope: ScopeGeneric, Severity: types.SeverityError, Eval: evalMonotonicCumulative},
		{ID: RuleNonNegativeCounts, Scope: ScopeGeneric, Severity: types.SeverityError, Eval: evalNonNegativeCounts},
		{ID: RuleColumnConsistency, Scope: ScopeGeneric, Severity: types.SeverityWarning, Eval: evalColumnConsistency},
		{
			ID:       RuleOrphanRows,
			Scope:    ScopeGeneric,
			Severity: types.SeverityWarning,
			AppliesTo: func(t *types.LogicalTable) bool {
				return t.IsUnclassified()
			},
			Eval: evalOrphanRows,
		},
	}
}

// NewDefaultRegistry returns a registry preloaded with the generic rules.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(GenericRules()...)
	return reg
}

// FindColumn returns the index of the first header cell containing any of
// the keywords (case-insensitive), or -1.
func FindColumn(header []string, keywords []string) int {
	for i, h := range header {
		lower := strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

// evalPercentTotal checks that the designated percent column sums to
// 100.00 within the configured tolerance. Tables without a percent column,
// or without a single parseable percent value, are out of the rule's reach
// and pass.
func evalPercentTotal(t *types.LogicalTable, ctx Context) []types.Issue {
	col := FindColumn(t.Header, percentKeywords)
	if col < 0 {
		return nil
	}

	total := 0.0
	parsed := 0
	for _, row := range t.Rows {
		if col >= len(row.Cells) {
			continue
		}
		if v, ok := types.ParseNumber(row.Cells[col]); ok {
			total += v
			parsed++
		}
	}
	if parsed == 0 {
		return nil
	}

	if math.Abs(total-100.0) > ctx.Tolerance {
		return []types.Issue{{
			RuleID:   RulePercentTotal,
			Severity: types.SeverityError,
			TableID:  t.ID,
			Message: fmt.Sprintf("percent column %q sums to %.2f, expected 100.00 (tolerance ±%.2f)",
				t.Header[col], total, ctx.Tolerance),
		}}
	}
	return nil
}

// foldCaser folds case for duplicate-row normalization. cases.Fold is
// allocation-free per call and safe for concurrent use through Caser copies.
var foldCaser = cases.Fold()

// normalizeRow produces the comparison key for duplicate detection:
// whitespace collapsed, case folded, cells joined with a separator that
// cannot appear in cell text after normalization.
func normalizeRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = foldCaser.String(strings.Join(strings.Fields(c), " "))
	}
	return strings.Join(parts, "\x1f")
}

// evalNoDuplicateRows flags rows that are equal after whitespace/case
// normalization. Fully blank rows are ignored; repeated blanks are a
// layout artifact, not duplicated data.
func evalNoDuplicateRows(t *types.LogicalTable, _ Context) []types.Issue {
	seen := make(map[string]types.Provenance, len(t.Rows))
	var issues []types.Issue

	for _, row := range t.Rows {
		key := normalizeRow(row.Cells)
		if strings.Trim(key, "\x1f") == "" {
			continue
		}
		if first, ok := seen[key]; ok {
			issues = append(issues, types.Issue{
				RuleID:   RuleNoDuplicateRows,
				Severity: types.SeverityError,
				TableID:  t.ID,
				Rows:     []types.Provenance{row.Prov, first},
				Message: fmt.Sprintf("row duplicates page %d row %d after normalization",
					first.Page, first.Row),
			})
			continue
		}
		seen[key] = row.Prov
	}
	return issues
}

// evalMonotonicCumulative checks that the designated cumulative column is
// non-decreasing in row order. Unparsable cells are skipped; the previous
// parseable value carries forward.
func evalMonotonicCumulative(t *types.LogicalTable, _ Context) []types.Issue {
	col := FindColumn(t.Header, cumulativeKeywords)
	if col < 0 {
		return nil
	}

	var issues []types.Issue
	prev := math.Inf(-1)
	havePrev := false

	for _, row := range t.Rows {
		if col >= len(row.Cells) {
			continue
		}
		v, ok := types.ParseNumber(row.Cells[col])
		if !ok {
			continue
		}
		if havePrev && v < prev {
			issues = append(issues, types.Issue{
				RuleID:   RuleMonotonicCumulative,
				Severity: types.SeverityError,
				TableID:  t.ID,
				Rows:     []types.Provenance{row.Prov},
				Message: fmt.Sprintf("cumulative value %.2f decreases from previous %.2f",
					v, prev),
			})
		}
		prev = v
		havePrev = true
	}
	return issues
}

// evalNonNegativeCounts checks that designated count columns (frequency
// and cumulative) hold values >= 0.
func evalNonNegativeCounts(t *types.LogicalTable, _ Context) []types.Issue {
	cols := make([]int, 0, 2)
	if c := FindColumn(t.Header, countKeywords); c >= 0 {
		cols = append(cols, c)
	}
	if c := FindColumn(t.Header, cumulativeKeywords); c >= 0 && !containsInt(cols, c) {
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil
	}

	var issues []types.Issue
	for _, row := range t.Rows {
		for _, col := range cols {
			if col >= len(row.Cells) {
				continue
			}
			if v, ok := types.ParseNumber(row.Cells[col]); ok && v < 0 {
				issues = append(issues, types.Issue{
					RuleID:   RuleNonNegativeCounts,
					Severity: types.SeverityError,
					TableID:  t.ID,
					Rows:     []types.Provenance{row.Prov},
					Message: fmt.Sprintf("negative value %.2f in column %q",
						v, t.Header[col]),
				})
			}
		}
	}
	return issues
}

// evalColumnConsistency warns when a row's cell count differs from the
// header's. Tables without a header are out of reach.
func evalColumnConsistency(t *types.LogicalTable, _ Context) []types.Issue {
	if len(t.Header) == 0 {
		return nil
	}

	var issues []types.Issue
	for _, row := range t.Rows {
		if len(row.Cells) != len(t.Header) {
			issues = append(issues, types.Issue{
				RuleID:   RuleColumnConsistency,
				Severity: types.SeverityWarning,
				TableID:  t.ID,
				Rows:     []types.Provenance{row.Prov},
				Message: fmt.Sprintf("row has %d cells, header has %d",
					len(row.Cells), len(t.Header)),
			})
		}
	}
	return issues
}

// evalOrphanRows reports rows sitting in the Unclassified table. Orphans
// are a warning; a job whose every row is orphaned failed to attribute
// anything at all, which is an error.
func evalOrphanRows(t *types.LogicalTable, ctx Context) []types.Issue {
	if len(t.Rows) == 0 {
		return nil
	}

	severity := types.SeverityWarning
	msg := fmt.Sprintf("%d row(s) could not be attributed to any recognized section or domain", len(t.Rows))
	if ctx.ClassifiedRows == 0 {
		severity = types.SeverityError
		msg = "every row is orphaned; no recognized section or domain claimed any data"
	}

	rows := make([]types.Provenance, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, row.Prov)
	}

	return []types.Issue{{
		RuleID:   RuleOrphanRows,
		Severity: severity,
		TableID:  t.ID,
		Rows:     rows,
		Message:  msg,
	}}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
