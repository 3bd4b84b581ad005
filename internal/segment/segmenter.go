package segment

import (
	"fmt"
	"strings"

	"github.com/docutura/docutura/internal/types"
)

// RuleHeaderConsistency identifies the anomaly recorded when a repeated
// header row does not exactly match the schema of the table it re-opens.
const RuleHeaderConsistency = "header-consistency"

// Result is the output of one segmentation call.
//
// Pages is the input, unchanged, kept as the traceability view. Logical
// holds the reconstructed tables. Anomalies are issue candidates observed
// while segmenting (never fatal); the validation engine folds them into
// the final report.
type Result struct {
	Pages     []types.PageTable
	Logical   []types.LogicalTable
	Anomalies []types.Issue
}

// TotalLogicalRows returns the number of data rows across all logical
// tables, the Unclassified table included.
func (r *Result) TotalLogicalRows() int {
	n := 0
	for _, t := range r.Logical {
		n += len(t.Rows)
	}
	return n
}

// Table returns the logical table with the given id, or nil.
func (r *Result) Table(id string) *types.LogicalTable {
	for i := range r.Logical {
		if r.Logical[i].ID == id {
			return &r.Logical[i]
		}
	}
	return nil
}

// Segment reconstructs logical tables from page-ordered page tables using
// the given strategy. The input page tables are never modified. Malformed
// configuration fails before any row is read; malformed row data is
// quarantined into the Unclassified table and never aborts the job.
//
// Segmentation is a single synchronous transformation with no I/O; it is
// safe to call from multiple goroutines as long as callers do not share
// the returned Result.
func Segment(pages []types.PageTable, strategy Strategy) (*Result, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	switch strategy.Kind {
	case KindPassthrough:
		return segmentPassthrough(pages), nil
	case KindScoreDomain:
		return segmentByScoreDomain(pages, strategy), nil
	case KindHeaderRepetition:
		return segmentByHeaderRepetition(pages, strategy), nil
	default:
		// Validate rejects unknown kinds; kept for exhaustiveness.
		return nil, fmt.Errorf("%w: unknown strategy kind %q", ErrConfig, strategy.Kind)
	}
}

// segmentPassthrough copies each page table verbatim into its own logical
// table. Used for documents without a recognized structure.
func segmentPassthrough(pages []types.PageTable) *Result {
	res := &Result{Pages: pages}

	for _, p := range pages {
		id := p.ID
		if id == "" {
			id = fmt.Sprintf("page-%d", p.Page)
		}
		lt := types.LogicalTable{
			ID:       id,
			Label:    fmt.Sprintf("Page %d", p.Page),
			Header:   p.Header,
			Strategy: string(KindPassthrough),
			Rows:     make([]types.Row, 0, len(p.Rows)),
		}
		for _, raw := range p.Rows {
			lt.Rows = append(lt.Rows, types.Row{Cells: raw.Cells, Prov: raw.Provenance()})
		}
		res.Logical = append(res.Logical, lt)
	}
	return res
}

// segmentByScoreDomain iterates all rows in document order, ignoring which
// page table each row came from, and assigns every row to the first
// declared domain whose interval contains the row's value. Rows whose
// value cannot be parsed, or that match no domain, land in the
// Unclassified table; they are candidates for the orphan-row rule.
func segmentByScoreDomain(pages []types.PageTable, strategy Strategy) *Result {
	res := &Result{Pages: pages}

	// The first page-declared header labels the reconstructed tables.
	// Rows matching it are repeated header markers, consumed rather than
	// quarantined.
	var header []string
	for _, p := range pages {
		if len(p.Header) > 0 {
			header = p.Header
			break
		}
	}

	byDomain := make(map[string][]types.Row, len(strategy.Domains))
	var orphans []types.Row

	for _, p := range pages {
		for _, raw := range p.Rows {
			if len(header) > 0 && matchesSignature(raw.Cells, header) {
				continue
			}

			row := types.Row{Cells: raw.Cells, Prov: raw.Provenance()}

			v, ok := valueAt(raw.Cells, strategy.ValueColumn)
			if !ok {
				orphans = append(orphans, row)
				continue
			}

			assigned := false
			for _, d := range strategy.Domains {
				// First matching interval wins; this is also the tie-break
				// when intervals overlap.
				if d.Contains(v) {
					byDomain[d.Name] = append(byDomain[d.Name], row)
					assigned = true
					break
				}
			}
			if !assigned {
				orphans = append(orphans, row)
			}
		}
	}

	// Emit domain tables in declaration order, opened-on-first-use only.
	for i := range strategy.Domains {
		d := strategy.Domains[i]
		rows, ok := byDomain[d.Name]
		if !ok {
			continue
		}
		label := d.Name
		if d.Description != "" {
			label = d.Description
		}
		res.Logical = append(res.Logical, types.LogicalTable{
			ID:       d.Name,
			Label:    label,
			Domain:   &d,
			Header:   header,
			Rows:     rows,
			Strategy: string(KindScoreDomain),
		})
	}

	if len(orphans) > 0 {
		res.Logical = append(res.Logical, unclassifiedTable(orphans, KindScoreDomain, header))
	}
	return res
}

// segmentByHeaderRepetition iterates rows in document order, opening a new
// logical table at each header row and discarding headers repeated after
// page breaks. Engine state (current open table, active header schema) is
// local to one invocation.
func segmentByHeaderRepetition(pages []types.PageTable, strategy Strategy) *Result {
	res := &Result{Pages: pages}

	var (
		open         *types.LogicalTable
		activeSchema []string
		orphans      []types.Row
		sections     int
	)

	closeOpen := func() {
		if open != nil {
			res.Logical = append(res.Logical, *open)
			open = nil
		}
	}

	for _, p := range pages {
		for _, raw := range p.Rows {
			prov := raw.Provenance()

			if matchesSignature(raw.Cells, strategy.HeaderSignature) {
				if open == nil {
					sections++
					open = &types.LogicalTable{
						ID:       fmt.Sprintf("section-%d", sections),
						Header:   raw.Cells,
						Strategy: string(KindHeaderRepetition),
					}
					activeSchema = raw.Cells
					continue
				}

				// Repeated header, typically right after a page break: the
				// row is metadata, never data. Anything beyond a verbatim
				// repeat is worth surfacing.
				if !cellsEqual(raw.Cells, activeSchema) {
					res.Anomalies = append(res.Anomalies, types.Issue{
						RuleID:   RuleHeaderConsistency,
						Severity: types.SeverityWarning,
						TableID:  open.ID,
						Rows:     []types.Provenance{prov},
						Message: fmt.Sprintf("repeated header on page %d does not match the active header schema",
							prov.Page),
					})
				}
				continue
			}

			if open != nil && isSectionTitle(raw.Cells) {
				// Section titles label the open table; they are metadata,
				// not data rows.
				open.Label = strings.TrimSpace(raw.Cells[0])
				continue
			}

			row := types.Row{Cells: raw.Cells, Prov: prov}
			if open == nil {
				orphans = append(orphans, row)
				continue
			}
			open.Rows = append(open.Rows, row)
		}
	}
	closeOpen()

	if len(orphans) > 0 {
		res.Logical = append(res.Logical, unclassifiedTable(orphans, KindHeaderRepetition, nil))
	}
	return res
}

// isSectionTitle reports whether a row looks like a section title: text in
// the first cell with every other cell blank.
func isSectionTitle(cells []string) bool {
	if len(cells) < 2 {
		return false
	}
	if strings.TrimSpace(cells[0]) == "" {
		return false
	}
	for _, c := range cells[1:] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// valueAt parses the numeric value at the given column.
func valueAt(cells []string, col int) (float64, bool) {
	if col >= len(cells) {
		return 0, false
	}
	return types.ParseNumber(cells[col])
}

// unclassifiedTable builds the synthetic table that quarantines rows no
// domain or section could claim.
func unclassifiedTable(rows []types.Row, kind Kind, header []string) types.LogicalTable {
	return types.LogicalTable{
		ID:       types.UnclassifiedTableID,
		Label:    "Unclassified",
		Header:   header,
		Rows:     rows,
		Strategy: string(kind),
	}
}
