// Package types provides shared types used across multiple packages.
// This package has no dependencies on other docutura packages to avoid import cycles.
package types

import "strings"

// UnclassifiedTableID identifies the synthetic logical table that collects
// rows no strategy could attribute to a recognized section or domain.
const UnclassifiedTableID = "unclassified"

// Provenance points a reconstructed row back to its original page and row
// position. It is the audit trail linking output data to source location.
type Provenance struct {
	Page int `json:"page"`      // 1-indexed page number
	Row  int `json:"row_index"` // 0-indexed row within the page table
}

// Before reports whether p precedes q in document order
// (page ascending, then row-within-page ascending).
func (p Provenance) Before(q Provenance) bool {
	if p.Page != q.Page {
		return p.Page < q.Page
	}
	return p.Row < q.Row
}

// RawRow is one extracted row as produced by the upstream extraction
// collaborator. Cells are strings; numeric coercion is lazy (ParseNumber).
// RawRows are immutable once produced by extraction.
type RawRow struct {
	Cells       []string `json:"cells"`
	Page        int      `json:"page"`         // 1-indexed originating page
	Index       int      `json:"row_index"`    // 0-indexed row within the page table
	SourceTable string   `json:"source_table"` // Identifier of the raw table region
}

// Provenance returns the row's source location.
func (r RawRow) Provenance() Provenance {
	return Provenance{Page: r.Page, Row: r.Index}
}

// IsEmpty reports whether every cell is blank after trimming.
func (r RawRow) IsEmpty() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// PageTable is the unmodified, page-scoped view of extracted rows.
// One per physically detected table region; never reordered or merged.
// This is the traceability view.
type PageTable struct {
	Page   int      `json:"page"` // 1-indexed page number
	ID     string   `json:"id"`   // Raw source table identifier
	Rows   []RawRow `json:"rows"`
	Header []string `json:"header,omitempty"` // Detected header row(s), if any
}

// RowCount returns the number of rows in the page table.
func (p PageTable) RowCount() int { return len(p.Rows) }

// Row is a reconstructed row inside a LogicalTable: the cell values plus
// provenance back to the originating page table.
type Row struct {
	Cells []string   `json:"cells"`
	Prov  Provenance `json:"provenance"`
}

// ScoreDomain is a numeric interval used to route rows of a statistical
// distribution to the correct logical table. Intervals are closed on both
// ends: Min <= v <= Max.
type ScoreDomain struct {
	Name        string  `json:"name"` // e.g. "Scaled_Objective"
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description,omitempty"`
}

// Contains reports whether v falls inside the domain interval.
func (d ScoreDomain) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// Overlaps reports whether two domains share any value.
func (d ScoreDomain) Overlaps(o ScoreDomain) bool {
	return d.Min <= o.Max && o.Min <= d.Max
}

// LogicalTable is a reconstructed table grouping rows by domain/section
// semantics, independent of page breaks. Created exactly once per
// conversion job by the segmentation engine and read-only thereafter.
type LogicalTable struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`            // Section title or domain descriptor
	Domain   *ScoreDomain `json:"domain,omitempty"` // Set for score-domain segmented tables
	Header   []string     `json:"header,omitempty"`
	Rows     []Row        `json:"rows"`
	Strategy string       `json:"strategy"` // Name of the strategy that produced the table
}

// RowCount returns the number of data rows (the header is metadata, not data).
func (t LogicalTable) RowCount() int { return len(t.Rows) }

// IsEmpty reports whether the table has no data rows.
func (t LogicalTable) IsEmpty() bool { return len(t.Rows) == 0 }

// IsUnclassified reports whether this is the synthetic orphan-row table.
func (t LogicalTable) IsUnclassified() bool { return t.ID == UnclassifiedTableID }
