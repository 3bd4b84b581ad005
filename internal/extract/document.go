// Package extract loads the extraction collaborator's output.
//
// Parsing raw document bytes (PDF, DOCX, images, OCR) happens upstream;
// what arrives here is the interchange document the extractor emits:
// page-ordered tables of string cells, validated against an embedded JSON
// Schema before anything downstream sees it.
package extract

import (
	"fmt"

	"github.com/docutura/docutura/internal/types"
)

// Document is the extraction interchange document: everything the
// upstream extractor produced for one source file.
type Document struct {
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
	Pages  []Page `json:"pages"`
}

// Page holds one page's extracted content.
type Page struct {
	Page   int     `json:"page"` // 1-indexed
	Text   string  `json:"text,omitempty"`
	Tables []Table `json:"tables,omitempty"`
}

// Table is one physically detected table region on a page.
type Table struct {
	ID     string     `json:"id,omitempty"`
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows"`
}

// PageTables converts the document into the read-only page-table view the
// segmentation engine consumes. Row indices number rows sequentially
// within each page so provenance stays unique per page even when a page
// holds several table regions.
func (d *Document) PageTables() []types.PageTable {
	var out []types.PageTable

	for _, page := range d.Pages {
		rowIdx := 0
		for ti, tbl := range page.Tables {
			id := tbl.ID
			if id == "" {
				id = pageTableID(page.Page, ti)
			}
			pt := types.PageTable{
				Page:   page.Page,
				ID:     id,
				Header: tbl.Header,
				Rows:   make([]types.RawRow, 0, len(tbl.Rows)),
			}
			for _, cells := range tbl.Rows {
				pt.Rows = append(pt.Rows, types.RawRow{
					Cells:       cells,
					Page:        page.Page,
					Index:       rowIdx,
					SourceTable: id,
				})
				rowIdx++
			}
			out = append(out, pt)
		}
	}
	return out
}

// PageTexts returns the free text of every page in page order.
func (d *Document) PageTexts() []string {
	texts := make([]string, 0, len(d.Pages))
	for _, page := range d.Pages {
		texts = append(texts, page.Text)
	}
	return texts
}

// pageTableID names a table region that arrived without an identifier.
func pageTableID(page, tableIdx int) string {
	return fmt.Sprintf("page-%d-table-%d", page, tableIdx+1)
}

// RowCount returns the total number of extracted rows.
func (d *Document) RowCount() int {
	n := 0
	for _, page := range d.Pages {
		for _, tbl := range page.Tables {
			n += len(tbl.Rows)
		}
	}
	return n
}
