package plugins

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/docutura/docutura/internal/segment"
	"github.com/docutura/docutura/internal/types"
	"github.com/docutura/docutura/internal/validate"
)

// RuleRosterOrphanCells identifies the roster rule flagging isolated
// single-cell rows that are neither section titles nor data.
const RuleRosterOrphanCells = "roster-orphan-cells"

var yearRe = regexp.MustCompile(`\b(20\d{2})\b`)

// StaffListPlugin recognizes roster-style documents (staff lists,
// personnel rosters) where a header row repeats after every page break and
// sections are introduced by title rows.
type StaffListPlugin struct{}

// NewStaffListPlugin creates the plugin.
func NewStaffListPlugin() *StaffListPlugin {
	return &StaffListPlugin{}
}

func (p *StaffListPlugin) ID() string      { return "stafflist" }
func (p *StaffListPlugin) Version() string { return "1.0.0" }

// Detect looks for roster indicators in page text, roster-style header
// keywords, and a header row that repeats across the document.
func (p *StaffListPlugin) Detect(in Input) Detection {
	confidence := 0.0
	meta := map[string]string{}

	fullText := strings.ToUpper(strings.Join(in.PageTexts, " "))

	rosterIndicators := []string{"STAFF LIST", "STAFF ROSTER", "INTERNATIONAL STAFF", "PERSONNEL"}
	matches := 0
	for _, ind := range rosterIndicators {
		if strings.Contains(fullText, ind) {
			matches++
		}
	}
	if matches > 0 {
		confidence += 0.3 * math.Min(float64(matches), 2)
	}

	rosterKeywords := []string{"NAME", "POSITION", "DEPARTMENT", "NATIONALITY"}
	keywordCount := 0
	for _, page := range in.Pages {
		headerText := strings.ToUpper(strings.Join(headerOf(page), " "))
		for _, kw := range rosterKeywords {
			if strings.Contains(headerText, kw) {
				keywordCount++
			}
		}
	}
	if keywordCount >= 2 {
		confidence += 0.3
	}

	if sig := repeatedHeader(in.Pages); sig != nil {
		confidence += 0.4
		meta["header_pattern"] = strings.Join(sig, "|")
	}

	if m := yearRe.FindStringSubmatch(fullText); m != nil {
		meta["year"] = m[1]
	}

	return Detection{
		PluginID:   p.ID(),
		Confidence: math.Min(confidence, 1.0),
		Metadata:   meta,
	}
}

// Strategy stitches the roster back together at its repeated header. The
// signature is the header row that repeats across pages, falling back to
// the first page's header for single-page documents.
func (p *StaffListPlugin) Strategy(in Input) segment.Strategy {
	sig := repeatedHeader(in.Pages)
	if sig == nil {
		for _, page := range in.Pages {
			if h := headerOf(page); len(h) > 0 {
				sig = h
				break
			}
		}
	}
	return segment.HeaderRepetition(sig)
}

// Rules returns the roster-specific validation rules.
func (p *StaffListPlugin) Rules() []validate.Rule {
	return []validate.Rule{
		{
			ID:       RuleRosterOrphanCells,
			Scope:    validate.ScopeDomain,
			Severity: types.SeverityWarning,
			AppliesTo: func(t *types.LogicalTable) bool {
				return t.Strategy == string(segment.KindHeaderRepetition) && !t.IsUnclassified()
			},
			Eval: evalRosterOrphanCells,
		},
	}
}

// Metadata extracts roster document identification from page text.
func (p *StaffListPlugin) Metadata(in Input) types.DocumentMetadata {
	fullText := strings.Join(in.PageTexts, " ")

	md := types.DocumentMetadata{
		Title:         "Staff List",
		PluginID:      p.ID(),
		PluginVersion: p.Version(),
	}
	if m := regexp.MustCompile(`(?i)(INTERNATIONAL\s+STAFF\s+LIST[^\n]*)`).FindStringSubmatch(fullText); m != nil {
		md.Title = strings.TrimSpace(m[1])
	}
	if m := regexp.MustCompile(`(?i)(?:SCHOOL|COLLEGE|UNIVERSITY|ORGANIZATION)[:\s]+([A-Z][A-Za-z\s&]+)`).FindStringSubmatch(fullText); m != nil {
		md.Organization = strings.TrimSpace(m[1])
	}
	if m := yearRe.FindStringSubmatch(fullText); m != nil {
		md.ReportingPeriod = m[1]
	}
	return md
}

// repeatedHeader returns the normalized cell sequence that appears as a
// row two or more times across the document, or nil. A header repeating
// verbatim is the strongest signal that page breaks split one roster.
func repeatedHeader(pages []types.PageTable) []string {
	counts := make(map[string]int)
	first := make(map[string][]string)
	var order []string

	record := func(cells []string) {
		if len(cells) == 0 {
			return
		}
		for _, c := range cells {
			if strings.TrimSpace(c) == "" {
				return
			}
		}
		norm := make([]string, len(cells))
		for i, c := range cells {
			norm[i] = strings.ToUpper(strings.TrimSpace(c))
		}
		key := strings.Join(norm, "\x1f")
		counts[key]++
		if _, ok := first[key]; !ok {
			first[key] = cells
			order = append(order, key)
		}
	}

	for _, page := range pages {
		record(page.Header)
		for _, row := range page.Rows {
			record(row.Cells)
		}
	}

	// First pattern seen in document order wins, so detection is
	// deterministic when several patterns repeat.
	for _, key := range order {
		if counts[key] >= 2 {
			return first[key]
		}
	}
	return nil
}

// evalRosterOrphanCells flags two consecutive rows that each populate a
// single cell. One such row is usually a section title; two in a row
// suggest a fragmented record.
func evalRosterOrphanCells(t *types.LogicalTable, _ validate.Context) []types.Issue {
	var issues []types.Issue

	prevSingle := false
	for _, row := range t.Rows {
		single := countNonEmpty(row.Cells) == 1
		if single && prevSingle {
			issues = append(issues, types.Issue{
				RuleID:   RuleRosterOrphanCells,
				Severity: types.SeverityWarning,
				TableID:  t.ID,
				Rows:     []types.Provenance{row.Prov},
				Message:  fmt.Sprintf("possible orphan row: consecutive single-cell rows ending at page %d row %d", row.Prov.Page, row.Prov.Row),
			})
		}
		prevSingle = single
	}
	return issues
}

func countNonEmpty(cells []string) int {
	n := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
