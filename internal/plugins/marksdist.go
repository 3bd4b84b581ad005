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

// Domain rule identifiers supplied by the marks-distribution plugin.
const (
	RuleDistributionCoherence = "distribution-coherence"
	RuleScoreInDomain         = "score-in-domain"
)

var (
	subjectRe = regexp.MustCompile(`SUBJECT[:\s]+([A-Z][A-Z\s]*[A-Z])`)
	sessionRe = regexp.MustCompile(`(?:SESSION|YEAR)[:\s]+(\d{4})`)
)

// MarksDistributionPlugin recognizes examination marks-distribution
// reports: statistical tables (score, frequency, percent, cumulative)
// whose score domains must not be split across page boundaries.
type MarksDistributionPlugin struct{}

// NewMarksDistributionPlugin creates the plugin.
func NewMarksDistributionPlugin() *MarksDistributionPlugin {
	return &MarksDistributionPlugin{}
}

func (p *MarksDistributionPlugin) ID() string      { return "marksdist" }
func (p *MarksDistributionPlugin) Version() string { return "1.0.0" }

// Detect looks for examination-board indicators in the page text,
// distribution keywords in table headers, and a numeric score column.
func (p *MarksDistributionPlugin) Detect(in Input) Detection {
	confidence := 0.0
	meta := map[string]string{}

	fullText := strings.ToUpper(strings.Join(in.PageTexts, " "))

	boardIndicators := []string{"WAEC", "WEST AFRICAN EXAMINATIONS COUNCIL", "TASS", "CASS", "MARKS DISTRIBUTION"}
	matches := 0
	for _, ind := range boardIndicators {
		if strings.Contains(fullText, ind) {
			matches++
		}
	}
	if matches > 0 {
		confidence += 0.3 * math.Min(float64(matches), 2)
	}

	distributionKeywords := []string{"FREQUENCY", "PERCENT", "CUMULATIVE", "SCORE"}
	keywordCount := 0
	for _, page := range in.Pages {
		headerText := strings.ToUpper(strings.Join(headerOf(page), " "))
		for _, kw := range distributionKeywords {
			if strings.Contains(headerText, kw) {
				keywordCount++
			}
		}
	}
	if keywordCount >= 3 {
		confidence += 0.4
	}

	if hasNumericScoreColumn(in.Pages) {
		confidence += 0.3
	}

	if m := subjectRe.FindStringSubmatch(fullText); m != nil {
		meta["subject"] = strings.TrimSpace(m[1])
	}
	if m := sessionRe.FindStringSubmatch(fullText); m != nil {
		meta["session"] = m[1]
	}
	if strings.Contains(fullText, "OBJECTIVE") {
		meta["paper_type"] = "objective"
	}
	if strings.Contains(fullText, "ESSAY") {
		meta["paper_type"] = "essay"
	}

	return Detection{
		PluginID:   p.ID(),
		Confidence: math.Min(confidence, 1.0),
		Metadata:   meta,
	}
}

// Strategy routes rows by score value in the first column. The scaled
// domains 0-19 and 15-40 deliberately overlap; declaration order breaks
// the tie, so disjointness is not required here.
func (p *MarksDistributionPlugin) Strategy(in Input) segment.Strategy {
	return segment.ScoreDomains(p.ScoreDomains(), 0)
}

// ScoreDomains returns the standard examination score ranges. These ranges
// must never be split across pages.
func (p *MarksDistributionPlugin) ScoreDomains() []types.ScoreDomain {
	return []types.ScoreDomain{
		{Name: "Scaled_Objective", Min: 0, Max: 19, Description: "Scaled Objective score range (0-19)"},
		{Name: "Scaled_Essay", Min: 15, Max: 40, Description: "Scaled Essay score range (15-40)"},
		{Name: "Raw_Score_40", Min: 0, Max: 40, Description: "Raw score range (0-40)"},
		{Name: "Raw_Score_50", Min: 0, Max: 50, Description: "Raw score range (0-50)"},
		{Name: "Raw_Score_60", Min: 0, Max: 60, Description: "Raw score range (0-60)"},
	}
}

// Rules returns the distribution-specific validation rules.
func (p *MarksDistributionPlugin) Rules() []validate.Rule {
	return []validate.Rule{
		{ID: RuleDistributionCoherence, Scope: validate.ScopeDomain, Severity: types.SeverityError, Eval: evalDistributionCoherence},
		{ID: RuleScoreInDomain, Scope: validate.ScopeDomain, Severity: types.SeverityWarning, Eval: evalScoreInDomain},
	}
}

// Metadata extracts document identification from page text.
func (p *MarksDistributionPlugin) Metadata(in Input) types.DocumentMetadata {
	fullText := strings.ToUpper(strings.Join(in.PageTexts, " "))

	md := types.DocumentMetadata{
		Title:         "Marks Distribution",
		PluginID:      p.ID(),
		PluginVersion: p.Version(),
	}
	if strings.Contains(fullText, "WAEC") || strings.Contains(fullText, "WEST AFRICAN EXAMINATIONS COUNCIL") {
		md.Organization = "West African Examinations Council (WAEC)"
	}
	if m := subjectRe.FindStringSubmatch(fullText); m != nil {
		md.Subject = strings.TrimSpace(m[1])
	}
	if m := sessionRe.FindStringSubmatch(fullText); m != nil {
		md.ReportingPeriod = m[1]
	}
	return md
}

// hasNumericScoreColumn reports whether any page table's first column is
// at least 70% numeric.
func hasNumericScoreColumn(pages []types.PageTable) bool {
	for _, page := range pages {
		numeric, total := 0, 0
		for _, row := range page.Rows {
			if len(row.Cells) == 0 {
				continue
			}
			total++
			if types.IsNumeric(row.Cells[0]) {
				numeric++
			}
		}
		if total > 0 && float64(numeric) > float64(total)*0.7 {
			return true
		}
	}
	return false
}

var (
	scoreKeywords = []string{"score", "mark", "grade"}
	freqKeywords  = []string{"frequency", "freq"}
	pctKeywords   = []string{"percent", "percentage", "%"}
	cumKeywords   = []string{"cumulative", "cum"}
)

// evalDistributionCoherence cross-checks the frequency, percent, and
// cumulative columns of a distribution table: each cumulative value must
// equal the previous cumulative plus the row's frequency, and each percent
// must match the row's share of the total frequency.
func evalDistributionCoherence(t *types.LogicalTable, ctx validate.Context) []types.Issue {
	freqCol := validate.FindColumn(t.Header, freqKeywords)
	cumCol := validate.FindColumn(t.Header, cumKeywords)
	pctCol := validate.FindColumn(t.Header, pctKeywords)

	var issues []types.Issue

	// Cumulative increments must equal frequencies.
	if freqCol >= 0 && cumCol >= 0 {
		prev := 0.0
		havePrev := false
		for _, row := range t.Rows {
			f, fok := cellNumber(row.Cells, freqCol)
			c, cok := cellNumber(row.Cells, cumCol)
			if !fok || !cok {
				continue
			}
			if havePrev && math.Abs(c-(prev+f)) > 0.5 {
				issues = append(issues, types.Issue{
					RuleID:   RuleDistributionCoherence,
					Severity: types.SeverityError,
					TableID:  t.ID,
					Rows:     []types.Provenance{row.Prov},
					Message: fmt.Sprintf("cumulative %.0f does not equal previous cumulative %.0f plus frequency %.0f",
						c, prev, f),
				})
			}
			prev = c
			havePrev = true
		}
	}

	// Percent values must match each row's share of the total frequency.
	if freqCol >= 0 && pctCol >= 0 {
		total := 0.0
		for _, row := range t.Rows {
			if f, ok := cellNumber(row.Cells, freqCol); ok {
				total += f
			}
		}
		if total > 0 {
			for _, row := range t.Rows {
				f, fok := cellNumber(row.Cells, freqCol)
				p, pok := cellNumber(row.Cells, pctCol)
				if !fok || !pok {
					continue
				}
				expected := f / total * 100
				if math.Abs(p-expected) > 0.05 {
					issues = append(issues, types.Issue{
						RuleID:   RuleDistributionCoherence,
						Severity: types.SeverityWarning,
						TableID:  t.ID,
						Rows:     []types.Provenance{row.Prov},
						Message: fmt.Sprintf("percent %.2f does not match frequency share %.2f",
							p, expected),
					})
				}
			}
		}
	}

	return issues
}

// evalScoreInDomain warns when a score value falls outside the table's
// domain interval. Segmentation routed the row here, so a miss means the
// domain configuration and the data disagree.
func evalScoreInDomain(t *types.LogicalTable, _ validate.Context) []types.Issue {
	if t.Domain == nil {
		return nil
	}
	col := validate.FindColumn(t.Header, scoreKeywords)
	if col < 0 {
		col = 0
	}

	var issues []types.Issue
	for _, row := range t.Rows {
		v, ok := cellNumber(row.Cells, col)
		if !ok {
			continue
		}
		if !t.Domain.Contains(v) {
			issues = append(issues, types.Issue{
				RuleID:   RuleScoreInDomain,
				Severity: types.SeverityWarning,
				TableID:  t.ID,
				Rows:     []types.Provenance{row.Prov},
				Message: fmt.Sprintf("score %.0f outside domain range [%.0f, %.0f]",
					v, t.Domain.Min, t.Domain.Max),
			})
		}
	}
	return issues
}

func cellNumber(cells []string, col int) (float64, bool) {
	if col < 0 || col >= len(cells) {
		return 0, false
	}
	return types.ParseNumber(cells[col])
}
