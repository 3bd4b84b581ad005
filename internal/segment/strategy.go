// Package segment reconstructs logical tables from page-ordered raw rows.
//
// Page breaks routinely split one semantic table into several physical
// fragments. The segmenter stitches those fragments back together using a
// strategy supplied by the document-type detection layer, while keeping the
// untouched page tables around for traceability.
package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docutura/docutura/internal/types"
)

// ErrConfig marks a malformed strategy configuration. Configuration errors
// are fatal to the segmentation call and are raised before any row is read.
var ErrConfig = errors.New("invalid segmentation configuration")

// Kind names a segmentation strategy variant.
type Kind string

const (
	// KindPassthrough produces one logical table per page table, rows verbatim.
	KindPassthrough Kind = "passthrough"
	// KindScoreDomain routes rows to logical tables by numeric interval.
	KindScoreDomain Kind = "score_domain"
	// KindHeaderRepetition stitches tables split by page breaks using a
	// repeated header row as the seam marker.
	KindHeaderRepetition Kind = "header_repetition"
)

// Strategy is a tagged variant describing how to reconstruct logical
// tables. It is plain data: the engine never calls back into the
// document-type plugin that produced it.
type Strategy struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Score-domain fields.
	Domains     []types.ScoreDomain `json:"domains,omitempty" yaml:"domains,omitempty"`
	ValueColumn int                 `json:"value_column,omitempty" yaml:"value_column,omitempty"`
	// RequireDisjoint rejects overlapping domain intervals up front instead
	// of relying on declaration-order tie-breaking.
	RequireDisjoint bool `json:"require_disjoint,omitempty" yaml:"require_disjoint,omitempty"`

	// Header-repetition field: the exact cell sequence that marks a header
	// row, compared after whitespace/case normalization.
	HeaderSignature []string `json:"header_signature,omitempty" yaml:"header_signature,omitempty"`
}

// Passthrough returns a strategy that copies each page table verbatim.
func Passthrough() Strategy {
	return Strategy{Kind: KindPassthrough}
}

// ScoreDomains returns a strategy that routes rows to domains by the
// numeric value in the given column. Domain order matters: the first
// matching interval wins.
func ScoreDomains(domains []types.ScoreDomain, valueColumn int) Strategy {
	return Strategy{Kind: KindScoreDomain, Domains: domains, ValueColumn: valueColumn}
}

// HeaderRepetition returns a strategy that opens a new logical table at
// each header row and discards headers repeated after page breaks.
func HeaderRepetition(signature []string) Strategy {
	return Strategy{Kind: KindHeaderRepetition, HeaderSignature: signature}
}

// Validate checks the strategy configuration. It is called by Segment
// before any row is processed so a misconfigured job fails fast instead of
// silently misclassifying rows.
func (s Strategy) Validate() error {
	switch s.Kind {
	case KindPassthrough:
		return nil

	case KindScoreDomain:
		if len(s.Domains) == 0 {
			return fmt.Errorf("%w: score-domain strategy declares no domains", ErrConfig)
		}
		if s.ValueColumn < 0 {
			return fmt.Errorf("%w: value column %d is negative", ErrConfig, s.ValueColumn)
		}
		for i, d := range s.Domains {
			if strings.TrimSpace(d.Name) == "" {
				return fmt.Errorf("%w: domain %d has no name", ErrConfig, i)
			}
			if d.Min > d.Max {
				return fmt.Errorf("%w: domain %q has min %v > max %v", ErrConfig, d.Name, d.Min, d.Max)
			}
		}
		if s.RequireDisjoint {
			for i := range s.Domains {
				for j := i + 1; j < len(s.Domains); j++ {
					if s.Domains[i].Overlaps(s.Domains[j]) {
						return fmt.Errorf("%w: domains %q and %q overlap", ErrConfig,
							s.Domains[i].Name, s.Domains[j].Name)
					}
				}
			}
		}
		return nil

	case KindHeaderRepetition:
		if len(s.HeaderSignature) == 0 {
			return fmt.Errorf("%w: header-repetition strategy declares no header signature", ErrConfig)
		}
		for i, cell := range s.HeaderSignature {
			if strings.TrimSpace(cell) == "" {
				return fmt.Errorf("%w: header signature cell %d is blank", ErrConfig, i)
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown strategy kind %q", ErrConfig, s.Kind)
	}
}

// normalizeCells trims and upper-cases cells for signature matching.
// Header rows re-extracted after a page break often differ from the
// original in whitespace or case only.
func normalizeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return out
}

// cellsEqual compares two cell sequences for exact equality.
func cellsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// matchesSignature reports whether a row's normalized cells equal the
// normalized signature.
func matchesSignature(cells, signature []string) bool {
	return cellsEqual(normalizeCells(cells), normalizeCells(signature))
}
