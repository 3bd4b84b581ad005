package pipeline

import (
	"time"

	"github.com/docutura/docutura/internal/plugins"
	"github.com/docutura/docutura/internal/types"
)

// Result is the output of one conversion job. Everything downstream
// (output writers, the audit sink, the CLI) reads from here; nothing
// writes back.
type Result struct {
	JobID     string    `json:"job_id"`
	Source    string    `json:"source,omitempty"`
	InputHash string    `json:"input_hash"` // SHA-256 of the interchange document
	Mode      string    `json:"mode"`       // Extraction mode the job ran under
	StartedAt time.Time `json:"started_at"`
	Elapsed   float64   `json:"elapsed_seconds"`

	Metadata  types.DocumentMetadata `json:"metadata"`
	Detection *plugins.Detection     `json:"detection,omitempty"` // Nil when no plugin matched

	// Pages is the traceability view: page tables exactly as extracted.
	Pages []types.PageTable `json:"pages"`
	// Logical holds the authoritative reconstructed tables.
	Logical []types.LogicalTable `json:"logical"`
	// Report is the validation outcome. It describes the data; it never
	// gates output generation.
	Report *types.Report `json:"report"`
}

// Summary condenses a result for logs and CLI output.
type Summary struct {
	JobID         string  `json:"job_id"`
	Plugin        string  `json:"plugin,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	PageTables    int     `json:"page_tables"`
	LogicalTables int     `json:"logical_tables"`
	Rows          int     `json:"rows"`
	Errors        int     `json:"errors"`
	Warnings      int     `json:"warnings"`
	AllPassed     bool    `json:"all_passed"`
	Elapsed       float64 `json:"elapsed_seconds"`
}

// Summarize builds the condensed view of a result.
func (r *Result) Summarize() Summary {
	s := Summary{
		JobID:         r.JobID,
		PageTables:    len(r.Pages),
		LogicalTables: len(r.Logical),
		Elapsed:       r.Elapsed,
	}
	if r.Detection != nil {
		s.Plugin = r.Detection.PluginID
		s.Confidence = r.Detection.Confidence
	}
	for _, t := range r.Logical {
		s.Rows += len(t.Rows)
	}
	if r.Report != nil {
		s.Errors = r.Report.ErrorCount()
		s.Warnings = r.Report.WarningCount()
		s.AllPassed = r.Report.AllPassed()
	}
	return s
}
