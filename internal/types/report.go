package types

import "sort"

// Severity classifies a validation issue.
type Severity string

const (
	// SeverityError marks a correctness violation; the table fails validation.
	SeverityError Severity = "error"
	// SeverityWarning marks a suspicious finding that never fails a table.
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding against one logical table.
// Issues report; they never repair.
type Issue struct {
	RuleID   string       `json:"rule_id"`
	Severity Severity     `json:"severity"`
	TableID  string       `json:"table_id"`
	Rows     []Provenance `json:"rows,omitempty"` // Affected row locations, if row-scoped
	Message  string       `json:"message"`
}

// TableResult records the validation outcome for one logical table.
// Passed is true iff no error-severity issue was raised for the table.
type TableResult struct {
	TableID string `json:"table_id"`
	Passed  bool   `json:"passed"`
}

// Report is the complete validation output for one conversion job.
// Created once by the validation engine and immutable afterward. Issue
// ordering is deterministic (table id, rule id, first row location) so
// report equality is reproducible across runs.
type Report struct {
	Issues []Issue       `json:"issues"`
	Tables []TableResult `json:"tables"`
}

// Passed reports whether the named table validated without errors.
// Tables unknown to the report pass vacuously.
func (r *Report) Passed(tableID string) bool {
	for _, t := range r.Tables {
		if t.TableID == tableID {
			return t.Passed
		}
	}
	return true
}

// AllPassed reports whether every validated table passed.
func (r *Report) AllPassed() bool {
	for _, t := range r.Tables {
		if !t.Passed {
			return false
		}
	}
	return true
}

// ErrorCount returns the number of error-severity issues.
func (r *Report) ErrorCount() int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity issues.
func (r *Report) WarningCount() int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// SortIssues orders issues by table id, then rule id, then first affected
// row in document order. The sort is stable so equal keys keep insertion
// order.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.TableID != b.TableID {
			return a.TableID < b.TableID
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		ap, aok := firstRow(a)
		bp, bok := firstRow(b)
		if aok && bok {
			return ap.Before(bp)
		}
		// Issues without row scope sort before row-scoped ones.
		return !aok && bok
	})
}

func firstRow(is Issue) (Provenance, bool) {
	if len(is.Rows) == 0 {
		return Provenance{}, false
	}
	return is.Rows[0], true
}
