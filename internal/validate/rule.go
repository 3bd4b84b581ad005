// Package validate evaluates deterministic correctness rules over
// reconstructed logical tables.
//
// Validation reports, it never repairs: rules are pure functions that read
// a logical table and emit issues. A report never gates output generation
// downstream; it travels alongside the data it describes.
package validate

import (
	"github.com/docutura/docutura/internal/types"
)

// Scope says which tables a rule runs against.
type Scope string

const (
	// ScopeGeneric rules run against every logical table.
	ScopeGeneric Scope = "generic"
	// ScopeDomain rules run only against tables carrying domain metadata,
	// unless the rule narrows applicability further via AppliesTo.
	ScopeDomain Scope = "domain"
)

// Context carries the job-level configuration and aggregates a rule may
// consult. It is read-only for rules.
type Context struct {
	// Tolerance for percent-total checks, in percentage points.
	Tolerance float64
	// ClassifiedRows is the number of data rows that landed in a
	// recognized table (everything outside Unclassified).
	ClassifiedRows int
}

// EvalFunc is the pure evaluation contract of a rule. Implementations must
// not mutate the table; they read and report.
type EvalFunc func(t *types.LogicalTable, ctx Context) []types.Issue

// Rule is one validation rule. Severity is the severity the rule raises
// issues at; rules that escalate conditionally set severity per issue.
type Rule struct {
	ID       string
	Scope    Scope
	Severity types.Severity
	// AppliesTo optionally narrows which tables the rule evaluates.
	// Nil means scope-default applicability.
	AppliesTo func(t *types.LogicalTable) bool
	Eval      EvalFunc
}

// applies reports whether the rule should run against the table.
func (r Rule) applies(t *types.LogicalTable) bool {
	if r.AppliesTo != nil {
		return r.AppliesTo(t)
	}
	if r.Scope == ScopeDomain {
		return t.Domain != nil
	}
	return true
}

// Registry is an ordered collection of validation rules. Order is the
// order rules were registered in; issue ordering in the final report does
// not depend on it, but deterministic registries keep reports reproducible
// when rule IDs collide.
type Registry struct {
	rules []Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends rules to the registry.
func (g *Registry) Register(rules ...Rule) {
	g.rules = append(g.rules, rules...)
}

// Rules returns the registered rules in order.
func (g *Registry) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Len returns the number of registered rules.
func (g *Registry) Len() int { return len(g.rules) }
