package validate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/docutura/docutura/internal/types"
)

// Engine evaluates a rule registry against logical tables. It is strictly
// read-only over its inputs and safe for concurrent use.
type Engine struct {
	registry  *Registry
	tolerance float64
	workers   int
	logger    *slog.Logger
}

// EngineConfig configures a validation engine.
type EngineConfig struct {
	Registry *Registry
	// Tolerance for percent-total checks, in percentage points (default 0.02).
	Tolerance float64
	// Workers bounds concurrent table evaluation (default GOMAXPROCS).
	Workers int
	Logger  *slog.Logger
}

// DefaultTolerance is the percent-total tolerance applied when the config
// leaves it unset, in percentage points.
const DefaultTolerance = 0.02

// NewEngine creates a validation engine.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{registry: reg, tolerance: tol, workers: workers, logger: logger}
}

// Validate runs every applicable rule against every logical table and
// returns the report. Seed issues (anomalies recorded during segmentation)
// are folded in before ordering.
//
// Rules never mutate shared state, so tables are evaluated concurrently;
// the final issue ordering is nonetheless deterministic (table id, rule
// id, row location) so identical inputs yield byte-identical reports.
func (e *Engine) Validate(ctx context.Context, tables []types.LogicalTable, seed ...types.Issue) *types.Report {
	rctx := Context{
		Tolerance:      e.tolerance,
		ClassifiedRows: classifiedRows(tables),
	}

	perTable := make([][]types.Issue, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range tables {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			perTable[i] = e.validateTable(&tables[i], rctx)
			return nil
		})
	}
	// Rules return no errors; only context cancellation can surface here.
	if err := g.Wait(); err != nil {
		e.logger.Debug("validation interrupted", "error", err)
	}

	issues := make([]types.Issue, 0, len(seed))
	issues = append(issues, seed...)
	for _, tis := range perTable {
		issues = append(issues, tis...)
	}
	types.SortIssues(issues)

	report := &types.Report{
		Issues: issues,
		Tables: make([]types.TableResult, 0, len(tables)),
	}
	failed := make(map[string]bool)
	for _, is := range issues {
		if is.Severity == types.SeverityError {
			failed[is.TableID] = true
		}
	}
	for _, t := range tables {
		report.Tables = append(report.Tables, types.TableResult{
			TableID: t.ID,
			Passed:  !failed[t.ID],
		})
	}
	return report
}

// validateTable runs all applicable rules against one table. A rule that
// panics is contained at the per-rule boundary and converted into a single
// internal-failure issue, so one broken rule never prevents other rules or
// other tables from being evaluated.
func (e *Engine) validateTable(t *types.LogicalTable, rctx Context) []types.Issue {
	var issues []types.Issue
	for _, rule := range e.registry.Rules() {
		if !rule.applies(t) {
			continue
		}
		issues = append(issues, e.evalRule(rule, t, rctx)...)
	}
	return issues
}

func (e *Engine) evalRule(rule Rule, t *types.LogicalTable, rctx Context) (issues []types.Issue) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule evaluation failed",
				"rule", rule.ID, "table", t.ID, "panic", r)
			issues = []types.Issue{{
				RuleID:   rule.ID,
				Severity: types.SeverityError,
				TableID:  t.ID,
				Message:  fmt.Sprintf("internal rule failure: %v", r),
			}}
		}
	}()
	return rule.Eval(t, rctx)
}

// classifiedRows counts data rows attributed to a recognized table.
func classifiedRows(tables []types.LogicalTable) int {
	n := 0
	for _, t := range tables {
		if !t.IsUnclassified() {
			n += len(t.Rows)
		}
	}
	return n
}
