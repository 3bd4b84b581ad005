// Package pipeline orchestrates one conversion job: detect the document
// type, segment logical tables, validate, and hand the result to output
// collaborators.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docutura/docutura/internal/config"
	"github.com/docutura/docutura/internal/extract"
	"github.com/docutura/docutura/internal/plugins"
	"github.com/docutura/docutura/internal/segment"
	"github.com/docutura/docutura/internal/types"
	"github.com/docutura/docutura/internal/validate"
)

// ErrNoRows is the only data-level condition that fails a conversion:
// the extraction collaborator produced no rows at all. Everything else
// completes and is reported through the validation report.
var ErrNoRows = errors.New("extraction produced no rows")

// Writer renders a conversion result to some output format. Rendering is
// an external collaborator concern: writer failures are logged and never
// fail the job, and a report full of issues never gates writing.
type Writer interface {
	Name() string
	Write(ctx context.Context, res *Result) error
}

// AuditSink records a conversion result for the audit trail. Persistence
// is the sink's concern, not the pipeline's.
type AuditSink interface {
	Record(ctx context.Context, res *Result) error
}

// Runner executes conversion jobs. Runners hold no per-job state and are
// safe to share across worker goroutines.
type Runner struct {
	cfg     *config.Config
	plugins *plugins.Registry
	writers []Writer
	audit   AuditSink
	logger  *slog.Logger
}

// RunnerConfig configures a pipeline runner.
type RunnerConfig struct {
	Config  *config.Config
	Plugins *plugins.Registry
	Writers []Writer
	Audit   AuditSink
	Logger  *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conf := cfg.Config
	if conf == nil {
		conf = config.DefaultConfig()
	}
	reg := cfg.Plugins
	if reg == nil {
		reg = plugins.NewDefaultRegistry(logger)
	}
	return &Runner{
		cfg:     conf,
		plugins: reg,
		writers: cfg.Writers,
		audit:   cfg.Audit,
		logger:  logger,
	}
}

// Convert runs one conversion job over an interchange document.
//
// Configuration errors (malformed strategy, unknown forced plugin) are
// fatal and raised before any row is processed. Data anomalies never are:
// they become validation issues and the job completes with a report.
func (r *Runner) Convert(ctx context.Context, doc *extract.Document) (*Result, error) {
	start := time.Now()

	if doc == nil || doc.RowCount() == 0 {
		return nil, ErrNoRows
	}

	res := &Result{
		JobID:     uuid.New().String(),
		Source:    doc.Source,
		InputHash: hashDocument(doc),
		Mode:      r.cfg.Extraction.Mode,
		StartedAt: start.UTC(),
	}
	log := r.logger.With("job", res.JobID)

	pages := doc.PageTables()
	in := plugins.Input{Pages: pages, PageTexts: doc.PageTexts()}

	// Document-type detection selects the strategy/rule-set pair.
	plugin, detection, err := r.selectPlugin(in)
	if err != nil {
		return nil, err
	}

	strategy := segment.Passthrough()
	registry := validate.NewDefaultRegistry()
	if plugin != nil {
		strategy = plugin.Strategy(in)
		registry.Register(plugin.Rules()...)
		res.Detection = &detection
		res.Metadata = plugin.Metadata(in)
		res.Metadata.PluginConfidence = detection.Confidence
		log.Info("plugin detected", "plugin", plugin.ID(), "confidence", detection.Confidence)
	} else {
		log.Info("no plugin detected, using passthrough segmentation")
	}
	if res.Metadata.Title == "" {
		res.Metadata.Title = doc.Title
	}
	res.Metadata.Strategy = string(strategy.Kind)

	seg, err := segment.Segment(pages, strategy)
	if err != nil {
		return nil, fmt.Errorf("segmentation: %w", err)
	}
	// Mode controls which table views ride in the result; validation
	// always runs over the logical view.
	res.Pages = seg.Pages
	res.Logical = seg.Logical
	switch r.cfg.Extraction.Mode {
	case config.ModePageOnly:
		res.Logical = nil
	case config.ModeLogicalOnly:
		res.Pages = nil
	}
	log.Debug("segmented",
		"strategy", strategy.Kind,
		"page_tables", len(seg.Pages),
		"logical_tables", len(seg.Logical),
		"anomalies", len(seg.Anomalies))

	if r.cfg.Validation.Enabled {
		engine := validate.NewEngine(validate.EngineConfig{
			Registry:  registry,
			Tolerance: r.cfg.Validation.Tolerance,
			Workers:   r.cfg.Validation.Workers,
			Logger:    log,
		})
		res.Report = engine.Validate(ctx, seg.Logical, seg.Anomalies...)
		log.Info("validated",
			"errors", res.Report.ErrorCount(),
			"warnings", res.Report.WarningCount(),
			"passed", res.Report.AllPassed())
	} else {
		res.Report = &types.Report{}
	}

	res.Elapsed = time.Since(start).Seconds()

	// Writers render whatever the job produced; the report rides along
	// but never blocks output.
	for _, w := range r.writers {
		if err := w.Write(ctx, res); err != nil {
			log.Warn("writer failed", "writer", w.Name(), "error", err)
		}
	}
	if r.audit != nil {
		if err := r.audit.Record(ctx, res); err != nil {
			log.Warn("audit record failed", "error", err)
		}
	}

	return res, nil
}

// selectPlugin resolves the document-type plugin: a forced plugin id wins,
// otherwise confidence-scored detection. A nil plugin means passthrough.
func (r *Runner) selectPlugin(in plugins.Input) (plugins.Plugin, plugins.Detection, error) {
	if force := r.cfg.Plugins.Force; force != "" {
		p, ok := r.plugins.Get(force)
		if !ok {
			return nil, plugins.Detection{}, fmt.Errorf("forced plugin %q is not registered", force)
		}
		return p, plugins.Detection{PluginID: p.ID(), Confidence: 1.0}, nil
	}
	p, det, ok := r.plugins.Detect(in, r.cfg.Plugins.MinConfidence)
	if !ok {
		return nil, plugins.Detection{}, nil
	}
	return p, det, nil
}

// hashDocument fingerprints the interchange document for the audit trail.
func hashDocument(doc *extract.Document) string {
	data, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
