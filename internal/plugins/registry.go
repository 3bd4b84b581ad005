// Package plugins implements document-type detection.
//
// Each plugin inspects the raw extraction output and reports how confident
// it is that it recognizes the document. The winning plugin supplies the
// segmentation strategy, the domain rule set, and document metadata as
// plain data; the segmentation and validation engines never call back into
// a plugin.
package plugins

import (
	"log/slog"

	"github.com/docutura/docutura/internal/segment"
	"github.com/docutura/docutura/internal/types"
	"github.com/docutura/docutura/internal/validate"
)

// Input is the raw extraction output a plugin inspects during detection.
type Input struct {
	Pages     []types.PageTable
	PageTexts []string // Free text per page, page-ordered
}

// Detection is the result of one plugin's Detect call.
type Detection struct {
	PluginID   string            `json:"plugin_id"`
	Confidence float64           `json:"confidence"` // 0.0 to 1.0
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Plugin recognizes one document family and configures its processing.
type Plugin interface {
	// ID returns the unique plugin identifier.
	ID() string
	// Version returns the plugin version.
	Version() string
	// Detect scores how confidently the plugin recognizes the input.
	Detect(in Input) Detection
	// Strategy returns the segmentation strategy for a recognized input.
	Strategy(in Input) segment.Strategy
	// Rules returns the plugin's domain validation rules.
	Rules() []validate.Rule
	// Metadata extracts document metadata from a recognized input.
	Metadata(in Input) types.DocumentMetadata
}

// DefaultMinConfidence is the detection threshold applied when the config
// leaves it unset.
const DefaultMinConfidence = 0.5

// Registry holds the registered plugins in registration order.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger
}

// NewRegistry creates a plugin registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// NewDefaultRegistry returns a registry with the built-in plugins.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	reg := NewRegistry(logger)
	reg.Register(NewMarksDistributionPlugin(), NewStaffListPlugin())
	return reg
}

// Register appends plugins to the registry.
func (r *Registry) Register(plugins ...Plugin) {
	r.plugins = append(r.plugins, plugins...)
}

// Get returns a plugin by id.
func (r *Registry) Get(id string) (Plugin, bool) {
	for _, p := range r.plugins {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// IDs lists the registered plugin ids in order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		ids = append(ids, p.ID())
	}
	return ids
}

// Detect runs every plugin against the input and returns the most
// confident one at or above minConfidence. Ties go to the earlier
// registration. A plugin that panics during detection is skipped; one
// broken plugin never prevents the others from being tried.
func (r *Registry) Detect(in Input, minConfidence float64) (Plugin, Detection, bool) {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	var (
		best       Plugin
		bestResult Detection
	)
	for _, p := range r.plugins {
		det, ok := r.detectOne(p, in)
		if !ok {
			continue
		}
		if det.Confidence < minConfidence {
			continue
		}
		if best == nil || det.Confidence > bestResult.Confidence {
			best = p
			bestResult = det
		}
	}
	if best == nil {
		return nil, Detection{}, false
	}
	return best, bestResult, true
}

func (r *Registry) detectOne(p Plugin, in Input) (det Detection, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("plugin detection failed", "plugin", p.ID(), "panic", rec)
			ok = false
		}
	}()
	return p.Detect(in), true
}

// headerOf returns the effective header row of a page table: the declared
// header when the extractor detected one, otherwise the first row.
func headerOf(p types.PageTable) []string {
	if len(p.Header) > 0 {
		return p.Header
	}
	if len(p.Rows) > 0 {
		return p.Rows[0].Cells
	}
	return nil
}
