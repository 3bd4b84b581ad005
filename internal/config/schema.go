package config

// Extraction modes: which table views a conversion emits.
const (
	ModeHybrid      = "hybrid"       // Page-preserved + logical tables (default)
	ModePageOnly    = "page_only"    // Only page-preserved tables
	ModeLogicalOnly = "logical_only" // Only logical tables
)

// Config holds docutura configuration.
// Loaded from ./config.yaml or ~/.docutura/config.yaml.
type Config struct {
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction"`
	Validation ValidationCfg `mapstructure:"validation" yaml:"validation"`
	Plugins    PluginsCfg    `mapstructure:"plugins" yaml:"plugins"`
	Theme      string        `mapstructure:"theme" yaml:"theme"` // Passed through to output writers
}

// ExtractionCfg configures which table views a job produces.
type ExtractionCfg struct {
	Mode string `mapstructure:"mode" yaml:"mode"` // hybrid, page_only, logical_only
}

// ValidationCfg configures the validation engine.
type ValidationCfg struct {
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"` // Percent-total tolerance, percentage points
	Workers   int     `mapstructure:"workers" yaml:"workers"`     // Concurrent table evaluations
}

// PluginsCfg configures document-type detection.
type PluginsCfg struct {
	// MinConfidence is the detection threshold below which a job falls
	// back to passthrough segmentation.
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	// Force pins a plugin id, skipping detection. Empty means detect.
	Force string `mapstructure:"force" yaml:"force"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionCfg{
			Mode: ModeHybrid,
		},
		Validation: ValidationCfg{
			Enabled:   true,
			Tolerance: 0.02,
			Workers:   4,
		},
		Plugins: PluginsCfg{
			MinConfidence: 0.5,
		},
		Theme: "corporate",
	}
}

// ValidMode reports whether mode names a known extraction mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeHybrid, ModePageOnly, ModeLogicalOnly:
		return true
	}
	return false
}
