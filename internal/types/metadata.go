package types

// DocumentMetadata describes the source document and how it was handled.
// Plugins fill the identification fields from page text; the pipeline
// fills the processing fields.
type DocumentMetadata struct {
	// Document identification.
	Title           string `json:"title,omitempty"`
	Organization    string `json:"organization,omitempty"`
	ReportingPeriod string `json:"reporting_period,omitempty"`
	Subject         string `json:"subject,omitempty"`

	// Processing metadata.
	PluginID         string  `json:"plugin_id,omitempty"`
	PluginVersion    string  `json:"plugin_version,omitempty"`
	PluginConfidence float64 `json:"plugin_confidence,omitempty"`
	Strategy         string  `json:"strategy,omitempty"`
}
