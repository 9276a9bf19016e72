package ir

// Version constants for report schema and tool.
const (
	// ReportVersion is the report schema version.
	ReportVersion = "1"

	// ToolVersion is the tinv version.
	ToolVersion = "0.1.0"
)
