package entity

// Severity classifies a source status report.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	// SeverityEmpty marks a feed that was read successfully but had no entries.
	SeverityEmpty Severity = "empty"
)

// StatusReport describes why a source produced no articles in a run.
type StatusReport struct {
	SourceName string
	SourceURL  string
	Severity   Severity
	Message    string
	// Hint is an optional operator-facing diagnostic, e.g. for feed proxies.
	Hint string
}
