package logging

// LogEntry represents a structured log record with fields particularly
// relevant to optimization runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields
	RunID     string  // Identifier of the optimization run
	Iteration int     // Loop iteration the entry belongs to, if any
	Latency   int64   // Operation duration in milliseconds
	Cost      float64 // Operation cost in dollars

	// General structured data
	Fields map[string]interface{}
}
