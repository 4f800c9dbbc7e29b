package runner

import (
	"fmt"
	"time"

	"github.com/annotateci/annotate-runner/diagnostic"
)

// RunResult is the outcome of one tool invocation. It is created once,
// after the subprocess terminated and all buffered output was parsed.
type RunResult struct {
	// ExitCode of the subprocess itself
	ExitCode int
	// Diagnostics in the order the tool emitted them, duplicates removed
	Diagnostics []diagnostic.Diagnostic
	Duration    time.Duration
	// EmitFailures counts batches which could not be delivered after retries
	EmitFailures int
}

func (result *RunResult) MaxSeverity() (diagnostic.Severity, bool) {
	found := false
	max := diagnostic.SeverityNote
	for _, diag := range result.Diagnostics {
		if !found || diag.Severity > max {
			max = diag.Severity
		}
		found = true
	}
	return max, found
}

func (result *RunResult) Count(severity diagnostic.Severity) int {
	count := 0
	for _, diag := range result.Diagnostics {
		if diag.Severity == severity {
			count++
		}
	}
	return count
}

func (result *RunResult) Summary() string {
	return fmt.Sprintf("%v errors, %v warnings, %v notes",
		result.Count(diagnostic.SeverityError),
		result.Count(diagnostic.SeverityWarning),
		result.Count(diagnostic.SeverityNote))
}
