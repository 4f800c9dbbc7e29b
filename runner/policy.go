package runner

import (
	"github.com/annotateci/annotate-runner/diagnostic"
)

type policyState int

const (
	stateRunning policyState = iota
	stateCompleted
)

// ExitPolicy decides the runner's own exit code once the run completed.
// Any Error diagnostic fails the run regardless of flags. Warnings fail
// unless AllowWarnings is set. Without diagnostics the subprocess exit
// status is passed through.
type ExitPolicy struct {
	AllowWarnings bool

	state    policyState
	exitCode int
}

func (policy *ExitPolicy) threshold() diagnostic.Severity {
	if policy.AllowWarnings {
		return diagnostic.SeverityError
	}
	return diagnostic.SeverityWarning
}

// Complete transitions the policy to its final state and returns the exit
// code. Further calls return the same code.
func (policy *ExitPolicy) Complete(result *RunResult) int {
	if policy.state == stateCompleted {
		return policy.exitCode
	}
	policy.state = stateCompleted
	policy.exitCode = 0
	if max, ok := result.MaxSeverity(); ok && max >= policy.threshold() {
		policy.exitCode = 1
	} else if result.ExitCode != 0 {
		policy.exitCode = result.ExitCode
	}
	return policy.exitCode
}

// Conclusion maps the final state to a check run conclusion.
func (policy *ExitPolicy) Conclusion(result *RunResult) string {
	if policy.Complete(result) != 0 {
		return "failure"
	}
	if result.Count(diagnostic.SeverityWarning) > 0 {
		return "neutral"
	}
	return "success"
}
