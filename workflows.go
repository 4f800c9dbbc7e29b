package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rhysd/actionlint"

	"github.com/annotateci/annotate-runner/diagnostic"
	"github.com/annotateci/annotate-runner/protocol"
	"github.com/annotateci/annotate-runner/runner"
)

// LintWorkflows lints .github/workflows of the current repository with
// actionlint and reports every finding as an annotation, no subprocess
// involved.
func (run *RunRunner) LintWorkflows() int {
	logger := runner.NewLogger(run.Debug)
	settings := loadConfiguration()
	checkName := run.CheckName
	if checkName == "" {
		checkName = "actionlint"
	}
	linter, err := actionlint.NewLinter(io.Discard, &actionlint.LinterOptions{})
	if err != nil {
		fmt.Printf("Error: %v\n", err.Error())
		return 1
	}
	started := time.Now()
	lintErrors, err := linter.LintRepository(".")
	if err != nil {
		fmt.Printf("Error: %v\n", err.Error())
		return 1
	}
	result := &runner.RunResult{Duration: time.Since(started)}
	annotations := []protocol.Annotation{}
	for _, lintError := range lintErrors {
		diag := diagnostic.Diagnostic{
			Severity: diagnostic.SeverityError,
			File:     lintError.Filepath,
			Line:     int64(lintError.Line),
			Col:      int64(lintError.Column),
			Message:  lintError.Message,
			Code:     lintError.Kind,
		}
		result.Diagnostics = append(result.Diagnostics, diag)
		annotations = append(annotations, protocol.DiagnosticToAnnotation(diag))
	}
	emitter := buildEmitter(settings, checkName, run.Trace)
	ctx := context.Background()
	for _, batch := range runner.SplitBatches(annotations, protocol.MaxAnnotationsPerRequest) {
		if err := emitter.Emit(ctx, batch); err != nil {
			logger.Errorf("%v\n", err)
			result.EmitFailures++
		}
	}
	policy := &runner.ExitPolicy{}
	if err := emitter.Complete(ctx, policy.Conclusion(result), result); err != nil {
		logger.Errorf("Failed to complete the annotation run: %v\n", err)
	}
	if summary := os.Getenv(runner.SummaryPathVariable); summary != "" {
		if err := runner.WriteStepSummary(summary, result); err != nil {
			logger.Errorf("Failed to write the job summary: %v\n", err)
		}
	}
	logger.Infof("Linted the repository workflows in %v: %v\n", result.Duration.Round(0), result.Summary())
	return policy.Complete(result)
}
