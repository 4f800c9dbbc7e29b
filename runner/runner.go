package runner

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/annotateci/annotate-runner/diagnostic"
	"github.com/annotateci/annotate-runner/protocol"
)

// flushWindow is how long the emit worker collects diagnostics before
// sending a batch, so bursts end up in few requests.
const flushWindow = 1 * time.Second

type plainTextFormatter struct {
}

func (f *plainTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(entry.Time.UTC().Format("2006-01-02T15:04:05.0000000Z07:00") + " " + entry.Message + "\n"), nil
}

func NewLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&plainTextFormatter{})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// AnnotateRunner wires the three pipeline workers together: the invoker
// reading the child process, the parser and the annotation emitter. The
// workers communicate through bounded channels only.
type AnnotateRunner struct {
	Invoker *Invoker
	Grammar diagnostic.Grammar
	Emitter Emitter
	Policy  *ExitPolicy
	// SummaryPath receives the Markdown job summary when not empty
	SummaryPath string
	Log         *logrus.Logger
}

type invokerResult struct {
	exitCode int
	err      error
}

// Run executes the tool and returns once the subprocess terminated, all
// buffered output was parsed and every produced annotation was emitted
// or given up on. Cancelling ctx kills the subprocess, diagnostics
// parsed until then are still emitted.
func (r *AnnotateRunner) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()
	lines := make(chan string, LineChannelSize)
	diags := make(chan diagnostic.Diagnostic, diagnostic.DiagnosticChannelSize)

	exited := make(chan invokerResult, 1)
	go func() {
		exitCode, err := r.Invoker.Run(ctx, lines)
		exited <- invokerResult{exitCode: exitCode, err: err}
	}()

	parser := &diagnostic.Parser{Grammar: r.Grammar, Log: r.Log}
	go parser.Run(lines, diags)

	result := &RunResult{}
	seen := map[string]bool{}
	// The emitter must not use the run context, annotations of a
	// cancelled run are still delivered.
	emitCtx := context.Background()
	for {
		diag, ok := <-diags
		if !ok {
			break
		}
		pending := r.collect(result, seen, nil, diag)
		st := time.Now()
		for {
			brk := false
			div := time.Since(st)
			if div > flushWindow {
				break
			}
			select {
			case diag, ok := <-diags:
				if ok {
					pending = r.collect(result, seen, pending, diag)
					if len(pending) >= protocol.MaxAnnotationsPerRequest {
						brk = true
					}
				} else {
					brk = true
				}
			case <-time.After(flushWindow - div):
				brk = true
			}
			if brk {
				break
			}
		}
		r.emit(emitCtx, result, pending)
	}

	invoked := <-exited
	result.ExitCode = invoked.exitCode
	result.Duration = time.Since(started)
	if invoked.err != nil {
		return result, invoked.err
	}

	conclusion := r.Policy.Conclusion(result)
	if err := r.Emitter.Complete(emitCtx, conclusion, result); err != nil {
		r.Log.Errorf("Failed to complete the annotation run: %v\n", err)
		result.EmitFailures++
	}
	if r.SummaryPath != "" {
		if err := WriteStepSummary(r.SummaryPath, result); err != nil {
			r.Log.Errorf("Failed to write the job summary: %v\n", err)
		}
	}
	return result, nil
}

func (r *AnnotateRunner) collect(
	result *RunResult, seen map[string]bool, pending []protocol.Annotation, diag diagnostic.Diagnostic,
) []protocol.Annotation {
	if seen[diag.Key()] {
		return pending
	}
	seen[diag.Key()] = true
	result.Diagnostics = append(result.Diagnostics, diag)
	return append(pending, protocol.DiagnosticToAnnotation(diag))
}

func (r *AnnotateRunner) emit(ctx context.Context, result *RunResult, pending []protocol.Annotation) {
	if len(pending) == 0 {
		return
	}
	if err := r.Emitter.Emit(ctx, pending); err != nil {
		r.Log.Errorf("%v\n", err)
		result.EmitFailures++
	}
}
