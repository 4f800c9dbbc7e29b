package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/annotateci/annotate-runner/protocol"
)

const emitMaxRetryAttempts = 3

// emitRetryDelay is the backoff base, doubled on every further retry
var emitRetryDelay = 1 * time.Second

// EmitError reports that a batch could not be delivered after all
// retries. Earlier batches stay recorded, later batches are still sent.
type EmitError struct {
	Annotations int
	Err         error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("failed to emit a batch of %v annotations after %v retries: %v", e.Annotations, emitMaxRetryAttempts, e.Err)
}

func (e *EmitError) Unwrap() error {
	return e.Err
}

// Emitter delivers annotation batches to GitHub.
type Emitter interface {
	Emit(ctx context.Context, annotations []protocol.Annotation) error
	Complete(ctx context.Context, conclusion string, result *RunResult) error
}

// SplitBatches splits annotations into chunks of at most limit entries.
func SplitBatches(annotations []protocol.Annotation, limit int) [][]protocol.Annotation {
	batches := [][]protocol.Annotation{}
	for len(annotations) > limit {
		batches = append(batches, annotations[:limit])
		annotations = annotations[limit:]
	}
	if len(annotations) > 0 {
		batches = append(batches, annotations)
	}
	return batches
}

// WorkflowCommandEmitter prints workflow commands to the step log, the
// annotation path used when running inside a GitHub Actions job without
// app credentials.
type WorkflowCommandEmitter struct {
	Out io.Writer
}

func (emitter *WorkflowCommandEmitter) Emit(ctx context.Context, annotations []protocol.Annotation) error {
	for i := range annotations {
		if _, err := fmt.Fprintln(emitter.Out, annotations[i].WorkflowCommand()); err != nil {
			return err
		}
	}
	return nil
}

func (emitter *WorkflowCommandEmitter) Complete(ctx context.Context, conclusion string, result *RunResult) error {
	return nil
}

// CheckRunEmitter submits annotations through the Checks API. The check
// run is created lazily on the first batch and completed at the end of
// the run.
type CheckRunEmitter struct {
	Checks    *protocol.ChecksService
	CheckName string
	HeadSHA   string

	checkRun *protocol.CheckRun
	// Emitted counts annotations of successfully delivered batches
	Emitted int
}

func (emitter *CheckRunEmitter) ensureCheckRun(ctx context.Context) error {
	if emitter.checkRun != nil {
		return nil
	}
	checkRun, err := emitter.Checks.CreateCheckRun(ctx, emitter.CheckName, emitter.HeadSHA)
	if err != nil {
		return err
	}
	emitter.checkRun = checkRun
	return nil
}

func (emitter *CheckRunEmitter) Emit(ctx context.Context, annotations []protocol.Annotation) error {
	if err := emitter.ensureCheckRun(ctx); err != nil {
		return &EmitError{Annotations: len(annotations), Err: err}
	}
	for _, batch := range SplitBatches(annotations, protocol.MaxAnnotationsPerRequest) {
		var lastErr error
		delivered := false
		// One initial attempt plus emitMaxRetryAttempts retries with
		// exponential backoff
		for attempt := 0; attempt <= emitMaxRetryAttempts; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return &EmitError{Annotations: len(batch), Err: ctx.Err()}
				case <-time.After(emitRetryDelay * (1 << (attempt - 1))):
				}
			}
			lastErr = emitter.Checks.AppendAnnotations(ctx, emitter.checkRun, emitter.CheckName, "in progress", batch)
			if lastErr == nil {
				delivered = true
				break
			}
		}
		if !delivered {
			return &EmitError{Annotations: len(batch), Err: lastErr}
		}
		emitter.Emitted += len(batch)
	}
	return nil
}

func (emitter *CheckRunEmitter) Complete(ctx context.Context, conclusion string, result *RunResult) error {
	if err := emitter.ensureCheckRun(ctx); err != nil {
		return err
	}
	return emitter.Checks.CompleteCheckRun(ctx, emitter.checkRun, conclusion, emitter.CheckName, result.Summary())
}
