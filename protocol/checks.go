package protocol

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MaxAnnotationsPerRequest is the Checks API limit for annotations in one
// update request. Larger sets are submitted in multiple requests.
const MaxAnnotationsPerRequest = 50

type CheckRunOutput struct {
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

type CheckRun struct {
	ID         int64           `json:"id,omitempty"`
	Name       string          `json:"name"`
	HeadSHA    string          `json:"head_sha,omitempty"`
	ExternalID string          `json:"external_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Conclusion string          `json:"conclusion,omitempty"`
	StartedAt  string          `json:"started_at,omitempty"`
	Output     *CheckRunOutput `json:"output,omitempty"`
}

type checkRunUpdate struct {
	Status      string          `json:"status,omitempty"`
	Conclusion  string          `json:"conclusion,omitempty"`
	CompletedAt string          `json:"completed_at,omitempty"`
	Output      *CheckRunOutput `json:"output,omitempty"`
}

// ChecksService creates and updates the check run holding the annotations
// of one tool invocation.
type ChecksService struct {
	Connection *GitHubConnection
	// Repository in owner/name form
	Repository string
}

func (cs *ChecksService) checkRunsURL(checkRunID string) (string, error) {
	if checkRunID == "" {
		return cs.Connection.BuildURL("repos/{repository}/check-runs", map[string]string{
			"repository": cs.Repository,
		}, nil)
	}
	return cs.Connection.BuildURL("repos/{repository}/check-runs/{checkRunId}", map[string]string{
		"repository": cs.Repository,
		"checkRunId": checkRunID,
	}, nil)
}

func (cs *ChecksService) CreateCheckRun(ctx context.Context, name, headSHA string) (*CheckRun, error) {
	checkRun := &CheckRun{
		Name:       name,
		HeadSHA:    headSHA,
		ExternalID: uuid.NewString(),
		Status:     "in_progress",
	}
	requestURL, err := cs.checkRunsURL("")
	if err != nil {
		return nil, err
	}
	if err := cs.Connection.RequestWithContext(ctx, "POST", requestURL, checkRun, checkRun); err != nil {
		return nil, fmt.Errorf("failed to create check run '%v': %w", name, err)
	}
	return checkRun, nil
}

// AppendAnnotations submits one batch of annotations. The Checks API
// appends annotations across update requests, earlier batches stay
// recorded when a later one fails.
func (cs *ChecksService) AppendAnnotations(ctx context.Context, checkRun *CheckRun, title, summary string, annotations []Annotation) error {
	if len(annotations) > MaxAnnotationsPerRequest {
		return fmt.Errorf("batch of %v annotations exceeds the limit of %v per request", len(annotations), MaxAnnotationsPerRequest)
	}
	requestURL, err := cs.checkRunsURL(fmt.Sprint(checkRun.ID))
	if err != nil {
		return err
	}
	update := &checkRunUpdate{
		Output: &CheckRunOutput{
			Title:       title,
			Summary:     summary,
			Annotations: annotations,
		},
	}
	return cs.Connection.RequestWithContext(ctx, "PATCH", requestURL, update, nil)
}

func (cs *ChecksService) CompleteCheckRun(ctx context.Context, checkRun *CheckRun, conclusion, title, summary string) error {
	requestURL, err := cs.checkRunsURL(fmt.Sprint(checkRun.ID))
	if err != nil {
		return err
	}
	update := &checkRunUpdate{
		Status:     "completed",
		Conclusion: conclusion,
		Output: &CheckRunOutput{
			Title:   title,
			Summary: summary,
		},
	}
	return cs.Connection.RequestWithContext(ctx, "PATCH", requestURL, update, nil)
}
