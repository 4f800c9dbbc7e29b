package protocol

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func checksTestServer(t *testing.T, requests *[]*CheckRun) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/repos/octo/demo/check-runs":
			checkRun := &CheckRun{}
			if err := json.NewDecoder(r.Body).Decode(checkRun); err != nil {
				t.Error(err)
			}
			checkRun.ID = 42
			*requests = append(*requests, checkRun)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(checkRun)
		case r.Method == "PATCH" && r.URL.Path == "/repos/octo/demo/check-runs/42":
			update := &CheckRun{}
			if err := json.NewDecoder(r.Body).Decode(update); err != nil {
				t.Error(err)
			}
			update.ID = 42
			*requests = append(*requests, update)
			_ = json.NewEncoder(w).Encode(update)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCreateCheckRun(t *testing.T) {
	requests := []*CheckRun{}
	server := checksTestServer(t, &requests)
	defer server.Close()

	cs := &ChecksService{
		Connection: &GitHubConnection{APIURL: server.URL, Token: "token"},
		Repository: "octo/demo",
	}
	checkRun, err := cs.CreateCheckRun(context.Background(), "cargo check", "deadbeef")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), checkRun.ID)
	assert.Len(t, requests, 1)
	assert.Equal(t, "cargo check", requests[0].Name)
	assert.Equal(t, "deadbeef", requests[0].HeadSHA)
	assert.Equal(t, "in_progress", requests[0].Status)
	assert.NotEmpty(t, requests[0].ExternalID)
}

func TestAppendAnnotations(t *testing.T) {
	requests := []*CheckRun{}
	server := checksTestServer(t, &requests)
	defer server.Close()

	cs := &ChecksService{
		Connection: &GitHubConnection{APIURL: server.URL, Token: "token"},
		Repository: "octo/demo",
	}
	annotations := []Annotation{
		{Path: "src/lib.rs", StartLine: 10, EndLine: 10, Level: FAILURE, Message: "mismatched types"},
	}
	err := cs.AppendAnnotations(context.Background(), &CheckRun{ID: 42}, "cargo check", "in progress", annotations)
	assert.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.Equal(t, annotations, requests[0].Output.Annotations)
	assert.Equal(t, "cargo check", requests[0].Output.Title)
}

func TestAppendAnnotationsRejectsOversizedBatch(t *testing.T) {
	cs := &ChecksService{}
	annotations := make([]Annotation, MaxAnnotationsPerRequest+1)
	err := cs.AppendAnnotations(context.Background(), &CheckRun{ID: 42}, "t", "s", annotations)
	assert.Error(t, err)
}

func TestCompleteCheckRun(t *testing.T) {
	requests := []*CheckRun{}
	server := checksTestServer(t, &requests)
	defer server.Close()

	cs := &ChecksService{
		Connection: &GitHubConnection{APIURL: server.URL, Token: "token"},
		Repository: "octo/demo",
	}
	err := cs.CompleteCheckRun(context.Background(), &CheckRun{ID: 42}, "failure", "cargo check", "1 errors, 0 warnings, 0 notes")
	assert.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.Equal(t, "completed", requests[0].Status)
	assert.Equal(t, "failure", requests[0].Conclusion)
	assert.Equal(t, "1 errors, 0 warnings, 0 notes", requests[0].Output.Summary)
}

func TestBuildURL(t *testing.T) {
	con := &GitHubConnection{APIURL: "https://github.example.com/api/v3"}
	url, err := con.BuildURL("repos/{repository}/check-runs/{checkRunId}", map[string]string{
		"repository": "octo/demo",
		"checkRunId": "42",
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "https://github.example.com/api/v3/repos/octo/demo/check-runs/42", url)

	url, err = con.BuildURL("repos/{repository}/check-runs/{checkRunId}", map[string]string{
		"repository": "octo/demo",
	}, map[string]string{"per_page": "100"})
	assert.NoError(t, err)
	assert.Equal(t, "https://github.example.com/api/v3/repos/octo/demo/check-runs?per_page=100", url)
}
