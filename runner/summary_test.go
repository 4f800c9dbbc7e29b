package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annotateci/annotate-runner/diagnostic"
)

func TestWriteStepSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	result := &RunResult{Diagnostics: []diagnostic.Diagnostic{
		{Severity: diagnostic.SeverityError, File: "src/lib.rs", Line: 10, Message: "mismatched types"},
		{Severity: diagnostic.SeverityWarning, File: "src/main.rs", Line: 2, Title: "Format mismatch", Message: "fn main() {\n}"},
	}}
	assert.NoError(t, WriteStepSummary(path, result))

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t,
		"> **TOTAL:** 1 errors, 1 warnings, 0 notes\n\n"+
			"|Level|Message|Location|\n|:--|:--|--:|\n"+
			"|:x: error|mismatched types|`src/lib.rs:10`|\n"+
			"|:warning: warning|Format mismatch|`src/main.rs:2`|\n",
		string(content))
}

func TestWriteStepSummaryWithoutDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	assert.NoError(t, WriteStepSummary(path, &RunResult{}))
	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "> **TOTAL:** 0 errors, 0 warnings, 0 notes\n\n", string(content))
}

func TestSummaryCell(t *testing.T) {
	assert.Equal(t, `a \| b`, summaryCell("a | b"))
	assert.Equal(t, "first line", summaryCell("first line\nsecond line"))
}
