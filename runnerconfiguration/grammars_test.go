package runnerconfiguration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annotateci/annotate-runner/diagnostic"
)

func writeGrammarFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "grammars.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRegisterGrammarFile(t *testing.T) {
	path := writeGrammarFile(t, `
grammars:
- name: eslint
  pattern: '^(?P<file>\S+): line (?P<line>\d+), col (?P<col>\d+), (?P<severity>Error|Warning) - (?P<message>.+)$'
`)
	assert.NoError(t, RegisterGrammarFile(path))

	grammar, err := diagnostic.Lookup("eslint")
	assert.NoError(t, err)
	diags, err := grammar.Parse("src/app.js: line 12, col 4, Error - 'x' is not defined")
	assert.NoError(t, err)
	assert.Len(t, diags, 1)
	assert.Equal(t, diagnostic.SeverityError, diags[0].Severity)
	assert.Equal(t, "src/app.js", diags[0].File)
	assert.Equal(t, int64(12), diags[0].Line)
	assert.Equal(t, int64(4), diags[0].Col)
}

func TestRegisterGrammarFileRejectsInvalidInput(t *testing.T) {
	table := []struct {
		Name    string
		Content string
	}{
		{
			Name:    "empty file",
			Content: "grammars: []",
		},
		{
			Name: "missing name",
			Content: `
grammars:
- pattern: '^(?P<severity>error): (?P<file>\S+):(?P<line>\d+): (?P<message>.+)$'
`,
		},
		{
			Name: "missing required group",
			Content: `
grammars:
- name: broken
  pattern: '^(?P<severity>error): (?P<message>.+)$'
`,
		},
		{
			Name:    "not yaml",
			Content: "{{{",
		},
	}
	for _, i := range table {
		path := writeGrammarFile(t, i.Content)
		assert.Error(t, RegisterGrammarFile(path), i.Name)
	}
}
