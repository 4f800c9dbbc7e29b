package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLinePattern(t *testing.T) {
	grammar, err := NewRegexGrammar("line", DefaultLinePattern)
	assert.NoError(t, err)

	table := []struct {
		Line     string
		Expected Diagnostic
	}{
		{
			Line: "error: src/lib.rs:10:5: unused variable",
			Expected: Diagnostic{
				Severity: SeverityError,
				File:     "src/lib.rs",
				Line:     10,
				EndLine:  10,
				Col:      5,
				EndCol:   5,
				Message:  "unused variable",
			},
		},
		{
			Line: "warning: Makefile:3: missing separator",
			Expected: Diagnostic{
				Severity: SeverityWarning,
				File:     "Makefile",
				Line:     3,
				EndLine:  3,
				Message:  "missing separator",
			},
		},
		{
			Line: "note: src/main.rs:1:1: consider removing this import",
			Expected: Diagnostic{
				Severity: SeverityNote,
				File:     "src/main.rs",
				Line:     1,
				EndLine:  1,
				Col:      1,
				EndCol:   1,
				Message:  "consider removing this import",
			},
		},
	}
	for _, i := range table {
		diags, err := grammar.Parse(i.Line)
		assert.NoError(t, err, i.Line)
		assert.Len(t, diags, 1, i.Line)
		assert.Equal(t, i.Expected, diags[0], i.Line)
	}
}

func TestDefaultLinePatternNoMatch(t *testing.T) {
	grammar, err := NewRegexGrammar("line", DefaultLinePattern)
	assert.NoError(t, err)
	for _, line := range []string{
		"Compiling demo v0.1.0",
		"error without location",
		"fatal: src/lib.rs:10:5: unknown severity word",
	} {
		_, err := grammar.Parse(line)
		assert.ErrorIs(t, err, ErrNoMatch, line)
	}
}

func TestNewRegexGrammarValidation(t *testing.T) {
	_, err := NewRegexGrammar("bad", `(?P<severity>\w+) (?P<file>\S+)`)
	assert.Error(t, err)
	_, err = NewRegexGrammar("broken", `(?P<severity>`)
	assert.Error(t, err)
}

func TestRegexGrammarCustomGroups(t *testing.T) {
	grammar, err := NewRegexGrammar("gcc", `^(?P<file>[^:]+):(?P<line>\d+):(?P<col>\d+): (?P<severity>error|warning|note): (?P<message>.+?)(?: \[(?P<code>[-\w]+)\])?$`)
	assert.NoError(t, err)
	diags, err := grammar.Parse("main.c:7:2: warning: unused variable 'x' [-Wunused-variable]")
	assert.NoError(t, err)
	assert.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "main.c", diags[0].File)
	assert.Equal(t, int64(7), diags[0].Line)
	assert.Equal(t, int64(2), diags[0].Col)
	assert.Equal(t, "unused variable 'x'", diags[0].Message)
	assert.Equal(t, "-Wunused-variable", diags[0].Code)
}
