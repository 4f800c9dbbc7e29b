package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRustfmtGrammar(t *testing.T) {
	grammar := &RustfmtGrammar{Workdir: "/home/runner/work/demo"}
	diags, err := grammar.Parse(`[{"name":"/home/runner/work/demo/src/main.rs","mismatches":[{"original_begin_line":2,"original_end_line":4,"original":"fn main () {\nprintln!(\"hi\");\n}","expected":"fn main() {\n    println!(\"hi\");\n}"}]}]`)
	assert.NoError(t, err)
	assert.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "src/main.rs", diags[0].File)
	assert.Equal(t, int64(2), diags[0].Line)
	assert.Equal(t, int64(4), diags[0].EndLine)
	assert.Equal(t, "Format mismatch", diags[0].Title)
	assert.Contains(t, diags[0].Message, "fn main() {")
}

func TestRustfmtGrammarMultipleFiles(t *testing.T) {
	grammar := &RustfmtGrammar{}
	diags, err := grammar.Parse(`[{"name":"src/a.rs","mismatches":[{"original_begin_line":1,"original_end_line":1,"expected":"a"}]},{"name":"src/b.rs","mismatches":[{"original_begin_line":5,"original_end_line":6,"expected":"b"},{"original_begin_line":9,"original_end_line":9,"expected":"c"}]}]`)
	assert.NoError(t, err)
	assert.Len(t, diags, 3)
	assert.Equal(t, "src/a.rs", diags[0].File)
	assert.Equal(t, "src/b.rs", diags[1].File)
	assert.Equal(t, int64(9), diags[2].Line)
}

func TestRustfmtGrammarSkipsNonDiagnostics(t *testing.T) {
	grammar := &RustfmtGrammar{}
	for _, line := range []string{
		"Diff in src/main.rs at line 2:",
		"[]",
		`[{"name":"src/main.rs","mismatches":[]}]`,
		"[not json",
	} {
		diags, err := grammar.Parse(line)
		if err != ErrNoMatch {
			t.FailNow()
		}
		if diags != nil {
			t.FailNow()
		}
	}
}
