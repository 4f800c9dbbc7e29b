package diagnostic

import (
	"encoding/json"
	"strings"
)

// RustfmtGrammar parses the JSON mismatch reports emitted by
// `cargo fmt --message-format=json`. Every mismatch becomes a Warning
// diagnostic whose message holds the expected formatting.
type RustfmtGrammar struct {
	// Workdir is stripped from the reported absolute file names so that
	// annotations use repository relative paths.
	Workdir string
}

type formatMismatch struct {
	OriginalBeginLine int64  `json:"original_begin_line"`
	OriginalEndLine   int64  `json:"original_end_line"`
	Original          string `json:"original"`
	Expected          string `json:"expected"`
}

type formatMismatches struct {
	Name       string           `json:"name"`
	Mismatches []formatMismatch `json:"mismatches"`
}

func (*RustfmtGrammar) Name() string {
	return "rustfmt"
}

func (g *RustfmtGrammar) Parse(line string) ([]Diagnostic, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, ErrNoMatch
	}
	var files []formatMismatches
	if err := json.Unmarshal([]byte(trimmed), &files); err != nil {
		return nil, ErrNoMatch
	}
	diags := []Diagnostic{}
	for _, file := range files {
		name := strings.TrimPrefix(strings.TrimPrefix(file.Name, g.Workdir), "/")
		for _, mismatch := range file.Mismatches {
			if mismatch.Expected == "" {
				continue
			}
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				File:     name,
				Line:     mismatch.OriginalBeginLine,
				EndLine:  mismatch.OriginalEndLine,
				Title:    "Format mismatch",
				Message:  mismatch.Expected,
			})
		}
	}
	if len(diags) == 0 {
		return nil, ErrNoMatch
	}
	return diags, nil
}
