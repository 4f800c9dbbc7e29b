package diagnostic

import (
	"encoding/json"
	"strings"
)

// RustcGrammar parses the JSON diagnostics emitted by
// `cargo check|clippy|build --message-format=json`. Both the bare rustc
// diagnostic object and the cargo compiler-message envelope are accepted.
type RustcGrammar struct {
}

type rustcSpan struct {
	FileName    string `json:"file_name"`
	LineStart   int64  `json:"line_start"`
	LineEnd     int64  `json:"line_end"`
	ColumnStart int64  `json:"column_start"`
	ColumnEnd   int64  `json:"column_end"`
	IsPrimary   bool   `json:"is_primary"`
}

type rustcCode struct {
	Code string `json:"code"`
}

type rustcMessage struct {
	Message  string      `json:"message"`
	Level    string      `json:"level"`
	Spans    []rustcSpan `json:"spans"`
	Rendered string      `json:"rendered"`
	Code     *rustcCode  `json:"code"`
}

type cargoEnvelope struct {
	Reason  string          `json:"reason"`
	Message json.RawMessage `json:"message"`
}

func (*RustcGrammar) Name() string {
	return "rustc"
}

func (g *RustcGrammar) Parse(line string) ([]Diagnostic, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrNoMatch
	}
	message := &rustcMessage{}
	envelope := &cargoEnvelope{}
	if err := json.Unmarshal([]byte(trimmed), envelope); err != nil {
		return nil, ErrNoMatch
	}
	if envelope.Reason != "" {
		if envelope.Reason != "compiler-message" || envelope.Message == nil {
			return nil, ErrNoMatch
		}
		if err := json.Unmarshal(envelope.Message, message); err != nil {
			return nil, ErrNoMatch
		}
	} else if err := json.Unmarshal([]byte(trimmed), message); err != nil {
		return nil, ErrNoMatch
	}
	severity, ok := ParseSeverity(message.Level)
	if !ok || message.Message == "" {
		return nil, ErrNoMatch
	}
	var primary *rustcSpan
	for i := range message.Spans {
		if message.Spans[i].IsPrimary {
			primary = &message.Spans[i]
			break
		}
	}
	if primary == nil {
		// Summary messages like "aborting due to previous error" carry no
		// spans and were already reported through their primary diagnostic.
		return nil, ErrNoMatch
	}
	diag := Diagnostic{
		Severity: severity,
		File:     primary.FileName,
		Line:     primary.LineStart,
		EndLine:  primary.LineEnd,
		Col:      primary.ColumnStart,
		EndCol:   primary.ColumnEnd,
		Message:  message.Message,
	}
	if message.Rendered != "" {
		diag.Title = message.Message
		diag.Message = message.Rendered
	}
	if message.Code != nil {
		diag.Code = message.Code.Code
	}
	return []Diagnostic{diag}, nil
}
