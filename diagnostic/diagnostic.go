package diagnostic

import (
	"fmt"
	"strings"
)

// Severity of a Diagnostic, ordered from least to most severe.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func (s Severity) Emoji() string {
	switch s {
	case SeverityError:
		return ":x:"
	case SeverityWarning:
		return ":warning:"
	default:
		return ":information_source:"
	}
}

// ParseSeverity maps a tool severity word to a Severity. It accepts the
// rustc levels in addition to the plain error/warning/note keywords.
func ParseSeverity(level string) (Severity, bool) {
	switch strings.ToLower(level) {
	case "error", "error: internal compiler error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "note", "notice", "help", "failure-note":
		return SeverityNote, true
	}
	return SeverityNote, false
}

// Diagnostic is a single issue reported by the build tool. All fields are
// set by the grammar that parsed it and never modified afterwards.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int64
	EndLine  int64
	Col      int64
	EndCol   int64
	// Title is a short form of the diagnostic, used as annotation title
	// when Message carries the full rendered text.
	Title   string
	Message string
	// Code is the tool rule identifier, e.g. a lint name.
	Code string
}

// Key identifies a diagnostic for deduplication purposes.
func (d *Diagnostic) Key() string {
	return fmt.Sprintf("%v|%v|%v|%v|%v|%v", d.Severity, d.File, d.Line, d.Col, d.Code, d.Message)
}
