package protocol

import (
	"github.com/annotateci/annotate-runner/diagnostic"
)

type AnnotationLevel string

const (
	NOTICE  AnnotationLevel = "notice"
	WARNING AnnotationLevel = "warning"
	FAILURE AnnotationLevel = "failure"
)

// Annotation is the GitHub rendering of a diagnostic, serialized with the
// field names of the Checks API.
type Annotation struct {
	Path        string          `json:"path"`
	StartLine   int64           `json:"start_line"`
	EndLine     int64           `json:"end_line"`
	StartColumn int64           `json:"start_column,omitempty"`
	EndColumn   int64           `json:"end_column,omitempty"`
	Level       AnnotationLevel `json:"annotation_level"`
	Message     string          `json:"message"`
	Title       string          `json:"title,omitempty"`
	RawDetails  string          `json:"raw_details,omitempty"`
}

func SeverityToAnnotationLevel(severity diagnostic.Severity) AnnotationLevel {
	switch severity {
	case diagnostic.SeverityError:
		return FAILURE
	case diagnostic.SeverityWarning:
		return WARNING
	default:
		return NOTICE
	}
}

// DiagnosticToAnnotation maps a parsed diagnostic to its annotation record.
func DiagnosticToAnnotation(diag diagnostic.Diagnostic) Annotation {
	endLine := diag.EndLine
	if endLine == 0 {
		endLine = diag.Line
	}
	annotation := Annotation{
		Path:      diag.File,
		StartLine: diag.Line,
		EndLine:   endLine,
		Level:     SeverityToAnnotationLevel(diag.Severity),
		Message:   diag.Message,
		Title:     diag.Title,
	}
	// The Checks API rejects columns on multi line annotations
	if annotation.StartLine == annotation.EndLine {
		annotation.StartColumn = diag.Col
		annotation.EndColumn = diag.EndCol
		if annotation.EndColumn == 0 {
			annotation.EndColumn = annotation.StartColumn
		}
	}
	return annotation
}
