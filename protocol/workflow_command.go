package protocol

import (
	"fmt"
	"strings"
)

func (level AnnotationLevel) workflowCommand() string {
	if level == FAILURE {
		return "error"
	}
	return string(level)
}

func escapeCommandData(data string) string {
	data = strings.TrimSpace(data)
	data = strings.ReplaceAll(data, "%", "%25")
	data = strings.ReplaceAll(data, "\r", "%0D")
	data = strings.ReplaceAll(data, "\n", "%0A")
	return data
}

func escapeCommandProperty(property string) string {
	property = escapeCommandData(property)
	property = strings.ReplaceAll(property, ":", "%3A")
	property = strings.ReplaceAll(property, ",", "%2C")
	return property
}

// WorkflowCommand renders the annotation as a GitHub Actions workflow
// command, the form used when annotating from inside a job step.
func (annotation *Annotation) WorkflowCommand() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "::%v file=%v,line=%v", annotation.Level.workflowCommand(), escapeCommandProperty(annotation.Path), annotation.StartLine)
	if annotation.EndLine != 0 {
		fmt.Fprintf(&sb, ",endLine=%v", annotation.EndLine)
	}
	if annotation.StartColumn != 0 {
		fmt.Fprintf(&sb, ",col=%v", annotation.StartColumn)
		if annotation.EndColumn != 0 {
			fmt.Fprintf(&sb, ",endColumn=%v", annotation.EndColumn)
		}
	}
	if annotation.Title != "" {
		fmt.Fprintf(&sb, ",title=%v", escapeCommandProperty(annotation.Title))
	}
	fmt.Fprintf(&sb, "::%v", escapeCommandData(annotation.Message))
	return sb.String()
}
