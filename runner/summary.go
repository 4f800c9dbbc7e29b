package runner

import (
	"fmt"
	"os"
	"strings"
)

// SummaryPathVariable names the file GitHub Actions renders as job summary.
const SummaryPathVariable = "GITHUB_STEP_SUMMARY"

func summaryCell(text string) string {
	if i := strings.IndexAny(text, "\r\n"); i != -1 {
		text = text[:i]
	}
	return strings.ReplaceAll(text, "|", "\\|")
}

// WriteStepSummary renders the run as a Markdown job summary, a totals
// line followed by one table row per diagnostic.
func WriteStepSummary(path string, result *RunResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close() // Ignore close error
	}()
	if _, err := fmt.Fprintf(file, "> **TOTAL:** %v\n\n", result.Summary()); err != nil {
		return err
	}
	if len(result.Diagnostics) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(file, "|Level|Message|Location|\n|:--|:--|--:|\n"); err != nil {
		return err
	}
	for _, diag := range result.Diagnostics {
		message := diag.Title
		if message == "" {
			message = diag.Message
		}
		location := ""
		if diag.File != "" {
			location = fmt.Sprintf("`%v:%v`", diag.File, diag.Line)
		}
		if _, err := fmt.Fprintf(file, "|%v %v|%v|%v|\n",
			diag.Severity.Emoji(), diag.Severity, summaryCell(message), location); err != nil {
			return err
		}
	}
	return nil
}
