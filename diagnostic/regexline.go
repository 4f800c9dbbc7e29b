package diagnostic

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultLinePattern matches the common `severity: file:line:col: message`
// layout used by many compilers and linters.
const DefaultLinePattern = `^(?P<severity>error|warning|note):\s+(?P<file>[^:\s]+):(?P<line>\d+):(?:(?P<col>\d+):)?\s*(?P<message>.+)$`

// RegexGrammar parses one diagnostic per line using a regular expression
// with named capture groups. The groups severity, file, line and message
// are required, col, endline, endcol and code are optional.
type RegexGrammar struct {
	name string
	re   *regexp.Regexp
}

func NewRegexGrammar(name, pattern string) (*RegexGrammar, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("grammar '%v' has an invalid pattern: %w", name, err)
	}
	required := map[string]bool{"severity": false, "file": false, "line": false, "message": false}
	for _, group := range re.SubexpNames() {
		if _, ok := required[group]; ok {
			required[group] = true
		}
	}
	for group, found := range required {
		if !found {
			return nil, fmt.Errorf("grammar '%v' is missing the capture group '%v'", name, group)
		}
	}
	return &RegexGrammar{name: name, re: re}, nil
}

func (g *RegexGrammar) Name() string {
	return g.name
}

func (g *RegexGrammar) Parse(line string) ([]Diagnostic, error) {
	match := g.re.FindStringSubmatch(line)
	if match == nil {
		return nil, ErrNoMatch
	}
	groups := map[string]string{}
	for i, group := range g.re.SubexpNames() {
		if group != "" && i < len(match) {
			groups[group] = match[i]
		}
	}
	severity, ok := ParseSeverity(groups["severity"])
	if !ok || groups["message"] == "" {
		return nil, ErrNoMatch
	}
	diag := Diagnostic{
		Severity: severity,
		File:     groups["file"],
		Line:     groupNumber(groups, "line", 0),
		Message:  groups["message"],
		Code:     groups["code"],
	}
	diag.EndLine = groupNumber(groups, "endline", diag.Line)
	diag.Col = groupNumber(groups, "col", 0)
	diag.EndCol = groupNumber(groups, "endcol", diag.Col)
	if diag.Line == 0 {
		return nil, ErrNoMatch
	}
	return []Diagnostic{diag}, nil
}

func groupNumber(groups map[string]string, name string, def int64) int64 {
	if v, ok := groups[name]; ok && v != "" {
		if r, err := strconv.ParseInt(v, 10, 64); err == nil {
			return r
		}
	}
	return def
}
