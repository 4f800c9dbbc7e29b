package diagnostic

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoMatch is returned by a Grammar for lines which are not diagnostics.
// Such lines are skipped by the parser, they never abort a run.
var ErrNoMatch = errors.New("line does not match the diagnostic grammar")

// Grammar turns one line of tool output into zero or more diagnostics.
type Grammar interface {
	Name() string
	Parse(line string) ([]Diagnostic, error)
}

type registry struct {
	grammars map[string]Grammar
}

var defaultRegistry = &registry{grammars: map[string]Grammar{}}

func Register(g Grammar) {
	defaultRegistry.grammars[g.Name()] = g
}

func Lookup(name string) (Grammar, error) {
	if g, ok := defaultRegistry.grammars[name]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("unknown grammar '%v', available grammars are %v", name, Names())
}

func Names() []string {
	names := make([]string, 0, len(defaultRegistry.grammars))
	for name := range defaultRegistry.grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
