package diagnostic

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

// DiagnosticChannelSize bounds the queue between the parser and the
// annotation emitter so slow network calls backpressure the parser
// instead of growing memory.
const DiagnosticChannelSize = 64

// Parser consumes the merged output lines of the build tool and produces
// diagnostics. It is a single consumer of the line channel and the single
// producer of the diagnostics channel.
type Parser struct {
	Grammar Grammar
	Log     *logrus.Logger
}

// Run parses lines until the channel is closed, then closes diags.
// Lines not matching the grammar are skipped, a malformed line never
// aborts the run.
func (p *Parser) Run(lines <-chan string, diags chan<- Diagnostic) {
	defer close(diags)
	for line := range lines {
		parsed, err := p.Grammar.Parse(line)
		if err != nil {
			if !errors.Is(err, ErrNoMatch) && p.Log != nil {
				p.Log.Debugf("Skipping malformed line: %v\n", err)
			}
			continue
		}
		for _, diag := range parsed {
			if diag.Message == "" {
				continue
			}
			diags <- diag
		}
	}
}

func init() {
	Register(&RustcGrammar{})
	wd, _ := os.Getwd()
	Register(&RustfmtGrammar{Workdir: wd})
	if line, err := NewRegexGrammar("line", DefaultLinePattern); err == nil {
		Register(line)
	}
}
