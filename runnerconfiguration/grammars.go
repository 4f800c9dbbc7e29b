package runnerconfiguration

import (
	"fmt"

	"github.com/annotateci/annotate-runner/common"
	"github.com/annotateci/annotate-runner/diagnostic"
)

type GrammarConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

type GrammarsFile struct {
	Grammars []GrammarConfig `yaml:"grammars"`
}

// RegisterGrammarFile loads extra regex grammars from a YAML file and
// adds them to the grammar registry.
func RegisterGrammarFile(path string) error {
	file := &GrammarsFile{}
	if err := common.ReadYAML(path, file); err != nil {
		return fmt.Errorf("cannot read grammar file '%v': %w", path, err)
	}
	if len(file.Grammars) == 0 {
		return fmt.Errorf("grammar file '%v' defines no grammars", path)
	}
	for _, config := range file.Grammars {
		if config.Name == "" {
			return fmt.Errorf("grammar file '%v' contains a grammar without a name", path)
		}
		grammar, err := diagnostic.NewRegexGrammar(config.Name, config.Pattern)
		if err != nil {
			return err
		}
		diagnostic.Register(grammar)
	}
	return nil
}
