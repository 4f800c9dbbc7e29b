package runnerconfiguration

// Survey abstracts the interactive prompts so configure can be tested
// and run unattended.
type Survey interface {
	GetInput(prompt string, def string) string
	GetSelectInput(prompt string, options []string, def string) string
}
