// +build linux darwin windows openbsd netbsd freebsd

package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

func GrammarSurvey(grammar string, grammars []string) string {
	prompt := &survey.Select{
		Message: "Choose the default grammar:",
		Options: grammars,
	}
	err := survey.AskOne(prompt, &grammar)
	if err != nil {
		fmt.Println("Failed to retrieve your choice using default grammar: " + grammar)
	}
	return grammar
}

func GetInput(prompt string, answer string) string {
	input := &survey.Input{
		Message: prompt,
		Default: answer,
	}
	err := survey.AskOne(input, &answer)
	if err != nil {
		fmt.Println("Failed to retrieve your choice using default: " + answer)
	}
	return answer
}
