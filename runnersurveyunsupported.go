// +build !linux,!darwin,!windows,!openbsd,!netbsd,!freebsd

package main

import (
	"fmt"
)

func GrammarSurvey(grammar string, grammars []string) string {
	fmt.Printf("Survey disabled, due to incompatibility with some platforms:\nAvailable grammars are [%v] using %v", grammars, grammar)
	return grammar
}

func GetInput(prompt string, answer string) string {
	fmt.Println("Survey disabled, due to incompatibility with some platforms:\nFailed to retrieve your choice using default: " + answer)
	return answer
}
