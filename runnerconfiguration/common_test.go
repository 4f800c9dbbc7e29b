package runnerconfiguration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scriptedSurvey answers every prompt with a fixed value.
type scriptedSurvey struct {
	answers map[string]string
}

func (s *scriptedSurvey) GetInput(prompt string, def string) string {
	if answer, ok := s.answers[prompt]; ok {
		return answer
	}
	return def
}

func (s *scriptedSurvey) GetSelectInput(prompt string, options []string, def string) string {
	return def
}

func TestConfigureUnattended(t *testing.T) {
	config := &ConfigureRunner{
		Repository:    "octo/demo",
		AllowWarnings: true,
		Unattended:    true,
	}
	settings, err := config.Configure(nil)
	assert.NoError(t, err)
	assert.Equal(t, "https://api.github.com", settings.APIURL)
	assert.Equal(t, "octo/demo", settings.Repository)
	assert.Equal(t, "annotate-runner", settings.CheckName)
	assert.Equal(t, "line", settings.DefaultGrammar)
	assert.True(t, settings.AllowWarnings)
}

func TestConfigureUnattendedRequiresRepository(t *testing.T) {
	config := &ConfigureRunner{Unattended: true}
	_, err := config.Configure(nil)
	assert.Error(t, err)
}

func TestConfigureRejectsMalformedRepository(t *testing.T) {
	for _, repository := range []string{"demo", "octo/demo/extra", "octo//demo"} {
		config := &ConfigureRunner{Repository: repository, Unattended: true}
		_, err := config.Configure(nil)
		assert.Error(t, err, repository)
	}
}

func TestConfigureAsksForMissingRepository(t *testing.T) {
	config := &ConfigureRunner{}
	survey := &scriptedSurvey{answers: map[string]string{
		"Please enter the repository in owner/name form:": "octo/demo",
	}}
	settings, err := config.Configure(survey)
	assert.NoError(t, err)
	assert.Equal(t, "octo/demo", settings.Repository)
}

func TestConfigureRequiresCompleteAppCredentials(t *testing.T) {
	config := &ConfigureRunner{
		Repository: "octo/demo",
		AppID:      "4711",
		Unattended: true,
	}
	_, err := config.Configure(nil)
	assert.Error(t, err)
}

func TestConfigureRejectsUnknownDefaultGrammar(t *testing.T) {
	config := &ConfigureRunner{
		Repository:     "octo/demo",
		DefaultGrammar: "unknown",
		Unattended:     true,
	}
	_, err := config.Configure(nil)
	assert.Error(t, err)
}

func TestReadFromEnvironment(t *testing.T) {
	t.Setenv("ANNOTATE_RUNNER_INPUT_REPOSITORY", "octo/demo")
	t.Setenv("ANNOTATE_RUNNER_INPUT_APP_ID", "4711")
	t.Setenv("ANNOTATE_RUNNER_INPUT_UNATTENDED", "true")
	t.Setenv("ANNOTATE_RUNNER_INPUT_ALLOW_WARNINGS", "1")

	config := &ConfigureRunner{}
	config.ReadFromEnvironment()
	assert.Equal(t, "octo/demo", config.Repository)
	assert.Equal(t, "4711", config.AppID)
	assert.True(t, config.Unattended)
	assert.True(t, config.AllowWarnings)

	// Explicit values win over the environment
	config = &ConfigureRunner{Repository: "other/repo"}
	config.ReadFromEnvironment()
	assert.Equal(t, "other/repo", config.Repository)
}
