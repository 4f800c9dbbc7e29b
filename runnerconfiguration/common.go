package runnerconfiguration

import (
	"fmt"
	"os"
	"strings"

	"github.com/annotateci/annotate-runner/common"
	"github.com/annotateci/annotate-runner/diagnostic"
	"github.com/annotateci/annotate-runner/protocol"
)

// SettingsFile is where `configure` persists the runner configuration.
const SettingsFile = "settings.json"

// RunnerSettings holds everything the runner needs to reach GitHub and
// pick defaults for a run.
type RunnerSettings struct {
	APIURL     string
	Repository string
	CheckName  string
	// AllowWarnings is the default for runs without the flag
	AllowWarnings bool
	// GrammarFile optionally names a YAML file with extra regex grammars
	GrammarFile string
	// DefaultGrammar is used by `run` when --grammar is not given
	DefaultGrammar string

	AppID             string
	AppInstallationID string
	AppPrivateKeyFile string
}

type ConfigureRunner struct {
	APIURL            string
	Repository        string
	CheckName         string
	AllowWarnings     bool
	GrammarFile       string
	DefaultGrammar    string
	AppID             string
	AppInstallationID string
	AppPrivateKeyFile string
	Unattended        bool
	Trace             bool
}

func (config *ConfigureRunner) ReadFromEnvironment() {
	if len(config.APIURL) == 0 {
		if v, ok := os.LookupEnv("ANNOTATE_RUNNER_INPUT_API_URL"); ok {
			config.APIURL = v
		}
	}
	if len(config.Repository) == 0 {
		if v, ok := os.LookupEnv("ANNOTATE_RUNNER_INPUT_REPOSITORY"); ok {
			config.Repository = v
		}
	}
	if len(config.AppID) == 0 {
		if v, ok := os.LookupEnv("ANNOTATE_RUNNER_INPUT_APP_ID"); ok {
			config.AppID = v
		}
	}
	if len(config.AppInstallationID) == 0 {
		if v, ok := os.LookupEnv("ANNOTATE_RUNNER_INPUT_APP_INSTALLATION_ID"); ok {
			config.AppInstallationID = v
		}
	}
	if len(config.AppPrivateKeyFile) == 0 {
		if v, ok := os.LookupEnv("ANNOTATE_RUNNER_INPUT_APP_PRIVATE_KEY_FILE"); ok {
			config.AppPrivateKeyFile = v
		}
	}
	if !config.Unattended {
		if v, ok := common.LookupEnvBool("ANNOTATE_RUNNER_INPUT_UNATTENDED"); ok {
			config.Unattended = v
		}
	}
	if !config.AllowWarnings {
		if v, ok := common.LookupEnvBool("ANNOTATE_RUNNER_INPUT_ALLOW_WARNINGS"); ok {
			config.AllowWarnings = v
		}
	}
}

// Configure validates the input, asking interactively for missing values
// unless unattended, and returns the settings to persist.
func (config *ConfigureRunner) Configure(survey Survey) (*RunnerSettings, error) {
	settings := &RunnerSettings{
		APIURL:            config.APIURL,
		Repository:        config.Repository,
		CheckName:         config.CheckName,
		AllowWarnings:     config.AllowWarnings,
		GrammarFile:       config.GrammarFile,
		DefaultGrammar:    config.DefaultGrammar,
		AppID:             config.AppID,
		AppInstallationID: config.AppInstallationID,
		AppPrivateKeyFile: config.AppPrivateKeyFile,
	}
	if len(settings.APIURL) == 0 {
		settings.APIURL = "https://api.github.com"
	}
	if len(settings.Repository) == 0 {
		if !config.Unattended {
			settings.Repository = survey.GetInput("Please enter the repository in owner/name form:", "")
		}
		if len(settings.Repository) == 0 {
			return nil, fmt.Errorf("no repository provided")
		}
	}
	if strings.Count(settings.Repository, "/") != 1 {
		return nil, fmt.Errorf("invalid repository '%v', expected owner/name", settings.Repository)
	}
	if len(settings.CheckName) == 0 {
		settings.CheckName = "annotate-runner"
	}
	if len(settings.AppID) > 0 || len(settings.AppInstallationID) > 0 || len(settings.AppPrivateKeyFile) > 0 {
		if len(settings.AppID) == 0 && !config.Unattended {
			settings.AppID = survey.GetInput("Please enter your GitHub App id:", "")
		}
		if len(settings.AppInstallationID) == 0 && !config.Unattended {
			settings.AppInstallationID = survey.GetInput("Please enter the installation id for this repository:", "")
		}
		if len(settings.AppID) == 0 || len(settings.AppInstallationID) == 0 || len(settings.AppPrivateKeyFile) == 0 {
			return nil, fmt.Errorf("app id, installation id and private key file are all required for app authentication")
		}
		// Fail configure early on an unreadable or malformed key
		if _, err := protocol.ReadAppPrivateKey(settings.AppPrivateKeyFile); err != nil {
			return nil, fmt.Errorf("cannot read the app private key: %w", err)
		}
	}
	if len(settings.GrammarFile) > 0 {
		if err := RegisterGrammarFile(settings.GrammarFile); err != nil {
			return nil, err
		}
	}
	if len(settings.DefaultGrammar) == 0 {
		settings.DefaultGrammar = "line"
		if !config.Unattended {
			settings.DefaultGrammar = survey.GetSelectInput("Choose the default grammar:", diagnostic.Names(), settings.DefaultGrammar)
		}
	}
	if _, err := diagnostic.Lookup(settings.DefaultGrammar); err != nil {
		return nil, err
	}
	return settings, nil
}

func LoadSettings() (*RunnerSettings, error) {
	settings := &RunnerSettings{}
	if err := common.ReadJSON(SettingsFile, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func SaveSettings(settings *RunnerSettings) error {
	return common.WriteJSON(SettingsFile, settings)
}
