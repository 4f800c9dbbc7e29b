package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/annotateci/annotate-runner/diagnostic"
	"github.com/annotateci/annotate-runner/protocol"
	"github.com/annotateci/annotate-runner/runner"
	"github.com/annotateci/annotate-runner/runnerconfiguration"
)

var version string = "1.0.x-dev"

type RunRunner struct {
	Cmd           string
	Grammar       string
	AllowWarnings bool
	CheckName     string
	EnvFile       string
	Trace         bool
	Debug         bool
}

func loadConfiguration() *runnerconfiguration.RunnerSettings {
	settings, err := runnerconfiguration.LoadSettings()
	if err != nil {
		// Running without a settings.json is the common case inside a job
		settings = &runnerconfiguration.RunnerSettings{}
	}
	if settings.GrammarFile != "" {
		if err := runnerconfiguration.RegisterGrammarFile(settings.GrammarFile); err != nil {
			fmt.Printf("Warning: Cannot load grammar file: %v\n", err.Error())
		}
	}
	if settings.APIURL == "" {
		settings.APIURL = "https://api.github.com"
	}
	if v, ok := os.LookupEnv("GITHUB_API_URL"); ok && v != "" {
		settings.APIURL = v
	}
	if settings.Repository == "" {
		settings.Repository = os.Getenv("GITHUB_REPOSITORY")
	}
	return settings
}

// buildEmitter picks the Checks API when credentials and commit are
// available, otherwise annotations go out as workflow commands.
func buildEmitter(settings *runnerconfiguration.RunnerSettings, checkName string, trace bool) runner.Emitter {
	headSHA := os.Getenv("GITHUB_SHA")
	if settings.Repository == "" || headSHA == "" {
		return &runner.WorkflowCommandEmitter{Out: os.Stdout}
	}
	con := &protocol.GitHubConnection{
		APIURL: settings.APIURL,
		Trace:  trace,
	}
	if settings.AppID != "" {
		key, err := protocol.ReadAppPrivateKey(settings.AppPrivateKeyFile)
		if err != nil {
			fmt.Printf("Warning: Cannot read the app private key, falling back to workflow commands: %v\n", err.Error())
			return &runner.WorkflowCommandEmitter{Out: os.Stdout}
		}
		con.App = &protocol.AppCredentials{
			AppID:          settings.AppID,
			InstallationID: settings.AppInstallationID,
			Key:            key,
		}
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		con.Token = token
	} else {
		return &runner.WorkflowCommandEmitter{Out: os.Stdout}
	}
	return &runner.CheckRunEmitter{
		Checks: &protocol.ChecksService{
			Connection: con,
			Repository: settings.Repository,
		},
		CheckName: checkName,
		HeadSHA:   headSHA,
	}
}

func (run *RunRunner) Run(args []string) int {
	// trap Ctrl+C and the job timeout signal
	channel := make(chan os.Signal, 1)
	signal.Notify(channel, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(channel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-channel
		fmt.Println("Cancellation received, stop the build tool and emit the diagnostics parsed so far")
		cancel()
	}()
	return run.RunWithContext(ctx, args)
}

func (run *RunRunner) RunWithContext(ctx context.Context, args []string) int {
	if run.EnvFile != "" {
		if err := godotenv.Overload(run.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load godotenv file '%s': %s\n", run.EnvFile, err.Error())
		}
	}
	logger := runner.NewLogger(run.Debug)
	settings := loadConfiguration()
	grammarName := run.Grammar
	if grammarName == "" {
		grammarName = settings.DefaultGrammar
	}
	if grammarName == "" {
		grammarName = "line"
	}
	grammar, err := diagnostic.Lookup(grammarName)
	if err != nil {
		fmt.Printf("Error: %v\n", err.Error())
		return 1
	}
	checkName := run.CheckName
	if checkName == "" {
		checkName = settings.CheckName
	}
	if checkName == "" {
		checkName = "annotate-runner"
	}
	policy := &runner.ExitPolicy{AllowWarnings: run.AllowWarnings || settings.AllowWarnings}
	annotateRunner := &runner.AnnotateRunner{
		Invoker:     &runner.Invoker{Path: run.Cmd, Args: args},
		Grammar:     grammar,
		Emitter:     buildEmitter(settings, checkName, run.Trace),
		Policy:      policy,
		SummaryPath: os.Getenv(runner.SummaryPathVariable),
		Log:         logger,
	}
	logger.Infof("Running '%v' with the %v grammar\n", run.Cmd, grammar.Name())
	result, err := annotateRunner.Run(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err.Error())
		return 1
	}
	logger.Infof("Finished '%v' after %v: %v\n", run.Cmd, result.Duration.Round(0), result.Summary())
	return policy.Complete(result)
}

type interactive struct {
}

func (i *interactive) GetInput(prompt string, def string) string {
	return GetInput(prompt, def)
}
func (i *interactive) GetSelectInput(prompt string, options []string, def string) string {
	return GrammarSurvey(def, options)
}

func cargoPath() string {
	if v, ok := os.LookupEnv("CARGO"); ok && v != "" {
		return v
	}
	return "cargo"
}

func newCargoCommand(run *RunRunner, subcommand string) *cobra.Command {
	cargo := cargoPath()
	cmd := &cobra.Command{
		Use:   subcommand + " [args...]",
		Short: "Runs `cargo " + subcommand + "` and annotates from its output",
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			run.Cmd = cargo
			run.Grammar = "rustc"
			os.Exit(run.Run(append([]string{subcommand, "--message-format=json"}, args...)))
		},
	}
	cmd.Flags().StringVar(&cargo, "cargo", cargo, "path to the cargo executable")
	return cmd
}

func main() {
	run := &RunRunner{}
	config := &runnerconfiguration.ConfigureRunner{}

	var cmdRun = &cobra.Command{
		Use:   "run [tool-args...]",
		Short: "Run a build tool and annotate from its output",
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if run.Cmd == "" {
				fmt.Printf("Error: no command provided, use --cmd\n")
				os.Exit(1)
			}
			os.Exit(run.Run(args))
		},
	}
	cmdRun.Flags().StringVar(&run.Cmd, "cmd", "", "the build tool to run")
	cmdRun.Flags().StringVar(&run.Grammar, "grammar", "", "diagnostic grammar to parse the tool output with")

	var cmdFmt = &cobra.Command{
		Use:   "fmt [args...]",
		Short: "Runs `cargo fmt` on a nightly toolchain and annotates from its output",
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			run.Cmd = "rustup"
			run.Grammar = "rustfmt"
			os.Exit(run.Run(append([]string{"run", "nightly", "cargo", "fmt", "--message-format=json"}, args...)))
		},
	}

	var cmdLintWorkflows = &cobra.Command{
		Use:   "lint-workflows",
		Short: "Lint the workflow files of this repository and annotate findings",
		Args:  cobra.MaximumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(run.LintWorkflows())
		},
	}

	var cmdConfigure = &cobra.Command{
		Use:   "configure",
		Short: "Configure defaults and GitHub App credentials for this runner",
		Args:  cobra.MaximumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			config.ReadFromEnvironment()
			settings, err := config.Configure(&interactive{})
			if err == nil {
				err = runnerconfiguration.SaveSettings(settings)
			}
			if err != nil {
				fmt.Printf("failed to configure: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("success\n")
			os.Exit(0)
		},
	}
	cmdConfigure.Flags().StringVar(&config.APIURL, "api-url", "", "GitHub API url, defaults to https://api.github.com")
	cmdConfigure.Flags().StringVar(&config.Repository, "repository", "", "repository in owner/name form receiving the check runs")
	cmdConfigure.Flags().StringVar(&config.CheckName, "check-name", "", "default name of the created check runs")
	cmdConfigure.Flags().BoolVar(&config.AllowWarnings, "allow-warnings", false, "warnings do not fail runs by default")
	cmdConfigure.Flags().StringVar(&config.GrammarFile, "grammar-file", "", "YAML file with additional regex grammars")
	cmdConfigure.Flags().StringVar(&config.DefaultGrammar, "default-grammar", "", "grammar used by run when --grammar is not given")
	cmdConfigure.Flags().StringVar(&config.AppID, "app-id", "", "GitHub App id used to create check runs")
	cmdConfigure.Flags().StringVar(&config.AppInstallationID, "app-installation-id", "", "installation id of the app for the repository")
	cmdConfigure.Flags().StringVar(&config.AppPrivateKeyFile, "app-private-key-file", "", "PEM file with the private key of the app")
	cmdConfigure.Flags().BoolVar(&config.Unattended, "unattended", false, "suppress shell prompts during configure")
	cmdConfigure.Flags().BoolVar(&config.Trace, "trace", false, "trace http communication with the GitHub api")

	var rootCmd = &cobra.Command{
		Use:     "annotate-runner",
		Version: version,
	}
	rootCmd.PersistentFlags().BoolVar(&run.AllowWarnings, "allow-warnings", false, "warnings do not cause a failure exit code")
	rootCmd.PersistentFlags().StringVar(&run.CheckName, "check-name", "", "name of the created check run")
	rootCmd.PersistentFlags().StringVar(&run.EnvFile, "env-file", "", "godotenv file with environment variables for the run")
	rootCmd.PersistentFlags().BoolVar(&run.Trace, "trace", false, "trace http communication with the GitHub api")
	rootCmd.PersistentFlags().BoolVar(&run.Debug, "debug", false, "log skipped malformed output lines")
	rootCmd.AddCommand(
		cmdRun,
		newCargoCommand(run, "check"),
		newCargoCommand(run, "clippy"),
		newCargoCommand(run, "build"),
		cmdFmt,
		cmdLintWorkflows,
		cmdConfigure,
	)
	rootCmd.Execute()
}
