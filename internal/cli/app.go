package cli

import (
	"errors"
	"fmt"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/cliconfig"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/console"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/spf13/cobra"
)

// ErrCriticalFindings is returned when a validation run must fail the pipeline.
var ErrCriticalFindings = errors.New("validation found critical issues that must be addressed")

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd *cobra.Command
	console *console.Console
	banner  bool
}

// NewCLIApp builds the infratest command tree.
func NewCLIApp(c *console.Console) *CLIApp {
	app := &CLIApp{
		console: c,
		banner:  true,
	}

	rootCmd := &cobra.Command{
		Use:               "infratest",
		Short:             "Infrastructure plan validation and report analysis",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.applyConfigFile,
	}
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")

	rootCmd.AddCommand(
		app.newValidateArchitectureCmd(),
		app.newValidateDRCmd(),
		app.newWellArchitectedCmd(),
		app.newAnalyzeCmd(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetArgs overrides os.Args, used by tests
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// DisableBanner stops the welcome banner from printing
func (app *CLIApp) DisableBanner() {
	app.banner = false
}

// applyConfigFile copies config file values onto flags the user did not set.
func (app *CLIApp) applyConfigFile(cmd *cobra.Command, args []string) error {
	if app.banner {
		displayWelcomeBanner()
	}

	configFile, _ := cmd.Flags().GetString("config-file")
	if configFile == "" {
		return nil
	}
	config, err := cliconfig.Load(configFile)
	if err != nil {
		return err
	}
	for name, value := range config.Values() {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("invalid value for %s in config file: %w", name, err)
		}
	}
	app.console.LogInfo("Loaded configuration from %s", configFile)
	return nil
}

func requireFlag(cmd *cobra.Command, name string) (string, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return "", fmt.Errorf("required flag \"%s\" not set", name)
	}
	return value, nil
}

// environment names end up in report file names
func requireEnvironment(cmd *cobra.Command) (string, error) {
	env, err := requireFlag(cmd, "environment")
	if err != nil {
		return "", err
	}
	if !shared.IsValidEnvironmentName(env) {
		return "", fmt.Errorf("invalid environment name \"%s\"", env)
	}
	return env, nil
}
