package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/argoflow/internal/app"
	"github.com/specialistvlad/argoflow/internal/operation"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type globalFlags struct {
	logFormat       string
	logLevel        string
	healthcheckPort int
	credentials     string
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		g      globalFlags
		parsed *app.Config
	)
	// Each sub-command fills in its part of the config; validation happens
	// once all flags are known.
	capture := func(cfg app.Config) func(*cobra.Command, []string) error {
		return func(*cobra.Command, []string) error {
			cfg.LogFormat = g.logFormat
			cfg.LogLevel = g.logLevel
			cfg.HealthcheckPort = g.healthcheckPort
			cfg.CredentialsFile = g.credentials
			parsed = &cfg
			return nil
		}
	}

	root := newRootCmd(&g)
	root.AddCommand(
		newGenerateCmd(capture),
		newWaitCmd(capture),
		newDeployCmd(capture),
	)
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if parsed == nil {
		// Help was requested or no sub-command was given.
		return nil, true, nil
	}
	slog.Debug("Arguments parsed successfully.", "command", parsed.Command)

	logFormat := strings.ToLower(parsed.LogFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	parsed.LogFormat = logFormat

	logLevel := strings.ToLower(parsed.LogLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	parsed.LogLevel = logLevel

	config, err := app.NewConfig(*parsed)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func newRootCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "argoflow",
		Short: "Generate Argo E2E workflows and wait for Deployment Manager operations",
		Long: `argoflow builds the kfctl end-to-end test workflow as an Argo Workflow
document and waits for Google Cloud Deployment Manager operations to finish.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.IntVar(&g.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server while waiting. 0 is disabled.")
	pf.StringVar(&g.credentials, "credentials", "", "Service account key file. Defaults to Application Default Credentials.")
	return cmd
}

type captureFunc func(app.Config) func(*cobra.Command, []string) error

func newGenerateCmd(capture captureFunc) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the kfctl E2E workflow as YAML",
		Long: `Render the kfctl E2E workflow as YAML.

The HCL configuration can refer to the run's directory layout through
variables such as var.test_dir, var.src_dir and var.mount_path.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg.Command = app.CommandGenerate
			return capture(cfg)(c, args)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&cfg.ConfigPaths, "config", "c", nil, "HCL file or directory. Repeatable.")
	f.StringVarP(&cfg.Name, "name", "n", "", "Workflow name.")
	f.StringVar(&cfg.Namespace, "namespace", "", "Override the configured namespace.")
	f.StringVarP(&cfg.Environment, "environment", "e", app.DefaultEnvironment, "Environment block to build the steps from.")
	f.StringVarP(&cfg.Output, "output", "o", "", "Write the workflow to this file instead of stdout.")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWaitCmd(capture captureFunc) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for Deployment Manager operations to finish",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg.Command = app.CommandWait
			return capture(cfg)(c, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Project, "project", "", "GCP project owning the operations.")
	f.StringSliceVar(&cfg.Operations, "operation", nil, "Operation name. Repeatable or comma separated.")
	addPollingFlags(cmd, &cfg)
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}

func newDeployCmd(capture captureFunc) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create a Deployment Manager deployment and wait for it",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg.Command = app.CommandDeploy
			return capture(cfg)(c, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Project, "project", "", "GCP project to deploy into.")
	f.StringVar(&cfg.DeploymentName, "name", "", "Deployment name.")
	f.StringVar(&cfg.DeploymentConfig, "config", "", "Deployment config YAML.")
	f.StringSliceVar(&cfg.Imports, "imports", nil, "Template files imported by the config.")
	addPollingFlags(cmd, &cfg)
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func addPollingFlags(cmd *cobra.Command, cfg *app.Config) {
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", operation.DefaultTimeout, "Give up after this long.")
	cmd.Flags().DurationVar(&cfg.Interval, "interval", operation.DefaultInterval, "Time between status queries.")
}
