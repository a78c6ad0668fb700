package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/argoflow/internal/operation"
)

// Commands understood by App.Run.
const (
	CommandGenerate = "generate"
	CommandWait     = "wait"
	CommandDeploy   = "deploy"
)

// DefaultEnvironment is the environment block used when none is named.
const DefaultEnvironment = "default"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	// CredentialsFile is a service account key for Deployment Manager. Empty
	// uses Application Default Credentials.
	CredentialsFile string

	// generate
	ConfigPaths []string // hcl files or directories
	Name        string
	Namespace   string // overrides the configured namespace
	Environment string
	Output      string // empty writes to stdout

	// wait and deploy
	Project    string
	Operations []string
	Timeout    time.Duration
	Interval   time.Duration

	// deploy
	DeploymentName   string
	DeploymentConfig string
	Imports          []string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = operation.DefaultTimeout
	}
	if cfg.Interval == 0 {
		cfg.Interval = operation.DefaultInterval
	}
	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}

	switch cfg.Command {
	case CommandGenerate:
		if len(cfg.ConfigPaths) == 0 {
			return nil, errors.New("at least one config path is required")
		}
		if cfg.Name == "" {
			return nil, errors.New("workflow name is required")
		}
	case CommandWait:
		if cfg.Project == "" {
			return nil, errors.New("project is required")
		}
		if len(cfg.Operations) == 0 {
			return nil, errors.New("at least one operation is required")
		}
	case CommandDeploy:
		if cfg.Project == "" {
			return nil, errors.New("project is required")
		}
		if cfg.DeploymentName == "" {
			return nil, errors.New("deployment name is required")
		}
		if cfg.DeploymentConfig == "" {
			return nil, errors.New("deployment config is required")
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.Command != CommandGenerate {
		if cfg.Timeout < 0 {
			return nil, errors.New("timeout must not be negative")
		}
		if cfg.Interval < 0 {
			return nil, operation.ErrInvalidInterval
		}
	}

	return &cfg, nil
}
