package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/specialistvlad/argoflow/internal/config"
	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"github.com/specialistvlad/argoflow/internal/deploymentmanager"
	"github.com/specialistvlad/argoflow/internal/e2e"
	"github.com/specialistvlad/argoflow/internal/operation"
	dm "google.golang.org/api/deploymentmanager/v2"
	"k8s.io/utils/clock"
)

// Cloud is the remote side of the wait and deploy commands.
type Cloud interface {
	operation.Querier
	Deploy(ctx context.Context, project string, d *dm.Deployment) (operation.Handle, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader

	clock clock.Clock
	newID func() uuid.UUID
	prow  e2e.Prow
	cloud Cloud

	ctx        context.Context
	httpServer *http.Server
}

// Option customises an App. Options exist mostly for tests.
type Option func(*App)

// WithClock replaces the wall clock used for app names and polling.
func WithClock(c clock.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithIDSource replaces the generator of the app name suffix.
func WithIDSource(f func() uuid.UUID) Option {
	return func(a *App) { a.newID = f }
}

// WithProw replaces the prow variables read from the environment.
func WithProw(p e2e.Prow) Option {
	return func(a *App) { a.prow = p }
}

// WithCloud replaces the Deployment Manager client.
func WithCloud(c Cloud) Option {
	return func(a *App) { a.cloud = c }
}

// NewApp is the constructor for the main application. Generated artifacts
// go to outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
		clock:  clock.RealClock{},
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prow == nil {
		a.prow = e2e.ProwFromEnv()
	}
	return a
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	switch a.config.Command {
	case CommandGenerate:
		return a.generate(a.ctx)
	case CommandWait, CommandDeploy:
		a.healthCheckServer()
		defer func() {
			if err := a.closeHealthCheckServer(); err != nil {
				a.logger.Warn("Health check server did not shut down cleanly.", "error", err)
			}
		}()
		if a.config.Command == CommandWait {
			return a.wait(a.ctx)
		}
		return a.deploy(a.ctx)
	default:
		return fmt.Errorf("unknown command %q", a.config.Command)
	}
}

func (a *App) cloudClient(ctx context.Context) (Cloud, error) {
	if a.cloud != nil {
		return a.cloud, nil
	}
	c, err := deploymentmanager.NewClient(ctx, deploymentmanager.Config{CredentialsFile: a.config.CredentialsFile})
	if err != nil {
		return nil, err
	}
	a.cloud = c
	return c, nil
}
