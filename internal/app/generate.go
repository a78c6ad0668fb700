package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/argoflow/internal/argo"
	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"github.com/specialistvlad/argoflow/internal/e2e"
)

func (a *App) generate(ctx context.Context) error {
	cfg := a.config
	logger := ctxlog.FromContext(ctx).With("workflow", cfg.Name)

	layout := e2e.NewLayout(cfg.Name, e2e.NewAppName(a.clock.Now(), a.newID()))
	model, err := a.loader.Load(ctx, layout.Vars(), cfg.ConfigPaths...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded.", "environments", len(model.Environments))

	env, err := model.Environment(cfg.Environment)
	if err != nil {
		return err
	}
	wf := *model.Workflow
	if cfg.Namespace != "" {
		wf.Namespace = cfg.Namespace
	}

	b, err := e2e.NewBuilder(layout, &wf, env, e2e.WithProw(a.prow))
	if err != nil {
		return err
	}
	pipeline, err := b.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build workflow: %w", err)
	}
	rendered, err := argo.Render(pipeline)
	if err != nil {
		return fmt.Errorf("failed to render workflow: %w", err)
	}
	out, err := argo.Marshal(rendered)
	if err != nil {
		return err
	}

	if cfg.Output == "" || cfg.Output == "-" {
		_, err = a.outW.Write(out)
		return err
	}
	if err := os.WriteFile(cfg.Output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write workflow: %w", err)
	}
	logger.Info("Workflow written.", "path", cfg.Output, "app", layout.AppName)
	return nil
}
