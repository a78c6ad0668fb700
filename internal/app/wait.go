package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"github.com/specialistvlad/argoflow/internal/deploymentmanager"
	"github.com/specialistvlad/argoflow/internal/operation"
)

func (a *App) wait(ctx context.Context) error {
	cloud, err := a.cloudClient(ctx)
	if err != nil {
		return err
	}
	handles := make([]operation.Handle, 0, len(a.config.Operations))
	for _, id := range a.config.Operations {
		handles = append(handles, operation.Handle{Project: a.config.Project, ID: id})
	}
	return a.await(ctx, cloud, handles...)
}

func (a *App) deploy(ctx context.Context) error {
	cfg := a.config
	cloud, err := a.cloudClient(ctx)
	if err != nil {
		return err
	}
	d, err := deploymentmanager.NewDeployment(cfg.DeploymentName, cfg.DeploymentConfig, cfg.Imports)
	if err != nil {
		return err
	}
	h, err := cloud.Deploy(ctx, cfg.Project, d)
	if err != nil {
		return err
	}
	return a.await(ctx, cloud, h)
}

func (a *App) await(ctx context.Context, q operation.Querier, handles ...operation.Handle) error {
	logger := ctxlog.FromContext(ctx)
	poller := operation.NewPoller(q, operation.WithClock(a.clock))

	ops, err := poller.AwaitAll(ctx, handles, a.config.Timeout, a.config.Interval)
	if err != nil {
		var timeoutErr *operation.TimeoutError
		if errors.As(err, &timeoutErr) && timeoutErr.Last != nil {
			logger.Error("Operation did not finish in time.", "operation", timeoutErr.Handle.String(), "status", timeoutErr.Last.Status)
		}
		return err
	}

	var errs []error
	for _, op := range ops {
		if err := deploymentmanager.OperationError(op); err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Info("Operation succeeded.", "operation", op.Handle.String())
		fmt.Fprintf(a.outW, "%s %s\n", op.Handle, op.Status)
	}
	return errors.Join(errs...)
}
