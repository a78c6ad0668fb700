package deploymentmanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"github.com/specialistvlad/argoflow/internal/operation"
	dm "google.golang.org/api/deploymentmanager/v2"
)

// NewDeployment reads the deployment config and its imports from disk.
func NewDeployment(name, configPath string, importPaths []string) (*dm.Deployment, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment config: %w", err)
	}

	target := &dm.TargetConfiguration{Config: &dm.ConfigFile{Content: string(content)}}
	for _, p := range importPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read import %s: %w", p, err)
		}
		target.Imports = append(target.Imports, &dm.ImportFile{
			Name:    filepath.Base(p),
			Content: string(data),
		})
	}

	return &dm.Deployment{Name: name, Target: target}, nil
}

// Deploy creates the deployment and returns the handle of the operation
// doing the work. If the deployment already exists, the handle of its
// latest operation is returned instead.
func (c *Client) Deploy(ctx context.Context, project string, d *dm.Deployment) (operation.Handle, error) {
	logger := ctxlog.FromContext(ctx).With("deployment", d.Name, "project", project)
	logger.Info("Creating deployment.")

	op, err := c.svc.Deployments.Insert(project, d).Context(ctx).Do()
	if err == nil {
		return operation.Handle{Project: project, ID: op.Name}, nil
	}
	if !isConflict(err) {
		return operation.Handle{}, fmt.Errorf("failed to create deployment %s: %w", d.Name, err)
	}

	logger.Info("Deployment already exists.")
	existing, err := c.svc.Deployments.Get(project, d.Name).Context(ctx).Do()
	if err != nil {
		return operation.Handle{}, fmt.Errorf("failed to get deployment %s: %w", d.Name, err)
	}
	if existing.Operation == nil || existing.Operation.Name == "" {
		return operation.Handle{}, errors.New("could not get operation name")
	}
	return operation.Handle{Project: project, ID: existing.Operation.Name}, nil
}
