package hcl

import (
	"fmt"
	"time"

	"github.com/specialistvlad/argoflow/internal/config"
)

// DefaultTTL keeps finished workflows around for a week.
const DefaultTTL = 7 * 24 * time.Hour

func defaultWorkflow() *config.Workflow {
	return &config.Workflow{TTL: DefaultTTL, Labels: map[string]string{}}
}

func translateWorkflow(b *workflowBlock) (*config.Workflow, error) {
	wf := defaultWorkflow()
	wf.Namespace = b.Namespace
	wf.Bucket = b.Bucket
	wf.ConfigPath = b.ConfigPath
	wf.MainRepo = b.MainRepo
	wf.ExtraRepos = b.ExtraRepos
	wf.TestEndpoint = b.TestEndpoint
	wf.UseBasicAuth = b.UseBasicAuth
	if b.Labels != nil {
		wf.Labels = b.Labels
	}
	if b.TTL != "" {
		ttl, err := time.ParseDuration(b.TTL)
		if err != nil {
			return nil, fmt.Errorf("workflow: invalid ttl %q: %w", b.TTL, err)
		}
		wf.TTL = ttl
	}
	return wf, nil
}

func translateEnvironment(b *environmentBlock) (*config.Environment, error) {
	env := &config.Environment{
		Name:            b.Name,
		Image:           b.Image,
		ImagePullPolicy: b.ImagePullPolicy,
		WorkingDir:      b.WorkingDir,
		Env:             b.Env,
		Labels:          b.Labels,
	}
	if b.Deadline != "" {
		d, err := time.ParseDuration(b.Deadline)
		if err != nil {
			return nil, fmt.Errorf("environment %q: invalid deadline %q: %w", b.Name, b.Deadline, err)
		}
		env.Deadline = d
	}
	if b.Limits != nil {
		env.Limits = config.Resources{CPU: b.Limits.CPU, Memory: b.Limits.Memory}
	}
	if b.Requests != nil {
		env.Requests = config.Resources{CPU: b.Requests.CPU, Memory: b.Requests.Memory}
	}
	for _, vb := range b.Volumes {
		if (vb.Claim == "") == (vb.Secret == "") {
			return nil, fmt.Errorf("environment %q: volume %q must set exactly one of claim or secret", b.Name, vb.Name)
		}
		env.Volumes = append(env.Volumes, config.Volume{
			Name:       vb.Name,
			MountPath:  vb.MountPath,
			ClaimName:  vb.Claim,
			SecretName: vb.Secret,
		})
	}
	return env, nil
}
