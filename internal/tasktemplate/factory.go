package tasktemplate

import (
	"errors"
	"fmt"
	"maps"

	"github.com/specialistvlad/argoflow/internal/config"
	"github.com/specialistvlad/argoflow/internal/task"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ResourceBoundsError reports a resource whose request is above its limit.
type ResourceBoundsError struct {
	Environment string
	Resource    corev1.ResourceName
	Request     resource.Quantity
	Limit       resource.Quantity
}

func (e *ResourceBoundsError) Error() string {
	return fmt.Sprintf("environment %q: %s request %s exceeds limit %s",
		e.Environment, e.Resource, e.Request.String(), e.Limit.String())
}

// Build produces the prototype task for env.
func Build(env *config.Environment) (*task.Template, error) {
	if env == nil {
		return nil, errors.New("environment is nil")
	}
	if env.Image == "" {
		return nil, fmt.Errorf("environment %q: image is required", env.Name)
	}

	resources, err := buildResources(env)
	if err != nil {
		return nil, err
	}

	proto := &task.Task{
		Command:         []string{},
		Image:           env.Image,
		ImagePullPolicy: corev1.PullPolicy(env.ImagePullPolicy),
		WorkingDir:      env.WorkingDir,
		Resources:       resources,
		Env:             maps.Clone(env.Env),
		Labels:          maps.Clone(env.Labels),
		Deadline:        env.Deadline,
	}
	if proto.Env == nil {
		proto.Env = map[string]string{}
	}
	if proto.Labels == nil {
		proto.Labels = map[string]string{}
	}
	for _, v := range env.Volumes {
		proto.VolumeMounts = append(proto.VolumeMounts, corev1.VolumeMount{
			Name:      v.Name,
			MountPath: v.MountPath,
		})
	}

	return task.NewTemplate(proto), nil
}

// Volumes returns the pod-level volumes backing the mounts of env.
func Volumes(env *config.Environment) []corev1.Volume {
	volumes := make([]corev1.Volume, 0, len(env.Volumes))
	for _, v := range env.Volumes {
		vol := corev1.Volume{Name: v.Name}
		switch {
		case v.ClaimName != "":
			vol.PersistentVolumeClaim = &corev1.PersistentVolumeClaimVolumeSource{ClaimName: v.ClaimName}
		case v.SecretName != "":
			vol.Secret = &corev1.SecretVolumeSource{SecretName: v.SecretName}
		}
		volumes = append(volumes, vol)
	}
	return volumes
}

func buildResources(env *config.Environment) (corev1.ResourceRequirements, error) {
	limits, err := resourceList(env.Name, "limits", env.Limits)
	if err != nil {
		return corev1.ResourceRequirements{}, err
	}
	requests, err := resourceList(env.Name, "requests", env.Requests)
	if err != nil {
		return corev1.ResourceRequirements{}, err
	}

	for name, req := range requests {
		limit, ok := limits[name]
		if !ok {
			continue
		}
		if req.Cmp(limit) > 0 {
			return corev1.ResourceRequirements{}, &ResourceBoundsError{
				Environment: env.Name,
				Resource:    name,
				Request:     req,
				Limit:       limit,
			}
		}
	}

	return corev1.ResourceRequirements{Limits: limits, Requests: requests}, nil
}

func resourceList(envName, kind string, r config.Resources) (corev1.ResourceList, error) {
	list := corev1.ResourceList{}
	for name, raw := range map[corev1.ResourceName]string{
		corev1.ResourceCPU:    r.CPU,
		corev1.ResourceMemory: r.Memory,
	} {
		if raw == "" {
			continue
		}
		q, err := resource.ParseQuantity(raw)
		if err != nil {
			return nil, fmt.Errorf("environment %q: invalid %s %s %q: %w", envName, kind, name, raw, err)
		}
		list[name] = q
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}
