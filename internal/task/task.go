package task

import (
	"maps"
	"slices"
	"time"

	corev1 "k8s.io/api/core/v1"
)

// Task is a single executable step of a pipeline.
type Task struct {
	Name            string
	Command         []string
	Image           string
	ImagePullPolicy corev1.PullPolicy
	WorkingDir      string
	Resources       corev1.ResourceRequirements
	VolumeMounts    []corev1.VolumeMount
	Env             map[string]string
	Labels          map[string]string
	// Dependencies names the predecessors of this task inside its sub-graph.
	// An empty list makes the task a root.
	Dependencies []string
	// Deadline bounds how long the engine lets the step run. Zero means unset.
	Deadline time.Duration
}

// DeepCopy returns an independent copy of t.
func (t *Task) DeepCopy() *Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Command = slices.Clone(t.Command)
	out.Dependencies = slices.Clone(t.Dependencies)
	out.Resources = *t.Resources.DeepCopy()
	out.VolumeMounts = make([]corev1.VolumeMount, len(t.VolumeMounts))
	for i := range t.VolumeMounts {
		t.VolumeMounts[i].DeepCopyInto(&out.VolumeMounts[i])
	}
	out.Env = maps.Clone(t.Env)
	out.Labels = maps.Clone(t.Labels)
	return &out
}

// MergeEnv layers extra on top of the task environment. On a shared key the
// value from extra wins.
func (t *Task) MergeEnv(extra map[string]string) {
	if len(extra) == 0 {
		return
	}
	if t.Env == nil {
		t.Env = make(map[string]string, len(extra))
	}
	maps.Copy(t.Env, extra)
}

// MergeLabels layers labels on top of the task labels. Applying the same set
// twice leaves the task unchanged.
func (t *Task) MergeLabels(labels map[string]string) {
	if len(labels) == 0 {
		return
	}
	if t.Labels == nil {
		t.Labels = make(map[string]string, len(labels))
	}
	maps.Copy(t.Labels, labels)
}

// MountsVolume reports whether the task mounts the named volume.
func (t *Task) MountsVolume(name string) bool {
	return slices.ContainsFunc(t.VolumeMounts, func(m corev1.VolumeMount) bool {
		return m.Name == name
	})
}
