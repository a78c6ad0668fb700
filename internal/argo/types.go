package argo

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// APIVersion and Kind of the rendered object.
const (
	APIVersion = "argoproj.io/v1alpha1"
	Kind       = "Workflow"
)

// Workflow is the subset of the Argo Workflow resource this tool produces.
type Workflow struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              WorkflowSpec `json:"spec"`
}

// WorkflowSpec is the spec of a Workflow.
type WorkflowSpec struct {
	Entrypoint              string          `json:"entrypoint"`
	TTLSecondsAfterFinished *int32          `json:"ttlSecondsAfterFinished,omitempty"`
	Volumes                 []corev1.Volume `json:"volumes,omitempty"`
	OnExit                  string          `json:"onExit,omitempty"`
	Templates               []Template      `json:"templates"`
}

// Template is either a container template or a DAG template.
type Template struct {
	Name                  string            `json:"name"`
	Metadata              *TemplateMetadata `json:"metadata,omitempty"`
	ActiveDeadlineSeconds *int64            `json:"activeDeadlineSeconds,omitempty"`
	Container             *corev1.Container `json:"container,omitempty"`
	DAG                   *DAGTemplate      `json:"dag,omitempty"`
}

// TemplateMetadata carries labels for the pod of a container template.
type TemplateMetadata struct {
	Labels map[string]string `json:"labels,omitempty"`
}

// DAGTemplate lists the tasks of a DAG template.
type DAGTemplate struct {
	Tasks []DAGTask `json:"tasks"`
}

// DAGTask is one node of a DAG template.
type DAGTask struct {
	Name         string   `json:"name"`
	Template     string   `json:"template"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Template returns the named template.
func (w *Workflow) Template(name string) (*Template, bool) {
	for i := range w.Spec.Templates {
		if w.Spec.Templates[i].Name == name {
			return &w.Spec.Templates[i], true
		}
	}
	return nil, false
}
