package argo

import (
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/argoflow/internal/task"
	"github.com/specialistvlad/argoflow/internal/workflow"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// Render validates p and converts it to a Workflow.
func Render(p *workflow.Pipeline) (*Workflow, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline %q: %w", p.Name, err)
	}

	wf := &Workflow{
		TypeMeta: metav1.TypeMeta{APIVersion: APIVersion, Kind: Kind},
		ObjectMeta: metav1.ObjectMeta{
			Name:      p.Name,
			Namespace: p.Namespace,
			Labels:    maps.Clone(p.Labels),
		},
		Spec: WorkflowSpec{
			Entrypoint: p.Entry,
			OnExit:     p.Exit,
		},
	}
	if p.TTL > 0 {
		ttl := int32(p.TTL.Seconds())
		wf.Spec.TTLSecondsAfterFinished = &ttl
	}
	for _, v := range p.Volumes {
		wf.Spec.Volumes = append(wf.Spec.Volumes, *v.DeepCopy())
	}

	// Template names share one namespace. Sub-graphs keep their own names;
	// a leaf whose name is already taken is qualified with its sub-graph.
	taken := make(map[string]bool)
	for _, sg := range p.Subgraphs() {
		taken[sg.Name()] = true
	}

	var leaves []Template
	for _, sg := range p.Subgraphs() {
		dag := &DAGTemplate{Tasks: []DAGTask{}}
		for _, n := range sg.Nodes() {
			ref := n.Name
			if !n.IsReference() {
				var err error
				if ref, err = templateName(taken, sg.Name(), n.Name); err != nil {
					return nil, err
				}
				leaves = append(leaves, containerTemplate(ref, n.Task))
			}
			dag.Tasks = append(dag.Tasks, DAGTask{
				Name:         n.Name,
				Template:     ref,
				Dependencies: slices.Clone(n.Dependencies()),
			})
		}
		wf.Spec.Templates = append(wf.Spec.Templates, Template{Name: sg.Name(), DAG: dag})
	}
	wf.Spec.Templates = append(wf.Spec.Templates, leaves...)

	return wf, nil
}

// Marshal encodes wf as YAML.
func Marshal(wf *Workflow) ([]byte, error) {
	out, err := yaml.Marshal(wf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow %q: %w", wf.Name, err)
	}
	return out, nil
}

func templateName(taken map[string]bool, subgraph, name string) (string, error) {
	for _, candidate := range []string{name, subgraph + "-" + name} {
		if !taken[candidate] {
			taken[candidate] = true
			return candidate, nil
		}
	}
	return "", fmt.Errorf("task %q in sub-graph %q: no free template name", name, subgraph)
}

func containerTemplate(name string, t *task.Task) Template {
	tmpl := Template{
		Name: name,
		Container: &corev1.Container{
			Name:            t.Name,
			Image:           t.Image,
			ImagePullPolicy: t.ImagePullPolicy,
			Command:         slices.Clone(t.Command),
			WorkingDir:      t.WorkingDir,
			Env:             envVars(t.Env),
			Resources:       *t.Resources.DeepCopy(),
			VolumeMounts:    slices.Clone(t.VolumeMounts),
		},
	}
	if len(t.Labels) > 0 {
		tmpl.Metadata = &TemplateMetadata{Labels: maps.Clone(t.Labels)}
	}
	if t.Deadline > 0 {
		secs := int64(t.Deadline.Seconds())
		tmpl.ActiveDeadlineSeconds = &secs
	}
	return tmpl
}

// envVars returns env as a name-sorted list so the output is stable.
func envVars(env map[string]string) []corev1.EnvVar {
	if len(env) == 0 {
		return nil
	}
	out := make([]corev1.EnvVar, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, corev1.EnvVar{Name: k, Value: env[k]})
	}
	return out
}
