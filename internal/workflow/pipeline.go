package workflow

import (
	"maps"
	"time"

	corev1 "k8s.io/api/core/v1"
)

// Canonical sub-graph names.
const (
	EntryDAG = "e2e"
	TestsDAG = "gke-tests"
	ExitDAG  = "exit-handler"
)

// Pipeline is the complete assembled workflow.
type Pipeline struct {
	Name      string
	Namespace string
	// Labels are attached to the workflow object itself.
	Labels map[string]string
	// TTL is how long the engine keeps the finished workflow. Zero leaves it
	// to the engine default.
	TTL time.Duration
	// Volumes are the pod-level volumes task mounts refer to.
	Volumes []corev1.Volume

	// Entry names the sub-graph the engine starts with.
	Entry string
	// Exit names the sub-graph run after the entry finishes, whatever the
	// outcome. Empty disables it.
	Exit string

	subgraphs map[string]*Subgraph
	order     []string
}

// New creates a pipeline with the canonical entry, tests and exit
// sub-graphs, all empty.
func New(name string) *Pipeline {
	p := &Pipeline{
		Name:      name,
		Labels:    map[string]string{},
		Entry:     EntryDAG,
		Exit:      ExitDAG,
		subgraphs: make(map[string]*Subgraph),
	}
	p.Declare(EntryDAG)
	p.Declare(TestsDAG)
	p.Declare(ExitDAG)
	return p
}

// Declare adds an empty sub-graph. Declaring an existing name returns the
// existing sub-graph unchanged.
func (p *Pipeline) Declare(name string) *Subgraph {
	if sg, ok := p.subgraphs[name]; ok {
		return sg
	}
	sg := &Subgraph{
		name:     name,
		pipeline: p,
		index:    make(map[string]*Node),
	}
	p.subgraphs[name] = sg
	p.order = append(p.order, name)
	return sg
}

// Subgraph looks up a declared sub-graph.
func (p *Pipeline) Subgraph(name string) (*Subgraph, error) {
	sg, ok := p.subgraphs[name]
	if !ok {
		return nil, &NotFoundError{Subgraph: name}
	}
	return sg, nil
}

// Subgraphs returns all sub-graphs in declaration order.
func (p *Pipeline) Subgraphs() []*Subgraph {
	out := make([]*Subgraph, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.subgraphs[name])
	}
	return out
}

// AddVolumes registers pod-level volumes, skipping names already present.
func (p *Pipeline) AddVolumes(volumes ...corev1.Volume) {
	for _, v := range volumes {
		if p.hasVolume(v.Name) {
			continue
		}
		p.Volumes = append(p.Volumes, *v.DeepCopy())
	}
}

func (p *Pipeline) hasVolume(name string) bool {
	for _, v := range p.Volumes {
		if v.Name == name {
			return true
		}
	}
	return false
}

// ApplyLabels merges labels into every task of every sub-graph. Applying the
// same labels again changes nothing.
func (p *Pipeline) ApplyLabels(labels map[string]string) {
	if len(labels) == 0 {
		return
	}
	labels = maps.Clone(labels)
	for _, sg := range p.Subgraphs() {
		for _, n := range sg.nodes {
			if n.Task != nil {
				n.Task.MergeLabels(labels)
			}
		}
	}
}

// Validate checks the pipeline-level invariants: the entry sub-graph exists,
// the exit sub-graph exists when named, and no sub-graph can reach itself
// through reference nodes.
func (p *Pipeline) Validate() error {
	if _, err := p.Subgraph(p.Entry); err != nil {
		return err
	}
	if p.Exit != "" {
		if _, err := p.Subgraph(p.Exit); err != nil {
			return err
		}
	}
	for _, name := range p.order {
		if path := p.referencePath(name, name); path != nil {
			return &SelfReferenceError{Subgraph: name, Path: path}
		}
	}
	return nil
}

// referencePath returns the chain of sub-graphs through which from reaches
// target via reference nodes, or nil if it cannot.
func (p *Pipeline) referencePath(from, target string) []string {
	visited := make(map[string]bool)
	var walk func(name string) []string
	walk = func(name string) []string {
		if visited[name] {
			return nil
		}
		visited[name] = true
		sg, ok := p.subgraphs[name]
		if !ok {
			return nil
		}
		for _, n := range sg.nodes {
			if n.Subgraph == "" {
				continue
			}
			if n.Subgraph == target {
				return []string{name, target}
			}
			if rest := walk(n.Subgraph); rest != nil {
				return append([]string{name}, rest...)
			}
		}
		return nil
	}
	return walk(from)
}
