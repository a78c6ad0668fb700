package workflow

import (
	"slices"

	"github.com/specialistvlad/argoflow/internal/task"
)

// Node is one entry of a sub-graph. It is either a leaf task (Task set) or a
// reference that runs a whole sub-graph as a single unit (Subgraph set).
type Node struct {
	Name     string
	Task     *task.Task
	Subgraph string

	deps []string
}

// Dependencies returns the names of the node's predecessors.
func (n *Node) Dependencies() []string {
	if n.Task != nil {
		return n.Task.Dependencies
	}
	return n.deps
}

// IsReference reports whether the node stands for another sub-graph.
func (n *Node) IsReference() bool {
	return n.Subgraph != ""
}

// Subgraph is a named, append-only DAG inside a Pipeline.
type Subgraph struct {
	name     string
	pipeline *Pipeline
	nodes    []*Node
	index    map[string]*Node
}

// Name returns the sub-graph name.
func (s *Subgraph) Name() string { return s.name }

// Len returns the number of nodes.
func (s *Subgraph) Len() int { return len(s.nodes) }

// Nodes returns the nodes in insertion order.
func (s *Subgraph) Nodes() []*Node {
	return slices.Clone(s.nodes)
}

// Node looks up a node by name.
func (s *Subgraph) Node(name string) (*Node, bool) {
	n, ok := s.index[name]
	return n, ok
}

// Task looks up a leaf task by name.
func (s *Subgraph) Task(name string) (*task.Task, bool) {
	n, ok := s.index[name]
	if !ok || n.Task == nil {
		return nil, false
	}
	return n.Task, true
}

// AddTask clones tmpl into a new task called name, running command after
// deps. extraEnv is merged over the template environment, winning on shared
// keys. The template and all previously added tasks are left untouched.
func (s *Subgraph) AddTask(tmpl *task.Template, name string, command []string, deps []string, extraEnv map[string]string) (*task.Task, error) {
	if err := s.checkInsert(name, deps); err != nil {
		return nil, err
	}

	t := tmpl.Clone()
	t.Name = name
	t.Command = slices.Clone(command)
	t.MergeEnv(extraEnv)
	t.Dependencies = slices.Clone(deps)

	s.insert(&Node{Name: name, Task: t})
	return t, nil
}

// AddSubgraphAsTask adds a node that runs the whole sub-graph subgraphName
// after deps. The node is named after the sub-graph, so dependents in this
// sub-graph refer to it by that name and never see its inner tasks.
func (s *Subgraph) AddSubgraphAsTask(subgraphName string, deps []string) (*Node, error) {
	if err := s.checkInsert(subgraphName, deps); err != nil {
		return nil, err
	}
	if _, err := s.pipeline.Subgraph(subgraphName); err != nil {
		return nil, err
	}
	if subgraphName == s.name {
		return nil, &SelfReferenceError{Subgraph: s.name, Path: []string{s.name, s.name}}
	}
	if path := s.pipeline.referencePath(subgraphName, s.name); path != nil {
		return nil, &SelfReferenceError{Subgraph: s.name, Path: append([]string{s.name}, path...)}
	}

	n := &Node{Name: subgraphName, Subgraph: subgraphName, deps: slices.Clone(deps)}
	s.insert(n)
	return n, nil
}

func (s *Subgraph) checkInsert(name string, deps []string) error {
	if _, exists := s.index[name]; exists {
		return &DuplicateNameError{Subgraph: s.name, Name: name}
	}
	for _, d := range deps {
		if _, ok := s.index[d]; !ok {
			return &UnknownPredecessorError{Subgraph: s.name, Name: name, Predecessor: d}
		}
	}
	return nil
}

func (s *Subgraph) insert(n *Node) {
	s.nodes = append(s.nodes, n)
	s.index[n.Name] = n
}
