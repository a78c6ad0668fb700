package workflow

import (
	"fmt"
	"strings"
)

// DuplicateNameError is returned when a node name is already taken in a sub-graph.
type DuplicateNameError struct {
	Subgraph string
	Name     string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("sub-graph %q already has a node named %q", e.Subgraph, e.Name)
}

// UnknownPredecessorError is returned when a node depends on a name that has
// not been added to the sub-graph yet.
type UnknownPredecessorError struct {
	Subgraph    string
	Name        string
	Predecessor string
}

func (e *UnknownPredecessorError) Error() string {
	return fmt.Sprintf("node %q in sub-graph %q depends on %q, which has not been added",
		e.Name, e.Subgraph, e.Predecessor)
}

// NotFoundError is returned when a sub-graph name was never declared.
type NotFoundError struct {
	Subgraph string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sub-graph %q not found", e.Subgraph)
}

// SelfReferenceError is returned when a sub-graph would end up running itself.
// Path lists the sub-graphs along the offending chain of references.
type SelfReferenceError struct {
	Subgraph string
	Path     []string
}

func (e *SelfReferenceError) Error() string {
	return fmt.Sprintf("sub-graph %q would run itself: %s", e.Subgraph, strings.Join(e.Path, " -> "))
}
