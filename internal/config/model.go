package config

import (
	"fmt"
	"sort"
	"time"
)

// Model is the unified, format-agnostic representation of the configuration
// used to generate a workflow.
type Model struct {
	Workflow     *Workflow
	Environments map[string]*Environment
}

// Environment returns the named environment or an error naming the ones that
// are available.
func (m *Model) Environment(name string) (*Environment, error) {
	if env, ok := m.Environments[name]; ok {
		return env, nil
	}
	known := make([]string, 0, len(m.Environments))
	for k := range m.Environments {
		known = append(known, k)
	}
	sort.Strings(known)
	return nil, fmt.Errorf("environment %q is not defined (known: %v)", name, known)
}

// Workflow holds the workflow-wide settings.
type Workflow struct {
	Namespace    string
	Bucket       string
	ConfigPath   string
	MainRepo     string
	ExtraRepos   []string
	TestEndpoint bool
	UseBasicAuth bool
	// TTL is how long the engine keeps a finished workflow before garbage
	// collecting it.
	TTL    time.Duration
	Labels map[string]string
}

// Environment describes the shared settings every step built for it inherits.
type Environment struct {
	Name            string
	Image           string
	ImagePullPolicy string
	WorkingDir      string
	Deadline        time.Duration
	Limits          Resources
	Requests        Resources
	Volumes         []Volume
	Env             map[string]string
	Labels          map[string]string
}

// Resources is a cpu/memory pair in Kubernetes quantity notation.
type Resources struct {
	CPU    string
	Memory string
}

// Volume is a shared volume mounted into every step. Exactly one of
// ClaimName and SecretName is set.
type Volume struct {
	Name       string
	MountPath  string
	ClaimName  string
	SecretName string
}
