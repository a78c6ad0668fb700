package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it into
	// the format-agnostic model. vars are exposed to expressions in the
	// source so that values such as directory layouts can be interpolated.
	Load(ctx context.Context, vars map[string]string, paths ...string) (*Model, error)
}
