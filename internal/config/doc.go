// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from a
// concrete source.
//
// The `config.Model` is the single source of truth for the `tasktemplate`
// and `e2e` packages. Concrete implementations of the Loader, such as for
// HCL, are provided in separate packages.
package config
