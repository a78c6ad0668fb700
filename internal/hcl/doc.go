// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, expression
// evaluation against the caller's variables, and translation of the decoded
// blocks into the format-agnostic config.Model.
package hcl
