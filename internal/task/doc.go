// Package task defines the step descriptor that every pipeline stage is made
// of, and the Template prototype that steps are cloned from.
//
// A Template is created once per environment and treated as immutable after
// the first clone. Clone always returns a deep copy, so per-step mutation of
// the command, name or environment never leaks back into the prototype or
// into sibling tasks.
package task
