// Package tasktemplate turns an environment configuration into the
// task.Template every step for that environment is cloned from.
//
// Build is deterministic: identical input yields an identical template. It
// enforces that resource requests never exceed limits.
package tasktemplate
