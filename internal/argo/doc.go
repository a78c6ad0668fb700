// Package argo translates a workflow.Pipeline into an Argo Workflows
// (argoproj.io/v1alpha1) Workflow document.
//
// Every sub-graph becomes a DAG template whose tasks reference either a
// container template (one per leaf task) or another DAG template (for
// sub-graph reference nodes). Render is the only place that knows the shape
// of the engine's document.
package argo
