// Package workflow is the in-memory model of a multi-stage pipeline: a
// Pipeline owns named Subgraphs, and each Subgraph owns an ordered list of
// nodes that are either leaf tasks or references to another Subgraph.
//
// # Append-only assembly
//
// A Subgraph only grows. A node may depend only on nodes that were added to
// the same Subgraph before it, so the insertion order is always a valid
// topological order and no separate cycle detection is needed for tasks.
// Violations surface immediately as *DuplicateNameError or
// *UnknownPredecessorError.
//
// References between sub-graphs are checked at insertion time as well: a
// sub-graph may never (directly or transitively) run itself.
//
// # Ownership
//
// A Pipeline is built by a single owner. None of the types here are safe for
// concurrent mutation; hand a Pipeline over rather than sharing it.
package workflow
