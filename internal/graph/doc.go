// Package graph builds the dependency graph over declared objects and
// derives the deterministic execution order.
//
// Build validates the declared set (duplicates, unknown types, unresolved
// dependencies) and records both explicit depends_on edges and implicit
// edges implied by reference-typed attributes. TopoSort runs Kahn's
// algorithm with a lexicographic tie-break so the order is stable and
// diffable across runs; on failure a DFS pass extracts one concrete cycle
// for the error message.
package graph
