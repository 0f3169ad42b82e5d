// Package plan builds and renders the ordered action plan of a
// reconciliation run.
//
// The builder walks objects in topological order, consulting the state
// provider, normalizer and diff engine for each, and classifies every object
// as no-op, create or alter (or drop in destroy mode). Live-state fetches
// run concurrently under a worker bound since they are read-only; the plan
// itself is strictly ordered and immutable once built.
package plan
