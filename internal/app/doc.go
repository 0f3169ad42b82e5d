// Package app wires the reconciliation pipeline end to end: target config,
// definition loading, graph construction, plan building, and execution. The
// CLI layer constructs an App per invocation; tests drive the same surface
// with fake providers and connections.
package app
