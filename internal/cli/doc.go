// Package cli defines the schemactl command tree (plan, apply, destroy) and
// the mapping from pipeline failures to distinct process exit codes.
package cli
