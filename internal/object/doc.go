// Package object defines the shared domain model for declared database
// objects: the (type, name) Key used to identify objects everywhere, the
// Definition describing an object's desired state, and the error taxonomy
// for reconciliation failures.
//
// The package is a leaf: everything else in the reconciler depends on it and
// it depends on nothing but the cty value domain.
package object
