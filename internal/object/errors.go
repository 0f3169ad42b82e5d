package object

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds group the concrete error types below so callers can classify a
// failure with errors.Is without matching every concrete type.
var (
	// ErrInvalidDefinitions covers structural problems in the declared set:
	// duplicates, unresolved dependencies, unknown attributes, load errors.
	ErrInvalidDefinitions = errors.New("invalid definitions")

	// ErrCycle covers circular depends_on declarations.
	ErrCycle = errors.New("cyclic dependency")

	// ErrProvider covers live-state fetch failures.
	ErrProvider = errors.New("state provider error")

	// ErrExecution covers failures applying a single plan action.
	ErrExecution = errors.New("execution error")
)

// DuplicateObjectError reports the same (type, name) declared more than once.
type DuplicateObjectError struct {
	Key Key
}

func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("duplicate object declaration: %s", e.Key)
}

func (e *DuplicateObjectError) Unwrap() error { return ErrInvalidDefinitions }

// UnresolvedDependencyError reports a depends_on entry (explicit or implied
// by a reference attribute) that does not match any declared object.
type UnresolvedDependencyError struct {
	Key     Key // the object declaring the dependency
	Missing Key // the dependency that does not exist
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("object %s depends on %s, which is not declared", e.Key, e.Missing)
}

func (e *UnresolvedDependencyError) Unwrap() error { return ErrInvalidDefinitions }

// CyclicDependencyError reports one concrete dependency cycle. Cycle holds
// the offending path in dependency order; the first key is repeated at the
// end to close the loop.
type CyclicDependencyError struct {
	Cycle []Key
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, 0, len(e.Cycle))
	for _, k := range e.Cycle {
		parts = append(parts, k.String())
	}
	return "cyclic dependency: " + strings.Join(parts, " -> ")
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCycle }

// UnknownAttributeError reports an attribute declared on an object that is
// not part of that object type's registered schema.
type UnknownAttributeError struct {
	Key       Key
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("object %s declares unknown attribute %q for type %q", e.Key, e.Attribute, e.Key.Type)
}

func (e *UnknownAttributeError) Unwrap() error { return ErrInvalidDefinitions }

// MissingAttributeError reports a required attribute (one with no schema
// default) absent from a declaration.
type MissingAttributeError struct {
	Key       Key
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("object %s is missing required attribute %q", e.Key, e.Attribute)
}

func (e *MissingAttributeError) Unwrap() error { return ErrInvalidDefinitions }

// ProviderError wraps a state provider failure for one object.
type ProviderError struct {
	Key Key
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("fetching live state of %s: %v", e.Key, e.Err)
}

func (e *ProviderError) Unwrap() []error { return []error{ErrProvider, e.Err} }

// ExecutionError wraps an executor failure for one plan action.
type ExecutionError struct {
	Key Key
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("applying %s: %v", e.Key, e.Err)
}

func (e *ExecutionError) Unwrap() []error { return []error{ErrExecution, e.Err} }
