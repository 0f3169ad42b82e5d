package plan

import (
	"github.com/google/uuid"

	"github.com/schemactl/schemactl/internal/diff"
	"github.com/schemactl/schemactl/internal/normalize"
	"github.com/schemactl/schemactl/internal/object"
)

// Kind classifies what a plan action does to its object.
type Kind int

const (
	// NoOp: live state already matches the declaration.
	NoOp Kind = iota
	// Create: the object is absent from the live system.
	Create
	// Alter: the object exists but one or more attributes drifted.
	Alter
	// Drop: destroy mode removes the object.
	Drop
	// Failed: the object's live state could not be fetched; the action
	// records the error instead of a classification.
	Failed
)

// String returns the lower-case action name.
func (k Kind) String() string {
	switch k {
	case NoOp:
		return "no-op"
	case Create:
		return "create"
	case Alter:
		return "alter"
	case Drop:
		return "drop"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action is one entry of a Plan.
type Action struct {
	Key  object.Key
	Kind Kind

	// Diff is the comparison result that produced the classification. It is
	// present for every kind except Failed.
	Diff *diff.Diff

	// Desired is the object's canonical desired state; the executor renders
	// create statements from it.
	Desired *normalize.CanonicalState

	// WaitTime is the settle delay in seconds after applying this action.
	WaitTime int

	// Err records the per-object provider failure for a Failed action.
	Err error
}

// Summary counts plan actions by kind.
type Summary struct {
	Create int
	Alter  int
	Drop   int
	NoOp   int
	Failed int
}

// Plan is the ordered, diffed set of actions one reconciliation run intends
// to apply. The order is the topological order of the dependency graph
// (reversed in destroy mode). A Plan is immutable once built.
type Plan struct {
	// ID identifies the run; it reappears in the execution report.
	ID string

	// Destroy marks a plan built in destroy mode.
	Destroy bool

	Actions []Action
}

// newPlan stamps a fresh plan with a run ID.
func newPlan(destroy bool, actions []Action) *Plan {
	return &Plan{ID: uuid.NewString(), Destroy: destroy, Actions: actions}
}

// Summary tallies the plan's actions.
func (p *Plan) Summary() Summary {
	var s Summary
	for _, a := range p.Actions {
		switch a.Kind {
		case Create:
			s.Create++
		case Alter:
			s.Alter++
		case Drop:
			s.Drop++
		case NoOp:
			s.NoOp++
		case Failed:
			s.Failed++
		}
	}
	return s
}
