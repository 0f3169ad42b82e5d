// Package diff compares two canonical states and produces the structured
// field-level differences that classify an object as no-op, create or alter.
package diff

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/schemactl/schemactl/internal/normalize"
	"github.com/schemactl/schemactl/internal/object"
)

// FieldDiff is a single attribute-level difference. Actual is cty.NilVal
// when the live state has no value for the field at all.
type FieldDiff struct {
	Field   string
	Desired cty.Value
	Actual  cty.Value
}

// Diff is the structured comparison result for one object.
type Diff struct {
	Key object.Key

	// MissingInLive reports that the object does not exist on the target at
	// all. Fields is empty in that case: the full attribute set is implicitly
	// "to create", not enumerated field by field.
	MissingInLive bool

	// Fields lists the differing attributes in declared-key order.
	Fields []FieldDiff
}

// Empty reports whether the object needs no action.
func (d *Diff) Empty() bool {
	return !d.MissingInLive && len(d.Fields) == 0
}

// Compute compares a desired canonical state against the actual one. A nil
// actual means the object is absent from the live system. Both inputs must
// have been produced for the same object key; neither is mutated.
//
// Every key of desired is checked, in desired's order; keys present only in
// actual are ignored — the reconciler never tries to "drop" attributes the
// declaration does not mention. Values compare by structural equality, which
// is order-sensitive for lists.
func Compute(key object.Key, desired, actual *normalize.CanonicalState) *Diff {
	d := &Diff{Key: key}

	if actual == nil {
		d.MissingInLive = true
		return d
	}

	for _, pair := range desired.Pairs() {
		got, ok := actual.Get(pair.Key)
		if !ok {
			d.Fields = append(d.Fields, FieldDiff{Field: pair.Key, Desired: pair.Value, Actual: cty.NilVal})
			continue
		}
		if !pair.Value.RawEquals(got) {
			d.Fields = append(d.Fields, FieldDiff{Field: pair.Key, Desired: pair.Value, Actual: got})
		}
	}
	return d
}
