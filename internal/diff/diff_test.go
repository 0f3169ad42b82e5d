package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/schemactl/schemactl/internal/normalize"
	"github.com/schemactl/schemactl/internal/object"
)

func stateOf(pairs ...normalize.Pair) *normalize.CanonicalState {
	s := normalize.NewState()
	for _, p := range pairs {
		s.Set(p.Key, p.Value)
	}
	return s
}

func TestComputeAbsent(t *testing.T) {
	key := object.NewKey("database", "analytics")
	desired := stateOf(normalize.Pair{Key: "comment", Value: cty.StringVal("x")})

	d := Compute(key, desired, nil)
	assert.True(t, d.MissingInLive)
	assert.Empty(t, d.Fields, "a missing object is not enumerated field by field")
	assert.False(t, d.Empty())
}

func TestComputeIdenticalStatesAreNoOp(t *testing.T) {
	key := object.NewKey("database", "analytics")
	desired := stateOf(
		normalize.Pair{Key: "comment", Value: cty.StringVal("x")},
		normalize.Pair{Key: "retention_days", Value: cty.NumberIntVal(7)},
	)
	actual := stateOf(
		normalize.Pair{Key: "retention_days", Value: cty.NumberIntVal(7)},
		normalize.Pair{Key: "comment", Value: cty.StringVal("x")},
	)

	d := Compute(key, desired, actual)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Fields)
}

func TestComputeSingleFieldDrift(t *testing.T) {
	key := object.NewKey("database", "analytics")
	desired := stateOf(normalize.Pair{Key: "retention_days", Value: cty.NumberIntVal(7)})
	actual := stateOf(normalize.Pair{Key: "retention_days", Value: cty.NumberIntVal(1)})

	d := Compute(key, desired, actual)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, "retention_days", d.Fields[0].Field)
	assert.True(t, d.Fields[0].Desired.RawEquals(cty.NumberIntVal(7)))
	assert.True(t, d.Fields[0].Actual.RawEquals(cty.NumberIntVal(1)))
}

func TestComputeOrderFollowsDesired(t *testing.T) {
	key := object.NewKey("user", "etl")
	desired := stateOf(
		normalize.Pair{Key: "default_role", Value: cty.StringVal("B")},
		normalize.Pair{Key: "comment", Value: cty.StringVal("b")},
	)
	actual := stateOf(
		normalize.Pair{Key: "comment", Value: cty.StringVal("a")},
		normalize.Pair{Key: "default_role", Value: cty.StringVal("A")},
	)

	d := Compute(key, desired, actual)
	require.Len(t, d.Fields, 2)
	assert.Equal(t, "default_role", d.Fields[0].Field, "diff order is declared order, not live order")
	assert.Equal(t, "comment", d.Fields[1].Field)
}

func TestComputeActualOnlyKeysIgnored(t *testing.T) {
	key := object.NewKey("database", "analytics")
	desired := stateOf(normalize.Pair{Key: "comment", Value: cty.StringVal("x")})
	actual := stateOf(
		normalize.Pair{Key: "comment", Value: cty.StringVal("x")},
		normalize.Pair{Key: "owner", Value: cty.StringVal("ACCOUNTADMIN")},
	)

	d := Compute(key, desired, actual)
	assert.True(t, d.Empty(), "undeclared live attributes are never dropped")
}

func TestComputeFieldAbsentFromActual(t *testing.T) {
	key := object.NewKey("schema", "staging")
	desired := stateOf(normalize.Pair{Key: "database", Value: cty.StringVal("ANALYTICS")})
	actual := stateOf()

	d := Compute(key, desired, actual)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, cty.NilVal, d.Fields[0].Actual)
}

func TestComputeListEqualityIsOrderSensitive(t *testing.T) {
	key := object.NewKey("role", "a")
	listAB := cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})
	listBA := cty.ListVal([]cty.Value{cty.StringVal("b"), cty.StringVal("a")})

	d := Compute(key,
		stateOf(normalize.Pair{Key: "grants", Value: listAB}),
		stateOf(normalize.Pair{Key: "grants", Value: listBA}))
	assert.Len(t, d.Fields, 1, "reordered lists are drift")
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	key := object.NewKey("database", "analytics")
	desired := stateOf(normalize.Pair{Key: "comment", Value: cty.StringVal("x")})
	actual := stateOf(normalize.Pair{Key: "comment", Value: cty.StringVal("y")})

	_ = Compute(key, desired, actual)

	v, _ := desired.Get("comment")
	assert.True(t, v.RawEquals(cty.StringVal("x")))
	v, _ = actual.Get("comment")
	assert.True(t, v.RawEquals(cty.StringVal("y")))
	assert.Equal(t, 1, desired.Len())
	assert.Equal(t, 1, actual.Len())
}
