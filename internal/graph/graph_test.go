package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/object"
)

// def builds a minimal definition with explicit dependencies.
func def(t *testing.T, objectType, name string, deps ...string) *object.Definition {
	t.Helper()
	d := &object.Definition{Key: object.NewKey(objectType, name), DependsOn: []object.Key{}}
	for _, ref := range deps {
		dep, err := object.ParseRef(ref)
		require.NoError(t, err)
		d.DependsOn = append(d.DependsOn, dep)
	}
	return d
}

func build(t *testing.T, defs ...*object.Definition) (*Graph, error) {
	t.Helper()
	return Build(context.Background(), defs, catalog.New())
}

func TestBuild(t *testing.T) {
	t.Run("valid set", func(t *testing.T) {
		g, err := build(t,
			def(t, "role", "loader"),
			def(t, "database", "analytics", "role.loader"),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, g.Len())
		assert.Equal(t, []object.Key{object.NewKey("role", "loader")}, g.Dependencies(object.NewKey("database", "analytics")))
		assert.Equal(t, []object.Key{object.NewKey("database", "analytics")}, g.Dependents(object.NewKey("role", "loader")))
	})

	t.Run("duplicate declaration is rejected", func(t *testing.T) {
		_, err := build(t, def(t, "role", "loader"), def(t, "role", "LOADER"))
		var dup *object.DuplicateObjectError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, object.NewKey("role", "loader"), dup.Key)
	})

	t.Run("unresolved dependency is rejected", func(t *testing.T) {
		_, err := build(t, def(t, "database", "analytics", "role.ghost"))
		var unresolved *object.UnresolvedDependencyError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, object.NewKey("database", "analytics"), unresolved.Key)
		assert.Equal(t, object.NewKey("role", "ghost"), unresolved.Missing)
	})

	t.Run("unknown object type is rejected", func(t *testing.T) {
		_, err := build(t, def(t, "spaceship", "enterprise"))
		assert.ErrorIs(t, err, object.ErrInvalidDefinitions)
	})

	t.Run("self dependency is rejected", func(t *testing.T) {
		_, err := build(t, def(t, "role", "loader", "role.loader"))
		assert.ErrorIs(t, err, object.ErrCycle)
	})

	t.Run("duplicate edges collapse", func(t *testing.T) {
		g, err := build(t,
			def(t, "role", "loader"),
			def(t, "database", "analytics", "role.loader", "role.loader"),
		)
		require.NoError(t, err)
		assert.Len(t, g.Dependencies(object.NewKey("database", "analytics")), 1)
	})

	t.Run("reference attribute implies an edge", func(t *testing.T) {
		schemaDef := def(t, "schema", "staging")
		schemaDef.Attributes = []object.Attribute{
			{Name: "database", Value: cty.StringVal("analytics")},
		}
		g, err := build(t, def(t, "database", "analytics"), schemaDef)
		require.NoError(t, err)
		assert.Equal(t,
			[]object.Key{object.NewKey("database", "analytics")},
			g.Dependencies(object.NewKey("schema", "staging")))
	})

	t.Run("reference to undeclared object is unresolved", func(t *testing.T) {
		schemaDef := def(t, "schema", "staging")
		schemaDef.Attributes = []object.Attribute{
			{Name: "database", Value: cty.StringVal("ghost")},
		}
		_, err := build(t, schemaDef)
		var unresolved *object.UnresolvedDependencyError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, object.NewKey("database", "ghost"), unresolved.Missing)
	})
}

func TestTopoSort(t *testing.T) {
	t.Run("dependencies precede dependents", func(t *testing.T) {
		g, err := build(t,
			def(t, "schema", "staging", "database.analytics"),
			def(t, "database", "analytics", "role.loader"),
			def(t, "role", "loader"),
		)
		require.NoError(t, err)

		order, err := g.TopoSort()
		require.NoError(t, err)
		require.Len(t, order, 3)

		index := make(map[object.Key]int)
		for i, k := range order {
			index[k] = i
		}
		for _, k := range g.Keys() {
			for _, dep := range g.Dependencies(k) {
				assert.Less(t, index[dep], index[k], "%s must precede %s", dep, k)
			}
		}
	})

	t.Run("ready nodes order lexicographically", func(t *testing.T) {
		g, err := build(t,
			def(t, "role", "b"),
			def(t, "role", "a"),
			def(t, "database", "z"),
		)
		require.NoError(t, err)

		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []object.Key{
			object.NewKey("database", "z"),
			object.NewKey("role", "a"),
			object.NewKey("role", "b"),
		}, order)
	})

	t.Run("order is stable across runs", func(t *testing.T) {
		g, err := build(t,
			def(t, "role", "a"),
			def(t, "user", "etl", "role.a"),
			def(t, "database", "analytics", "role.a"),
			def(t, "schema", "staging", "database.analytics"),
		)
		require.NoError(t, err)

		first, err := g.TopoSort()
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := g.TopoSort()
			require.NoError(t, err)
			if diff := cmp.Diff(first, again); diff != "" {
				t.Fatalf("order changed between runs (-first +again):\n%s", diff)
			}
		}
	})

	t.Run("two node cycle reports the exact cycle", func(t *testing.T) {
		g, err := build(t,
			def(t, "role", "x", "role.y"),
			def(t, "role", "y", "role.x"),
		)
		require.NoError(t, err)

		_, err = g.TopoSort()
		var cyclic *object.CyclicDependencyError
		require.ErrorAs(t, err, &cyclic)

		// The path closes on its first key; the rotation is not specified.
		require.Len(t, cyclic.Cycle, 3)
		assert.Equal(t, cyclic.Cycle[0], cyclic.Cycle[2])
		assert.ElementsMatch(t,
			[]object.Key{object.NewKey("role", "x"), object.NewKey("role", "y")},
			cyclic.Cycle[:2])
	})

	t.Run("cycle in a disjoint component is found", func(t *testing.T) {
		g, err := build(t,
			def(t, "role", "a"),
			def(t, "user", "etl", "role.a"),
			def(t, "database", "p", "database.q"),
			def(t, "database", "q", "database.p"),
		)
		require.NoError(t, err)

		_, err = g.TopoSort()
		require.Error(t, err)
		assert.True(t, errors.Is(err, object.ErrCycle))
	})
}

func TestTransitiveDependents(t *testing.T) {
	g, err := build(t,
		def(t, "role", "a"),
		def(t, "database", "analytics", "role.a"),
		def(t, "schema", "staging", "database.analytics"),
		def(t, "user", "etl"),
	)
	require.NoError(t, err)

	dependents := g.TransitiveDependents(object.NewKey("role", "a"))
	assert.Equal(t, 2, dependents.Cardinality())
	assert.True(t, dependents.Contains(object.NewKey("database", "analytics")))
	assert.True(t, dependents.Contains(object.NewKey("schema", "staging")))
	assert.False(t, dependents.Contains(object.NewKey("user", "etl")))
}
