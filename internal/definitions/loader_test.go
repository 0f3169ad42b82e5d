package definitions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/schemactl/schemactl/internal/object"
	"github.com/schemactl/schemactl/internal/testutil"
)

func load(t *testing.T, files map[string]string) ([]*object.Definition, error) {
	t.Helper()
	dir := testutil.WriteDefinitions(t, files)
	return NewLoader().Load(context.Background(), dir)
}

func TestLoad(t *testing.T) {
	t.Run("full object block", func(t *testing.T) {
		defs, err := load(t, map[string]string{
			"analytics.hcl": `
object "database" "analytics" {
  depends_on = ["role.loader"]
  wait_time  = 30

  attributes {
    comment        = "analytics landing zone"
    retention_days = 7
  }
}

object "role" "loader" {
  depends_on = []
}
`,
		})
		require.NoError(t, err)
		require.Len(t, defs, 2)

		db := defs[0]
		assert.Equal(t, object.NewKey("database", "analytics"), db.Key)
		assert.Equal(t, []object.Key{object.NewKey("role", "loader")}, db.DependsOn)
		assert.Equal(t, 30, db.WaitTime)

		require.Len(t, db.Attributes, 2)
		assert.Equal(t, "comment", db.Attributes[0].Name, "source order is preserved")
		assert.Equal(t, "retention_days", db.Attributes[1].Name)
		assert.True(t, db.Attributes[1].Value.RawEquals(cty.NumberIntVal(7)))

		role := defs[1]
		assert.Empty(t, role.DependsOn)
		assert.NotNil(t, role.DependsOn, "empty dependency set is explicit, never nil")
	})

	t.Run("null depends_on means empty", func(t *testing.T) {
		defs, err := load(t, map[string]string{
			"role.hcl": `
object "role" "loader" {
  depends_on = null
}
`,
		})
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.NotNil(t, defs[0].DependsOn)
		assert.Empty(t, defs[0].DependsOn)
	})

	t.Run("absent depends_on is a load error", func(t *testing.T) {
		_, err := load(t, map[string]string{
			"role.hcl": `
object "role" "loader" {
}
`,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, object.ErrInvalidDefinitions)
		assert.Contains(t, err.Error(), "depends_on is required")
	})

	t.Run("duplicate declarations across files are rejected", func(t *testing.T) {
		_, err := load(t, map[string]string{
			"a.hcl": `
object "role" "loader" {
  depends_on = []
}
`,
			"b.hcl": `
object "role" "LOADER" {
  depends_on = []
}
`,
		})
		var dup *object.DuplicateObjectError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, object.NewKey("role", "loader"), dup.Key)
	})

	t.Run("unsupported top level argument is rejected", func(t *testing.T) {
		_, err := load(t, map[string]string{
			"role.hcl": `
object "role" "loader" {
  depends_on = []
  owner      = "me"
}
`,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported argument "owner"`)
	})

	t.Run("value domain is enforced", func(t *testing.T) {
		_, err := load(t, map[string]string{
			"role.hcl": `
object "role" "loader" {
  depends_on = []
  attributes {
    nested = { a = 1 }
  }
}
`,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, object.ErrInvalidDefinitions)
	})

	t.Run("list of strings is allowed", func(t *testing.T) {
		defs, err := load(t, map[string]string{
			"role.hcl": `
object "role" "loader" {
  depends_on = []
  attributes {
    tags = ["etl", "managed"]
  }
}
`,
		})
		require.NoError(t, err)
		require.Len(t, defs[0].Attributes, 1)
		assert.True(t, defs[0].Attributes[0].Value.CanIterateElements())
	})

	t.Run("negative wait_time is rejected", func(t *testing.T) {
		_, err := load(t, map[string]string{
			"role.hcl": `
object "role" "loader" {
  depends_on = []
  wait_time  = -5
}
`,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wait_time")
	})

	t.Run("no definition files is an error", func(t *testing.T) {
		dir := t.TempDir()
		_, err := NewLoader().Load(context.Background(), dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, object.ErrInvalidDefinitions)
	})
}
