package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemactl/schemactl/internal/testutil"
)

const fixture = `
[targets.warehouse]
driver        = "postgres"
dsn           = "postgres://ops@db.internal/warehouse?sslmode=require"
role          = "SYSADMIN"
fetch_workers = 4

[targets.events]
dsn = "clickhouse://events.internal:9000/default"
`

func TestLoadAndResolve(t *testing.T) {
	f, err := Load(testutil.WriteTargets(t, fixture))
	require.NoError(t, err)

	t.Run("explicit values survive", func(t *testing.T) {
		ctx, err := f.Resolve("warehouse")
		require.NoError(t, err)
		assert.Equal(t, "warehouse", ctx.Name)
		assert.Equal(t, "postgres", ctx.Driver)
		assert.Equal(t, "SYSADMIN", ctx.Role)
		assert.Equal(t, 4, ctx.FetchWorkers)
	})

	t.Run("defaults fill gaps", func(t *testing.T) {
		ctx, err := f.Resolve("events")
		require.NoError(t, err)
		assert.Equal(t, "postgres", ctx.Driver, "driver defaults when unset")
		assert.Equal(t, 8, ctx.FetchWorkers)
		assert.Empty(t, ctx.Role)
	})

	t.Run("unknown target lists the known ones", func(t *testing.T) {
		_, err := f.Resolve("staging")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "events, warehouse")
	})
}

func TestEnvOverridesWinOverFileValues(t *testing.T) {
	t.Setenv("SCHEMACTL_TARGET_WAREHOUSE_DSN", "postgres://override@elsewhere/db")
	t.Setenv("SCHEMACTL_TARGET_WAREHOUSE_ROLE", "SECURITYADMIN")

	f, err := Load(testutil.WriteTargets(t, fixture))
	require.NoError(t, err)

	ctx, err := f.Resolve("warehouse")
	require.NoError(t, err)
	assert.Equal(t, "postgres://override@elsewhere/db", ctx.DSN)
	assert.Equal(t, "SECURITYADMIN", ctx.Role)
	assert.Equal(t, "postgres", ctx.Driver, "untouched fields keep file values")
}

func TestEnvOverridesFoldDashesInTargetNames(t *testing.T) {
	t.Setenv("SCHEMACTL_TARGET_MY_TARGET_DRIVER", "clickhouse")

	f, err := Load(testutil.WriteTargets(t, `
[targets.my-target]
dsn = "x"
`))
	require.NoError(t, err)

	ctx, err := f.Resolve("my-target")
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", ctx.Driver)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/targets.toml")
	assert.Error(t, err)
}
