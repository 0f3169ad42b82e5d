package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteDefinitions writes HCL definition fixtures into a fresh temp
// directory and returns its path. The map key is the relative file name.
func WriteDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// WriteTargets writes a targets.toml fixture and returns its path.
func WriteTargets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
