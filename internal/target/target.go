// Package target loads the target connection configuration: a TOML file of
// named targets, defaults merged underneath, and environment overrides
// applied on top.
package target

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
)

// Target is one named entry of the targets file.
type Target struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"`
	Role         string `toml:"role"`
	FetchWorkers int    `toml:"fetch_workers"`
}

// File is the parsed targets file.
type File struct {
	Targets map[string]Target `toml:"targets"`
}

// Context is the resolved, immutable target a run operates against. It is
// threaded explicitly through provider and executor construction rather than
// living in any ambient global.
type Context struct {
	Name         string
	Driver       string
	DSN          string
	Role         string
	FetchWorkers int
}

// defaults fills the fields a target entry may omit.
func defaults() Target {
	return Target{Driver: "postgres", FetchWorkers: 8}
}

// Load parses a targets file.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("loading targets file %s: %w", path, err)
	}
	return &f, nil
}

// Resolve picks a named target and produces the final Context:
// SCHEMACTL_TARGET_<NAME>_{DSN,DRIVER,ROLE} environment variables override
// file values, and defaults fill whatever is still unset.
func (f *File) Resolve(name string) (Context, error) {
	t, ok := f.Targets[name]
	if !ok {
		known := make([]string, 0, len(f.Targets))
		for n := range f.Targets {
			known = append(known, n)
		}
		sort.Strings(known)
		return Context{}, fmt.Errorf("unknown target %q (known targets: %s)", name, strings.Join(known, ", "))
	}

	applyEnvOverrides(&t, name)

	if err := mergo.Merge(&t, defaults()); err != nil {
		return Context{}, fmt.Errorf("merging target defaults: %w", err)
	}

	return Context{
		Name:         name,
		Driver:       t.Driver,
		DSN:          t.DSN,
		Role:         t.Role,
		FetchWorkers: t.FetchWorkers,
	}, nil
}

// applyEnvOverrides reads SCHEMACTL_TARGET_<NAME>_<FIELD> variables. The
// target name is upper-cased with dashes folded to underscores to form a
// valid variable name.
func applyEnvOverrides(t *Target, name string) {
	prefix := "SCHEMACTL_TARGET_" + strings.ReplaceAll(strings.ToUpper(name), "-", "_") + "_"

	if v, ok := os.LookupEnv(prefix + "DSN"); ok {
		t.DSN = v
	}
	if v, ok := os.LookupEnv(prefix + "DRIVER"); ok {
		t.Driver = v
	}
	if v, ok := os.LookupEnv(prefix + "ROLE"); ok {
		t.Role = v
	}
}
