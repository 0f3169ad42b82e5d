package graph

import (
	"context"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/ctxlog"
	"github.com/schemactl/schemactl/internal/object"
)

// Graph is the validated dependency graph over a set of declared objects.
// Edges point from an object to the objects it depends on. The graph is
// built once per run and immutable afterwards.
type Graph struct {
	defs       map[object.Key]*object.Definition
	keys       []object.Key // all keys, sorted
	deps       map[object.Key]mapset.Set[object.Key]
	dependents map[object.Key]mapset.Set[object.Key]
}

// Build constructs a dependency graph from the declared definitions.
//
// It rejects duplicate declarations of the same key, object types absent
// from the catalog, and dependencies (explicit depends_on entries as well as
// reference-attribute values) that do not resolve to a declared object.
// Edges are de-duplicated; a self-dependency is reported as the degenerate
// cycle it is. Acyclicity of the whole graph is the sorter's job, not Build's.
func Build(ctx context.Context, defs []*object.Definition, cat *catalog.Catalog) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building dependency graph.", "object_count", len(defs))

	g := &Graph{
		defs:       make(map[object.Key]*object.Definition, len(defs)),
		deps:       make(map[object.Key]mapset.Set[object.Key], len(defs)),
		dependents: make(map[object.Key]mapset.Set[object.Key], len(defs)),
	}

	// First pass: register every node, rejecting duplicates up front so the
	// edge pass can trust the key set.
	for _, def := range defs {
		if _, exists := g.defs[def.Key]; exists {
			return nil, &object.DuplicateObjectError{Key: def.Key}
		}
		if _, ok := cat.Type(def.Key.Type); !ok {
			return nil, fmt.Errorf("object %s has unknown type %q: %w", def.Key, def.Key.Type, object.ErrInvalidDefinitions)
		}
		g.defs[def.Key] = def
		g.keys = append(g.keys, def.Key)
		g.deps[def.Key] = mapset.NewThreadUnsafeSet[object.Key]()
		g.dependents[def.Key] = mapset.NewThreadUnsafeSet[object.Key]()
	}
	sort.Slice(g.keys, func(i, j int) bool { return g.keys[i].Less(g.keys[j]) })

	// Second pass: explicit depends_on edges, then implicit edges derived
	// from reference-typed attributes.
	for _, def := range defs {
		for _, dep := range def.DependsOn {
			if err := g.addEdge(def.Key, dep); err != nil {
				return nil, err
			}
		}
		if err := g.linkImplicit(ctx, def, cat); err != nil {
			return nil, err
		}
	}

	logger.Debug("Dependency graph built.", "nodes", len(g.keys))
	return g, nil
}

// linkImplicit adds an edge for every reference-typed attribute whose value
// names another object, mirroring how an explicit depends_on entry behaves.
func (g *Graph) linkImplicit(ctx context.Context, def *object.Definition, cat *catalog.Catalog) error {
	logger := ctxlog.FromContext(ctx)
	spec, _ := cat.Type(def.Key.Type)

	for _, attr := range def.Attributes {
		as, ok := spec.Attribute(attr.Name)
		if !ok || as.RefType == "" {
			continue
		}
		v := attr.Value
		if v.IsNull() || v.Type() != cty.String || v.AsString() == "" {
			continue
		}
		dep := object.NewKey(as.RefType, v.AsString())
		logger.Debug("Implicit dependency from reference attribute.", "object", def.Key, "attribute", attr.Name, "dependency", dep)
		if err := g.addEdge(def.Key, dep); err != nil {
			return err
		}
	}
	return nil
}

// addEdge records "from depends on to". Duplicate edges collapse silently.
func (g *Graph) addEdge(from, to object.Key) error {
	if _, declared := g.defs[to]; !declared {
		return &object.UnresolvedDependencyError{Key: from, Missing: to}
	}
	if from == to {
		return &object.CyclicDependencyError{Cycle: []object.Key{from, from}}
	}
	g.deps[from].Add(to)
	g.dependents[to].Add(from)
	return nil
}

// Len returns the number of objects in the graph.
func (g *Graph) Len() int { return len(g.keys) }

// Keys returns every object key, sorted lexicographically by (type, name).
func (g *Graph) Keys() []object.Key {
	out := make([]object.Key, len(g.keys))
	copy(out, g.keys)
	return out
}

// Definition returns the declared definition for a key.
func (g *Graph) Definition(key object.Key) (*object.Definition, bool) {
	def, ok := g.defs[key]
	return def, ok
}

// Dependencies returns the direct dependencies of a key, sorted.
func (g *Graph) Dependencies(key object.Key) []object.Key {
	return sortedKeys(g.deps[key])
}

// Dependents returns the direct dependents of a key, sorted.
func (g *Graph) Dependents(key object.Key) []object.Key {
	return sortedKeys(g.dependents[key])
}

// TransitiveDependents returns every object that depends on key directly or
// through intermediate objects. The executor uses this to skip downstream
// actions after a failure.
func (g *Graph) TransitiveDependents(key object.Key) mapset.Set[object.Key] {
	out := mapset.NewThreadUnsafeSet[object.Key]()
	queue := []object.Key{key}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		set, ok := g.dependents[cur]
		if !ok {
			continue
		}
		for dep := range set.Iter() {
			if out.Add(dep) {
				queue = append(queue, dep)
			}
		}
	}
	return out
}

func sortedKeys(set mapset.Set[object.Key]) []object.Key {
	if set == nil {
		return nil
	}
	out := set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
