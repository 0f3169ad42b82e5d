package graph

import (
	"container/heap"

	"github.com/schemactl/schemactl/internal/object"
)

// keyHeap is a min-heap of object keys ordered lexicographically by
// (type, name). It is the ready queue for Kahn's algorithm; the heap order
// is what makes the resulting topological order deterministic.
type keyHeap []object.Key

func (h keyHeap) Len() int            { return len(h) }
func (h keyHeap) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h keyHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *keyHeap) Push(x any)         { *h = append(*h, x.(object.Key)) }
func (h *keyHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopoSort returns a deterministic topological ordering of the graph: every
// object appears after all of its dependencies, and objects with no relative
// ordering constraint appear in lexicographic (type, name) order.
//
// On a cycle it returns a CyclicDependencyError carrying one concrete cycle
// path. The witness search is a separate DFS pass run only on failure, so
// the common acyclic case stays O(V+E).
func (g *Graph) TopoSort() ([]object.Key, error) {
	// remaining counts the unemitted dependencies of each node; a node is
	// ready once the count reaches zero.
	remaining := make(map[object.Key]int, len(g.keys))
	ready := &keyHeap{}
	for _, k := range g.keys {
		remaining[k] = g.deps[k].Cardinality()
		if remaining[k] == 0 {
			*ready = append(*ready, k)
		}
	}
	heap.Init(ready)

	order := make([]object.Key, 0, len(g.keys))
	for ready.Len() > 0 {
		k := heap.Pop(ready).(object.Key)
		order = append(order, k)
		for _, dependent := range g.Dependents(k) {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				heap.Push(ready, dependent)
			}
		}
	}

	if len(order) != len(g.keys) {
		return nil, &object.CyclicDependencyError{Cycle: g.findCycle()}
	}
	return order, nil
}

// findCycle extracts one concrete cycle path with a color-marking DFS over
// the dependency edges. Visit order is the sorted key order, so the witness
// is stable across runs. Only called after TopoSort has proven a cycle
// exists, so it always finds one.
func (g *Graph) findCycle() []object.Key {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)

	color := make(map[object.Key]int, len(g.keys))
	parent := make(map[object.Key]object.Key, len(g.keys))
	var cycle []object.Key

	var dfs func(u object.Key) bool
	dfs = func(u object.Key) bool {
		color[u] = gray
		for _, v := range g.Dependencies(u) {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back-edge u -> v closes the cycle. Walk the parent chain
				// from u back to v to reconstruct the path.
				path := []object.Key{u}
				for cur := u; cur != v; {
					cur = parent[cur]
					path = append(path, cur)
				}
				// The chain was collected dependency-first in reverse;
				// flip it and close the loop.
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				cycle = append(path, path[0])
				return true
			}
		}
		color[u] = black
		return false
	}

	for _, k := range g.keys {
		if color[k] == white && dfs(k) {
			break
		}
	}
	return cycle
}
