package plan

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/ctxlog"
	"github.com/schemactl/schemactl/internal/diff"
	"github.com/schemactl/schemactl/internal/graph"
	"github.com/schemactl/schemactl/internal/normalize"
	"github.com/schemactl/schemactl/internal/object"
	"github.com/schemactl/schemactl/internal/state"
)

// DefaultFetchWorkers bounds live-state fetch parallelism when the caller
// does not set one, keeping the reconciler inside a target's connection
// limit.
const DefaultFetchWorkers = 8

// Builder drives the reconciliation pipeline per object: fetch live state,
// normalize both sides, diff, classify.
type Builder struct {
	Catalog  *catalog.Catalog
	Provider state.Provider

	// Workers bounds concurrent live-state fetches. Zero means
	// DefaultFetchWorkers.
	Workers int

	// KeepGoing continues past a per-object provider error, recording it on
	// that object's action slot; when false the first provider error aborts
	// the whole run.
	KeepGoing bool
}

// fetchResult is one object's fetch outcome, written into a slot owned
// exclusively by that object, so collection needs no locking.
type fetchResult struct {
	payload state.Payload
	absent  bool
	err     error
}

// Build produces the reconciliation plan for the graph.
//
// All declared attributes are validated and normalized before any fetch is
// issued, so schema typos fail fast without touching the target. Fetches
// then run concurrently under the worker bound; fetch order does not matter
// because fetching is read-only. Classification walks the topological order,
// which makes the resulting plan dependency-correct by construction.
func (b *Builder) Build(ctx context.Context, g *graph.Graph) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}
	logger.Debug("Execution order derived.", "object_count", len(order))

	desired, err := b.normalizeAll(order, g)
	if err != nil {
		return nil, err
	}

	results, err := b.fetchAll(ctx, order)
	if err != nil {
		return nil, err
	}

	actions := make([]Action, 0, len(order))
	for i, key := range order {
		def, _ := g.Definition(key)
		action := Action{Key: key, Desired: desired[i], WaitTime: def.WaitTime}

		res := results[i]
		switch {
		case res.err != nil:
			action.Kind = Failed
			action.Err = &object.ProviderError{Key: key, Err: res.err}
			logger.Warn("Live state unavailable, object excluded from reconciliation.", "object", key, "error", res.err)
		case res.absent:
			action.Kind = Create
			action.Diff = diff.Compute(key, desired[i], nil)
		default:
			spec, _ := b.Catalog.Type(key.Type)
			actual := normalize.Live(spec, res.payload)
			d := diff.Compute(key, desired[i], actual)
			if d.Empty() {
				action.Kind = NoOp
			} else {
				action.Kind = Alter
			}
			action.Diff = d
		}
		actions = append(actions, action)
	}

	p := newPlan(false, actions)
	s := p.Summary()
	logger.Info("Plan built.", "run_id", p.ID, "create", s.Create, "alter", s.Alter, "unchanged", s.NoOp, "failed", s.Failed)
	return p, nil
}

// BuildDestroy produces a teardown plan: a Drop for every declared object
// that exists on the target, in reverse topological order so dependents are
// removed before their dependencies. Absent objects become no-ops.
func (b *Builder) BuildDestroy(ctx context.Context, g *graph.Graph) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	desired, err := b.normalizeAll(order, g)
	if err != nil {
		return nil, err
	}

	results, err := b.fetchAll(ctx, order)
	if err != nil {
		return nil, err
	}

	actions := make([]Action, 0, len(order))
	for i, key := range order {
		def, _ := g.Definition(key)
		action := Action{Key: key, Desired: desired[i], WaitTime: def.WaitTime}
		res := results[i]
		switch {
		case res.err != nil:
			action.Kind = Failed
			action.Err = &object.ProviderError{Key: key, Err: res.err}
		case res.absent:
			action.Kind = NoOp
			action.Diff = &diff.Diff{Key: key}
		default:
			action.Kind = Drop
			action.Diff = &diff.Diff{Key: key}
		}
		actions = append(actions, action)
	}

	p := newPlan(true, actions)
	logger.Info("Destroy plan built.", "run_id", p.ID, "drop", p.Summary().Drop)
	return p, nil
}

// normalizeAll canonicalizes the desired state of every object, in order.
func (b *Builder) normalizeAll(order []object.Key, g *graph.Graph) ([]*normalize.CanonicalState, error) {
	out := make([]*normalize.CanonicalState, len(order))
	for i, key := range order {
		def, _ := g.Definition(key)
		spec, _ := b.Catalog.Type(key.Type)
		canonical, err := normalize.Declared(spec, def)
		if err != nil {
			return nil, err
		}
		out[i] = canonical
	}
	return out, nil
}

// fetchAll queries live state for every object with bounded parallelism.
// Each goroutine writes only its own slot. With KeepGoing unset the first
// failure cancels the remaining fetches and aborts.
func (b *Builder) fetchAll(ctx context.Context, order []object.Key) ([]fetchResult, error) {
	workers := b.Workers
	if workers <= 0 {
		workers = DefaultFetchWorkers
	}

	results := make([]fetchResult, len(order))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, key := range order {
		eg.Go(func() error {
			payload, err := b.Provider.Fetch(egCtx, key)
			switch {
			case errors.Is(err, state.ErrNotFound):
				results[i] = fetchResult{absent: true}
			case err != nil:
				if !b.KeepGoing {
					return &object.ProviderError{Key: key, Err: err}
				}
				results[i] = fetchResult{err: err}
			default:
				results[i] = fetchResult{payload: payload}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
