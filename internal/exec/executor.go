// Package exec applies a plan's actions against the target database, in plan
// order, or renders them without side effects in dry-run mode.
package exec

import (
	"context"
	"database/sql"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/ctxlog"
	"github.com/schemactl/schemactl/internal/graph"
	"github.com/schemactl/schemactl/internal/object"
	"github.com/schemactl/schemactl/internal/plan"
)

// Conn is the subset of *sql.DB the executor needs. Tests substitute a
// counting fake to prove dry-run issues nothing.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Options controls one Apply call.
type Options struct {
	// DryRun renders every statement but issues none of them.
	DryRun bool
}

// Executor applies plans. Execution is strictly serial in plan order:
// mutations must respect the dependency order even though fetches did not
// have to.
type Executor struct {
	Catalog *catalog.Catalog
	Graph   *graph.Graph
	Conn    Conn

	// sleep is the settle-delay hook; tests shorten it.
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns an executor over the given graph and connection.
func New(cat *catalog.Catalog, g *graph.Graph, conn Conn) *Executor {
	return &Executor{Catalog: cat, Graph: g, Conn: conn, sleep: sleepCtx}
}

// Apply walks the plan in order and applies each action.
//
// A failed action marks every transitive dependent as skipped while
// independent branches continue; nothing already applied is rolled back. A
// plan slot that failed at fetch time is reported as failed but does not
// block its dependents, since creating a dependent needs only the dependent's
// own desired state. Cancellation stops before the next action and leaves
// the target exactly as applied so far.
func (e *Executor) Apply(ctx context.Context, p *plan.Plan, opts Options) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Applying plan.", "run_id", p.ID, "actions", len(p.Actions), "dry_run", opts.DryRun)

	report := &Report{RunID: p.ID, DryRun: opts.DryRun, Destroy: p.Destroy}
	skipped := mapset.NewThreadUnsafeSet[object.Key]()

	for _, action := range p.Actions {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run cancelled; remaining actions not applied.", "run_id", p.ID)
			return report, err
		}

		result := ActionResult{Key: action.Key, Kind: action.Kind}

		switch {
		case skipped.Contains(action.Key):
			result.Skipped = true
			logger.Warn("Skipping action: a dependency failed earlier in the run.", "object", action.Key)
		case action.Kind == plan.Failed:
			result.Err = action.Err
			logger.Warn("Action failed before execution: live state was unavailable.", "object", action.Key, "error", action.Err)
		case action.Kind == plan.NoOp:
			// Nothing to do.
		default:
			result.SQL, result.Err = e.renderStatement(action)
			if result.Err == nil && !opts.DryRun {
				result.Err = e.execute(ctx, action, result.SQL)
				result.Applied = result.Err == nil
			}
			if result.Err != nil {
				e.skipDependents(ctx, action.Key, skipped)
			}
		}

		report.add(result)
	}

	logger.Info("Plan application finished.", "run_id", p.ID, "applied", report.Applied, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// execute issues one rendered statement and settles for the object's
// wait_time afterwards.
func (e *Executor) execute(ctx context.Context, action plan.Action, stmt string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executing statement.", "object", action.Key, "sql", stmt)

	if _, err := e.Conn.ExecContext(ctx, stmt); err != nil {
		return &object.ExecutionError{Key: action.Key, SQL: stmt, Err: err}
	}

	if action.WaitTime > 0 {
		logger.Debug("Settling after apply.", "object", action.Key, "wait_time_s", action.WaitTime)
		if err := e.sleep(ctx, time.Duration(action.WaitTime)*time.Second); err != nil {
			return err
		}
	}
	return nil
}

// skipDependents marks every transitive dependent of a failed object.
func (e *Executor) skipDependents(ctx context.Context, key object.Key, skipped mapset.Set[object.Key]) {
	logger := ctxlog.FromContext(ctx)
	for dep := range e.Graph.TransitiveDependents(key).Iter() {
		if skipped.Add(dep) {
			logger.Warn("Marking dependent for skip.", "failed", key, "dependent", dep)
		}
	}
}

// sleepCtx waits for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
