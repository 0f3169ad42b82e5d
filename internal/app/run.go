package app

import (
	"context"
	"database/sql"
	"fmt"

	// Database drivers registered for the SQL state provider and executor.
	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/lib/pq"

	"github.com/schemactl/schemactl/internal/ctxlog"
	"github.com/schemactl/schemactl/internal/exec"
	"github.com/schemactl/schemactl/internal/graph"
	"github.com/schemactl/schemactl/internal/object"
	"github.com/schemactl/schemactl/internal/plan"
	"github.com/schemactl/schemactl/internal/state"
	"github.com/schemactl/schemactl/internal/target"
)

// session is the assembled pipeline for one run: the validated graph, the
// plan builder wired to a state provider, the executor connection, and the
// cleanup that releases the database handle.
type session struct {
	graph   *graph.Graph
	builder *plan.Builder
	conn    exec.Conn
	close   func()
}

// Plan builds and prints the reconciliation plan. It never mutates the
// target; drift in the output is not an error.
func (a *App) Plan(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Plan run started.")

	s, err := a.setup(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := s.builder.Build(ctx, s.graph)
	if err != nil {
		return err
	}

	plan.Render(a.outW, p, a.cfg.Color)
	return nil
}

// Apply builds the plan and executes it through the executor. With DryRun
// set, every statement is rendered into the report but nothing is issued.
func (a *App) Apply(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Apply run started.", "dry_run", a.cfg.DryRun)

	s, err := a.setup(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := s.builder.Build(ctx, s.graph)
	if err != nil {
		return err
	}

	return a.execute(ctx, s, p)
}

// Destroy builds and executes the teardown plan: declared objects are
// dropped in reverse dependency order.
func (a *App) Destroy(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Destroy run started.", "dry_run", a.cfg.DryRun)

	s, err := a.setup(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := s.builder.BuildDestroy(ctx, s.graph)
	if err != nil {
		return err
	}

	return a.execute(ctx, s, p)
}

// execute applies a built plan and renders the report.
func (a *App) execute(ctx context.Context, s *session, p *plan.Plan) error {
	executor := exec.New(a.catalog, s.graph, s.conn)
	report, err := executor.Apply(ctx, p, exec.Options{DryRun: a.cfg.DryRun})
	if report != nil {
		report.Render(a.outW, a.cfg.Color)
	}
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d action(s) failed: %w", report.Failed, object.ErrExecution)
	}
	return nil
}

// setup loads target and definitions, validates the graph, and wires the
// plan builder and executor connection. The returned session owns the
// database handle when one was opened.
func (a *App) setup(ctx context.Context) (*session, error) {
	targets, err := target.Load(a.cfg.TargetsPath)
	if err != nil {
		return nil, err
	}
	tctx, err := targets.Resolve(a.cfg.TargetName)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Target resolved.", "target", tctx.Name, "driver", tctx.Driver, "fetch_workers", tctx.FetchWorkers)

	defs, err := a.loader.Load(ctx, a.cfg.DefinitionsPath)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(ctx, defs, a.catalog)
	if err != nil {
		return nil, err
	}

	s := &session{graph: g, close: func() {}}

	provider := a.provider
	s.conn = a.conn
	if provider == nil || s.conn == nil {
		db, err := a.connect(ctx, tctx)
		if err != nil {
			return nil, err
		}
		s.close = func() { db.Close() }
		if provider == nil {
			provider = state.NewSQLProvider(db, a.catalog)
		}
		if s.conn == nil {
			s.conn = db
		}
	}

	workers := a.cfg.Workers
	if workers <= 0 {
		workers = tctx.FetchWorkers
	}
	s.builder = &plan.Builder{
		Catalog:   a.catalog,
		Provider:  provider,
		Workers:   workers,
		KeepGoing: a.cfg.KeepGoing,
	}
	return s, nil
}

// connect opens the target database and applies the configured session role.
func (a *App) connect(ctx context.Context, tctx target.Context) (*sql.DB, error) {
	db, err := sql.Open(tctx.Driver, tctx.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening target %s: %w", tctx.Name, err)
	}
	if tctx.Role != "" {
		if _, err := db.ExecContext(ctx, "SET ROLE "+tctx.Role); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting session role on target %s: %w", tctx.Name, err)
		}
	}
	return db, nil
}
