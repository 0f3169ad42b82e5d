package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/ctxlog"
	"github.com/schemactl/schemactl/internal/object"
)

// Querier is the subset of *sql.DB the provider needs. Tests substitute a
// fake; production passes the real handle.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLProvider fetches live object state by running the catalog's per-type
// state query against a database/sql handle. It works against any registered
// driver because the result row is read generically through rows.Columns.
type SQLProvider struct {
	db  Querier
	cat *catalog.Catalog
}

// NewSQLProvider returns a provider bound to the given handle and catalog.
func NewSQLProvider(db Querier, cat *catalog.Catalog) *SQLProvider {
	return &SQLProvider{db: db, cat: cat}
}

// Fetch renders and runs the state query for the object and converts the
// first result row into a payload. No rows means the object is absent.
func (p *SQLProvider) Fetch(ctx context.Context, key object.Key) (Payload, error) {
	logger := ctxlog.FromContext(ctx)

	spec, ok := p.cat.Type(key.Type)
	if !ok {
		return nil, fmt.Errorf("no catalog entry for object type %q", key.Type)
	}

	var query strings.Builder
	if err := spec.Templates.StateQuery.Execute(&query, map[string]any{"name": key.Name}); err != nil {
		return nil, fmt.Errorf("rendering state query for %s: %w", key, err)
	}
	logger.Debug("Fetching live state.", "object", key, "query", query.String())

	rows, err := p.db.QueryContext(ctx, query.String())
	if err != nil {
		return nil, fmt.Errorf("running state query for %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("reading state query result for %s: %w", key, err)
		}
		return nil, ErrNotFound
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading state query columns for %s: %w", key, err)
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scanning state query row for %s: %w", key, err)
	}

	payload := make(Payload, len(cols))
	for i, col := range cols {
		payload[strings.ToLower(col)] = values[i]
	}
	logger.Debug("Live state fetched.", "object", key, "columns", len(cols))
	return payload, nil
}
