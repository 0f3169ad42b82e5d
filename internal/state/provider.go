// Package state defines the live-state provider boundary: the narrow
// interface the plan builder fetches through, and its database/sql
// implementation.
package state

import (
	"context"
	"errors"

	"github.com/schemactl/schemactl/internal/object"
)

// Payload is the raw live-state representation of one object, as a
// column-to-value map. It is canonicalizable but not yet canonical; the
// normalizer gives it meaning.
type Payload map[string]any

// ErrNotFound is returned by a Provider when the object does not exist on
// the target system. It is a distinct outcome, not a failure: an absent
// object simply becomes a Create action.
var ErrNotFound = errors.New("object not found in live state")

// Provider fetches the live representation of a declared object. Fetch is
// read-only and side-effect-free, so callers may issue fetches concurrently.
type Provider interface {
	Fetch(ctx context.Context, key object.Key) (Payload, error)
}
