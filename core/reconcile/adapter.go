package reconcile

import (
	"context"
	"io"
)

// Adapter defines the entity-specific part of a reconciliation job.
// Each adapter knows how to turn a Scope into the ordered entity set to process.
type Adapter interface {
	// Name returns the job name (e.g. "category-tree", "product-url").
	Name() string

	// EntityType returns the rewrite entity type handled by this adapter.
	EntityType() EntityType

	// Resolve produces the ordered entities of the scope. It must not mutate
	// anything. Missing roots or stores are reported as *NotFoundError.
	// A legitimately empty scope is a Resolution without entities.
	Resolve(ctx context.Context, scope Scope) (*Resolution, error)
}

// Previewer is implemented by adapters that render the discovered entities
// before anything is deleted.
type Previewer interface {
	Preview(w io.Writer, entities []Entity)
}

// PathRecomputer is implemented by adapters whose entities carry a stored url
// path that has to be rebuilt before rewrites are generated. It returns the new
// path. Failures are logged and never stop the run.
type PathRecomputer interface {
	RecomputePath(ctx context.Context, entity Entity) (string, error)
}

// Generator is the path generation capability: entity -> candidate rewrites.
type Generator interface {
	Generate(ctx context.Context, entity Entity, opts GenerateOptions) ([]RewriteRecord, error)
}

// RewriteStore persists rewrite records.
type RewriteStore interface {
	// DeleteBy removes canonical records matching the filter and returns the count.
	// An empty id set is a no-op.
	DeleteBy(ctx context.Context, filter DeleteFilter) (int64, error)

	// Replace persists records as a unit. A request path owned by another record
	// fails the whole call with an error wrapping ErrCollision.
	Replace(ctx context.Context, records []RewriteRecord) error
}

// Locker guards the stores of a run against concurrent runs.
type Locker interface {
	Lock(ctx context.Context, entityType string, storeIDs []int64) (func(context.Context) error, error)
}
