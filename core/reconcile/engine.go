package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Spec bundles the collaborators of a reconciliation job.
type Spec struct {
	// Adapter resolves the scope into entities.
	Adapter Adapter

	// Generator produces the rewrites of one entity.
	Generator Generator

	// Rewrites deletes and persists rewrite records.
	Rewrites RewriteStore

	// Locker is optional; when set, every store of the run is locked before invalidation.
	Locker Locker

	// Logger receives progress lines. Defaults to a no-op logger.
	Logger *zap.Logger

	// Output receives the preview table. Defaults to io.Discard.
	Output io.Writer
}

func (s *Spec) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Spec) output() io.Writer {
	if s.Output == nil {
		return io.Discard
	}
	return s.Output
}

// storeGroup holds the entity ids of one store, in resolution order.
type storeGroup struct {
	storeID int64
	ids     []int64
}

// Run executes one reconciliation job: resolve the scope, preview it, ask for
// confirmation when opts.Confirm is set, delete the canonical rewrites of the
// scope, recompute stored paths when the adapter supports it, then regenerate
// every entity in order.
//
// Collisions are recorded in the result and never stop the run. Every other error
// aborts the run and is returned together with the partial result. Two runs over
// intersecting scopes must not execute concurrently unless a Locker is configured.
func Run(ctx context.Context, spec *Spec, scope Scope, opts RunOptions) (*BatchResult, error) {
	l := spec.logger()
	result := &BatchResult{
		RunID:     opts.RunID,
		Job:       spec.Adapter.Name(),
		Stage:     StageScoping,
		Failures:  []Failure{},
		StartedAt: time.Now(),
	}
	defer func() { result.FinishedAt = time.Now() }()

	resolution, err := spec.Adapter.Resolve(ctx, scope)
	if err != nil {
		return result, err
	}
	entities := resolution.Entities
	if len(entities) == 0 {
		result.Notice = resolution.Notice
		if result.Notice == "" {
			result.Notice = "no entities found in scope"
		}
		result.Stage = StageDone
		return result, nil
	}
	result.EntitiesFound = len(entities)

	result.Stage = StagePreviewing
	if p, ok := spec.Adapter.(Previewer); ok {
		p.Preview(spec.output(), entities)
	}
	if opts.DryRun {
		result.DryRun = true
		l.Info("Dry-run mode: no changes were made", zap.Int("entities", len(entities)))
		return result, nil
	}
	if opts.Confirm != nil && !opts.Confirm(len(entities)) {
		result.Cancelled = true
		l.Warn("Operation cancelled by user. No changes were made.")
		return result, nil
	}

	groups := groupByStore(entities)
	result.StoreEntities = make(map[int64][]int64, len(groups))
	for _, g := range groups {
		result.StoreEntities[g.storeID] = g.ids
	}

	if spec.Locker != nil {
		release, err := spec.Locker.Lock(ctx, string(spec.Adapter.EntityType()), storeIDs(groups))
		if err != nil {
			return result, err
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				l.Warn("Failed to release scope lock", zap.Error(err))
			}
		}()
	}

	result.Stage = StageInvalidating
	for _, g := range groups {
		deleted, err := Invalidate(ctx, spec.Rewrites, g.ids, spec.Adapter.EntityType(), g.storeID)
		if err != nil {
			return result, err
		}
		result.RecordsDeleted += deleted
		l.Info("Deleted canonical rewrites",
			zap.Int64("store_id", g.storeID),
			zap.Int("entities", len(g.ids)),
			zap.Int64("deleted", deleted),
		)
	}

	if recomputer, ok := spec.Adapter.(PathRecomputer); ok {
		result.Stage = StageRecomputing
		for i := range entities {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			path, err := recomputer.RecomputePath(ctx, entities[i])
			if err != nil {
				result.PathFailures++
				l.Warn("Failed to recompute url path",
					zap.Int64("entity_id", entities[i].ID),
					zap.String("name", entities[i].Name),
					zap.Error(err),
				)
				continue
			}
			entities[i].URLPath = path
			result.PathsRecomputed++
		}
		l.Info("Recomputed url paths", zap.Int("count", result.PathsRecomputed), zap.Int("failed", result.PathFailures))
	}

	result.Stage = StageRegenerating
	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		l.Info("Regenerating urls",
			zap.String("entity", entity.DisplayLabel()),
			zap.Int64("store_id", entity.StoreID),
		)

		written, deleted, failure, err := Regenerate(ctx, spec, entity, opts)
		result.RecordsDeleted += deleted
		if err != nil {
			return result, err
		}
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			l.Warn("Could not regenerate urls",
				zap.String("entity", failure.EntityLabel),
				zap.Int64("store_id", failure.StoreID),
				zap.String("error", failure.Message),
				zap.Strings("attempted_paths", failure.AttemptedPaths),
			)
			continue
		}
		result.RecordsRegenerated += written
	}

	result.Stage = StageDone
	return result, nil
}

// Invalidate deletes the canonical rewrites of ids in one store.
// It is safe to call with an empty id set.
func Invalidate(ctx context.Context, store RewriteStore, ids []int64, entityType EntityType, storeID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	deleted, err := store.DeleteBy(ctx, DeleteFilter{EntityIDs: ids, EntityType: entityType, StoreID: storeID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete rewrites for store %d: %w", storeID, err)
	}
	return deleted, nil
}

// Regenerate rebuilds the rewrites of a single entity. A collision is returned as
// a Failure with a nil error; written is 0 in that case.
func Regenerate(ctx context.Context, spec *Spec, entity Entity, opts RunOptions) (written int, deleted int64, failure *Failure, err error) {
	deleted, err = spec.Rewrites.DeleteBy(ctx, DeleteFilter{
		EntityIDs:  []int64{entity.ID},
		EntityType: entity.Type,
		StoreID:    entity.StoreID,
	})
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to delete rewrites of %s: %w", entity.DisplayLabel(), err)
	}

	records, err := spec.Generator.Generate(ctx, entity, GenerateOptions{ForceRecompute: opts.ForceRecompute})
	if err != nil {
		return 0, deleted, nil, fmt.Errorf("failed to generate rewrites of %s: %w", entity.DisplayLabel(), err)
	}
	if len(records) == 0 {
		return 0, deleted, nil, nil
	}

	if err := spec.Rewrites.Replace(ctx, records); err != nil {
		if errors.Is(err, ErrCollision) {
			return 0, deleted, &Failure{
				EntityID:       entity.ID,
				EntityLabel:    entity.DisplayLabel(),
				StoreID:        entity.StoreID,
				Message:        err.Error(),
				AttemptedPaths: requestPaths(records),
			}, nil
		}
		return 0, deleted, nil, fmt.Errorf("failed to persist rewrites of %s: %w", entity.DisplayLabel(), err)
	}

	return len(records), deleted, nil, nil
}

func groupByStore(entities []Entity) []storeGroup {
	var groups []storeGroup
	index := make(map[int64]int)
	for _, e := range entities {
		i, ok := index[e.StoreID]
		if !ok {
			i = len(groups)
			index[e.StoreID] = i
			groups = append(groups, storeGroup{storeID: e.StoreID})
		}
		groups[i].ids = append(groups[i].ids, e.ID)
	}
	return groups
}

func storeIDs(groups []storeGroup) []int64 {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.storeID
	}
	return ids
}

func requestPaths(records []RewriteRecord) []string {
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.RequestPath
	}
	return paths
}
