// Package reconcile implements the URL-rewrite reconciliation job shared by the
// category tree and product commands.
//
// A job run moves strictly forward through these stages:
//
//	scoping -> previewing -> invalidating -> [recomputing] -> regenerating -> done
//
// 1. Scoping: the Adapter resolves a Scope into an ordered entity set. Missing
// stores or roots fail with *NotFoundError before anything is touched; an empty
// set ends the run with a notice.
//
// 2. Previewing: adapters implementing Previewer render the entity set. Dry runs
// stop here.
//
// 3. Invalidating: canonical rewrites of the whole set are deleted once per store.
// This delete is not transactional with regeneration; a crash between the two
// leaves entities without rewrites until the job is re-run.
//
// 4. Recomputing: adapters implementing PathRecomputer rebuild stored url paths.
// Failures are logged and counted only.
//
// 5. Regenerating: each entity is deleted again, generated, and persisted as a
// unit. Collisions (ErrCollision) are recorded as Failures and the loop continues;
// any other error aborts the run.
//
// # Concurrency
//
// Runs are sequential. Two runs over intersecting scopes must not overlap unless
// a Locker is configured on the Spec.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	spec := &reconcile.Spec{
//	    Adapter:   category.NewAdapter(repo, publisher, logger),
//	    Generator: rewrite.NewGenerator(repo, cfg.Catalog, logger),
//	    Rewrites:  rewrite.NewRepository(db),
//	    Logger:    logger,
//	    Output:    os.Stdout,
//	}
//	result, err := reconcile.Run(ctx, spec, scope, reconcile.RunOptions{RunID: runID})
//	reconcile.Render(os.Stdout, result)
package reconcile
