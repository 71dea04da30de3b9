// Package rewrite owns the url_rewrite table: it generates canonical rewrites
// for categories and products and persists them.
//
// Only canonical rows (redirect_type 0) are deleted or replaced. Permanent
// redirects created by merchants survive every run.
//
// # Collisions
//
// Replace checks every request path against the target store before inserting.
// A path owned by another entity, or produced twice in one batch, fails the whole
// batch with a *CollisionError; the same error is returned when the unique key
// (request_path, store_id) rejects the insert. CollisionError matches
// reconcile.ErrCollision, which the job orchestrator records as a per-entity failure.
//
// # Generation rules
//
//   - category: <url_path><suffix> -> catalog/category/view/id/<id>, nothing for level 0 and 1
//   - product: <url_key><suffix> -> catalog/product/view/id/<id>, nothing when not visible
//   - product in category: <category url_path>/<url_key><suffix> ->
//     catalog/product/view/id/<id>/category/<cid>
package rewrite
