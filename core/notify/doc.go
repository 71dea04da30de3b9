// Package notify publishes catalog URL events for downstream indexers.
//
// The category tree command emits one category_url_path_regenerated event per
// recomputed url path, and --reindex emits a reindex_requested event listing the
// regenerated entities. When Pub/Sub is not configured, events are written to the
// log so the run remains self-contained.
package notify
