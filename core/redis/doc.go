// Package redis connects to the storefront cache and provides the two optional
// side tasks of a regeneration run: flushing cached URL lookups after rewrites
// change (--flush) and guarding scopes with distributed leases so that two runs
// over the same entity type and store cannot interleave.
//
// Locking is opt-in. Without it, not running overlapping jobs concurrently is the
// operator's responsibility.
package redis
