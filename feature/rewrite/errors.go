package rewrite

import (
	"fmt"

	"rewrite-manager/core/reconcile"
)

// CollisionError reports a request path already owned by another record in the
// same store. It matches reconcile.ErrCollision with errors.Is.
type CollisionError struct {
	RequestPath string
	StoreID     int64
	OwnerType   string
	OwnerID     int64
}

func (e *CollisionError) Error() string {
	if e.RequestPath == "" {
		return fmt.Sprintf("url collision: a request path of the batch already exists in store %d", e.StoreID)
	}
	if e.OwnerType == "" {
		return fmt.Sprintf("url collision: request path %q already exists in store %d", e.RequestPath, e.StoreID)
	}
	return fmt.Sprintf("url collision: request path %q already exists in store %d (owned by %s %d)",
		e.RequestPath, e.StoreID, e.OwnerType, e.OwnerID)
}

func (e *CollisionError) Unwrap() error {
	return reconcile.ErrCollision
}
