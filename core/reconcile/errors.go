package reconcile

import (
	"errors"
	"fmt"
)

// ErrCollision marks a persistence failure caused by a request path that is
// already owned by another record. RewriteStore implementations wrap it.
var ErrCollision = errors.New("url collision")

// NotFoundError is returned when a scope references a missing store or entity.
type NotFoundError struct {
	Kind       string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Identifier)
}

// NewNotFound builds a NotFoundError for any identifier type.
func NewNotFound(kind string, identifier any) *NotFoundError {
	return &NotFoundError{Kind: kind, Identifier: fmt.Sprint(identifier)}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
