// Package policy evaluates who may do what. Two predicates compose per
// request: a role check (authenticated, with an admin bypass) and an
// ownership check for object-level mutation. Reads are open to any
// authenticated caller.
package policy

import (
	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/apperrors"
)

// Actor is the resolved identity attached to a request. The core never
// authenticates; it only consumes what the auth middleware resolved.
type Actor struct {
	UserID        uuid.UUID
	IsAdmin       bool
	Authenticated bool
}

// RequireAuthenticated is the role predicate for plain writes.
func RequireAuthenticated(a Actor) error {
	if !a.Authenticated && !a.IsAdmin {
		return apperrors.NotAuthorized("authentication required")
	}
	return nil
}

// RequireOwner gates object-level mutation: the acting identity must
// own the object, unless the actor holds the admin role.
func RequireOwner(a Actor, ownerUserID uuid.UUID) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.IsAdmin {
		return nil
	}
	if a.UserID != ownerUserID {
		return apperrors.NotAuthorized("you do not own this resource")
	}
	return nil
}
