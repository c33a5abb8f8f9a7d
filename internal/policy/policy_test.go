package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestRequireAuthenticated(t *testing.T) {
	assert.Error(t, RequireAuthenticated(Actor{}))
	assert.True(t, apperrors.IsNotAuthorized(RequireAuthenticated(Actor{})))

	assert.NoError(t, RequireAuthenticated(Actor{UserID: uuid.New(), Authenticated: true}))
	assert.NoError(t, RequireAuthenticated(Actor{IsAdmin: true}))
}

func TestRequireOwner(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	assert.NoError(t, RequireOwner(Actor{UserID: owner, Authenticated: true}, owner))

	err := RequireOwner(Actor{UserID: other, Authenticated: true}, owner)
	assert.True(t, apperrors.IsNotAuthorized(err))

	// Admin role bypasses ownership.
	assert.NoError(t, RequireOwner(Actor{UserID: other, Authenticated: true, IsAdmin: true}, owner))

	// Unauthenticated callers never own anything.
	assert.Error(t, RequireOwner(Actor{UserID: owner}, owner))
}
