package services

import (
	"context"
	"testing"

	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/sociograph/sociograph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerActor(t *testing.T, env *testEnv, name string) *models.User {
	t.Helper()
	user, err := env.users.Register(context.Background(), &RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func TestCreateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := registerActor(t, env, "alice")

	profile, err := env.profiles.CreateProfile(ctx, actorFor(user.ID), &CreateProfileRequest{
		FirstName: "Alice",
		LastName:  "Liddell",
		Biography: "down the rabbit hole",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Equal(t, "Alice", profile.FirstName)
}

func TestCreateProfileOnePerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := registerActor(t, env, "alice")

	_, err := env.profiles.CreateProfile(ctx, actorFor(user.ID), &CreateProfileRequest{FirstName: "Alice", LastName: "L"})
	require.NoError(t, err)

	_, err = env.profiles.CreateProfile(ctx, actorFor(user.ID), &CreateProfileRequest{FirstName: "Alice", LastName: "Again"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateProfilePhoneValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := registerActor(t, env, "alice")

	for _, phone := range []string{"abc", "123", "+", "12345678901234567890", "+123-456"} {
		p := phone
		_, err := env.profiles.CreateProfile(ctx, actorFor(user.ID), &CreateProfileRequest{
			FirstName:   "Alice",
			LastName:    "L",
			PhoneNumber: &p,
		})
		require.Error(t, err, "phone %q", phone)
		assert.True(t, apperrors.IsValidation(err), "phone %q", phone)
	}

	good := "+4915112345678"
	profile, err := env.profiles.CreateProfile(ctx, actorFor(user.ID), &CreateProfileRequest{
		FirstName:   "Alice",
		LastName:    "L",
		PhoneNumber: &good,
	})
	require.NoError(t, err)
	require.NotNil(t, profile.PhoneNumber)
	assert.Equal(t, good, *profile.PhoneNumber)
}

func TestDuplicatePhoneNumberConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerActor(t, env, "alice")
	bob := registerActor(t, env, "bob")

	phone := "+4915112345678"
	_, err := env.profiles.CreateProfile(ctx, actorFor(alice.ID), &CreateProfileRequest{
		FirstName: "Alice", LastName: "L", PhoneNumber: &phone,
	})
	require.NoError(t, err)

	_, err = env.profiles.CreateProfile(ctx, actorFor(bob.ID), &CreateProfileRequest{
		FirstName: "Bob", LastName: "B", PhoneNumber: &phone,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdateProfilePartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")

	bio := "updated biography"
	updated, err := env.profiles.UpdateProfile(ctx, alice, aliceProfile.ID.String(), &UpdateProfileRequest{
		Biography: &bio,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Biography)
	// Untouched fields survive.
	assert.Equal(t, "alice", updated.FirstName)
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, aliceProfile := env.newMember(t, "alice")
	bob, _ := env.newMember(t, "bob")

	name := "Mallory"
	_, err := env.profiles.UpdateProfile(ctx, bob, aliceProfile.ID.String(), &UpdateProfileRequest{FirstName: &name})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotAuthorized(err))
}

func TestUpdatePicture(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")

	updated, err := env.profiles.UpdatePicture(ctx, alice, aliceProfile.ID.String(), "uploads/alice.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/alice.png", updated.ProfilePicture)

	_, err = env.profiles.UpdatePicture(ctx, alice, aliceProfile.ID.String(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestListProfilesNameFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.newMember(t, "alice")
	env.newMember(t, "bob")
	env.newMember(t, "alison")

	matches, err := env.profiles.ListProfiles(ctx, "ALI", "", 0, 20)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	matches, err = env.profiles.ListProfiles(ctx, "bob", "", 0, 20)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "bob", matches[0].FirstName)

	matches, err = env.profiles.ListProfiles(ctx, "", "tester", 0, 20)
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	// LIKE metacharacters in the filter text are literals, so a bare
	// wildcard matches nobody instead of everybody.
	matches, err = env.profiles.ListProfiles(ctx, "%", "", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = env.profiles.ListProfiles(ctx, "ali_e", "", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestListProfilesIncludesStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")
	_, bobProfile := env.newMember(t, "bob")

	require.NoError(t, env.profiles.Follow(ctx, alice, bobProfile.ID.String()))

	profiles, err := env.profiles.ListProfiles(ctx, "bob", "", 0, 20)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, int64(1), profiles[0].FollowersCount)
	assert.Equal(t, int64(0), profiles[0].FollowingsCount)
}

func TestDeleteProfileRemovesContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")
	bob, bobProfile := env.newMember(t, "bob")

	post := env.newPost(t, aliceProfile, "gone soon", models.HashtagGeneral, aliceProfile.CreatedAt)
	require.NoError(t, env.profiles.Follow(ctx, bob, aliceProfile.ID.String()))

	require.NoError(t, env.profiles.DeleteProfile(ctx, alice, aliceProfile.ID.String()))

	_, err := env.feed.GetPost(ctx, post.ID.String())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	following, err := env.followRepo.IsFollowing(ctx, bobProfile.ID, aliceProfile.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestGetProfileUnknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.profiles.GetProfile(context.Background(), "11111111-2222-3333-4444-555555555555")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = env.profiles.GetProfile(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
