package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/sociograph/sociograph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")
	_, bobProfile := env.newMember(t, "bob")

	post := env.newPost(t, bobProfile, "nice view", models.HashtagTravel, time.Now())

	like, err := env.likes.Like(ctx, alice, post.ID.String())
	require.NoError(t, err)
	assert.Equal(t, aliceProfile.ID, like.AuthorID)
	assert.Equal(t, post.ID, like.PostID)
}

func TestLikeTwiceConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")
	_, bobProfile := env.newMember(t, "bob")

	post := env.newPost(t, bobProfile, "nice view", models.HashtagTravel, time.Now())

	_, err := env.likes.Like(ctx, alice, post.ID.String())
	require.NoError(t, err)

	_, err = env.likes.Like(ctx, alice, post.ID.String())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestLikeUnknownPost(t *testing.T) {
	env := newTestEnv(t)

	alice, _ := env.newMember(t, "alice")

	_, err := env.likes.Like(context.Background(), alice, uuid.New().String())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUnlikeCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")
	_, bobProfile := env.newMember(t, "bob")

	post := env.newPost(t, bobProfile, "nice view", models.HashtagTravel, time.Now())

	// Unliking before liking is a no-op, not an error.
	removed, err := env.likes.Unlike(ctx, alice, post.ID.String())
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = env.likes.Like(ctx, alice, post.ID.String())
	require.NoError(t, err)

	removed, err = env.likes.Unlike(ctx, alice, post.ID.String())
	require.NoError(t, err)
	assert.True(t, removed)

	// The pair index must allow re-liking after an unlike.
	_, err = env.likes.Like(ctx, alice, post.ID.String())
	require.NoError(t, err)
}

func TestUnlikeUnknownPost(t *testing.T) {
	env := newTestEnv(t)

	alice, _ := env.newMember(t, "alice")

	// The soft no-op only covers a missing like on a real post; a
	// missing post is not found.
	removed, err := env.likes.Unlike(context.Background(), alice, uuid.New().String())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, removed)
}

func TestPostLikesListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")
	carol, _ := env.newMember(t, "carol")
	_, bobProfile := env.newMember(t, "bob")

	post := env.newPost(t, bobProfile, "nice view", models.HashtagTravel, time.Now())

	_, err := env.likes.Like(ctx, alice, post.ID.String())
	require.NoError(t, err)
	_, err = env.likes.Like(ctx, carol, post.ID.String())
	require.NoError(t, err)

	likes, err := env.likes.PostLikes(ctx, post.ID.String(), 0, 20)
	require.NoError(t, err)
	require.Len(t, likes, 2)

	names := []string{likes[0].Author.FirstName, likes[1].Author.FirstName}
	assert.Contains(t, names, "alice")
	assert.Contains(t, names, "carol")
}
