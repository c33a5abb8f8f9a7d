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

func TestFeedVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")
	_, bobProfile := env.newMember(t, "bob")
	_, carolProfile := env.newMember(t, "carol")

	require.NoError(t, env.profiles.Follow(ctx, alice, bobProfile.ID.String()))

	base := time.Now().Add(-time.Hour)
	own := env.newPost(t, aliceProfile, "my own post", models.HashtagGeneral, base)
	followed := env.newPost(t, bobProfile, "from bob", models.HashtagTravel, base.Add(time.Minute))
	env.newPost(t, carolProfile, "from carol", models.HashtagFood, base.Add(2*time.Minute))

	posts, err := env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Newest first: bob's post was created after alice's.
	assert.Equal(t, followed.ID, posts[0].ID)
	assert.Equal(t, own.ID, posts[1].ID)

	// Author is resolved on every entry.
	assert.Equal(t, "bob", posts[0].Author.FirstName)

	// The hashtag filter never widens visibility: only the unfollowed
	// carol has a food post, so the filtered feed stays empty.
	filtered, err := env.feed.GetFeed(ctx, alice, "food", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestFeedReflectsFollowChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")
	_, bobProfile := env.newMember(t, "bob")

	env.newPost(t, bobProfile, "from bob", models.HashtagGeneral, time.Now().Add(-time.Hour))

	posts, err := env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, posts)

	require.NoError(t, env.profiles.Follow(ctx, alice, bobProfile.ID.String()))

	posts, err = env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	removed, err := env.profiles.Unfollow(ctx, alice, bobProfile.ID.String())
	require.NoError(t, err)
	require.True(t, removed)

	// No residue: the post disappears the moment the edge does.
	posts, err = env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFeedHashtagFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")

	base := time.Now().Add(-time.Hour)
	travel := env.newPost(t, aliceProfile, "trip", models.HashtagTravel, base)
	env.newPost(t, aliceProfile, "dinner", models.HashtagFood, base.Add(time.Minute))

	for _, filter := range []string{"travel", "trav", "TRAV", "Rav"} {
		posts, err := env.feed.GetFeed(ctx, alice, filter, 0, 20)
		require.NoError(t, err)
		require.Len(t, posts, 1, "filter %q", filter)
		assert.Equal(t, travel.ID, posts[0].ID)
	}

	posts, err := env.feed.GetFeed(ctx, alice, "food", 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "dinner", posts[0].Content)

	posts, err = env.feed.GetFeed(ctx, alice, "nomatch", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, posts)

	// LIKE metacharacters in the filter are literals, not wildcards.
	for _, filter := range []string{"%", "_", "t_avel"} {
		posts, err = env.feed.GetFeed(ctx, alice, filter, 0, 20)
		require.NoError(t, err)
		assert.Empty(t, posts, "filter %q", filter)
	}
}

func TestFeedAggregateCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")
	bob, bobProfile := env.newMember(t, "bob")
	carol, _ := env.newMember(t, "carol")

	require.NoError(t, env.profiles.Follow(ctx, alice, bobProfile.ID.String()))

	post := env.newPost(t, bobProfile, "popular", models.HashtagGeneral, time.Now().Add(-time.Hour))

	_, err := env.likes.Like(ctx, alice, post.ID.String())
	require.NoError(t, err)
	_, err = env.likes.Like(ctx, carol, post.ID.String())
	require.NoError(t, err)

	_, err = env.comments.CreateComment(ctx, bob, post.ID.String(), &CreateCommentRequest{Content: "thanks"})
	require.NoError(t, err)

	posts, err := env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(2), posts[0].LikeCount)
	assert.Equal(t, int64(1), posts[0].CommentCount)

	// Counts are live: an unlike shows up on the next read.
	removed, err := env.likes.Unlike(ctx, carol, post.ID.String())
	require.NoError(t, err)
	require.True(t, removed)

	posts, err = env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(1), posts[0].LikeCount)
}

func TestFeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")
	env.newPost(t, aliceProfile, "one", models.HashtagGeneral, time.Now().Add(-time.Hour))

	first, err := env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	second, err := env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].LikeCount, second[i].LikeCount)
	}
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")

	post, scheduled, err := env.feed.CreatePost(ctx, alice, &CreatePostRequest{
		Content: "hello world",
		Hashtag: "general",
	})
	require.NoError(t, err)
	assert.False(t, scheduled)
	require.NotNil(t, post)
	assert.Equal(t, "alice", post.Author.FirstName)
	assert.Equal(t, int64(0), post.LikeCount)
}

func TestCreatePostUnknownHashtag(t *testing.T) {
	env := newTestEnv(t)

	alice, _ := env.newMember(t, "alice")

	_, _, err := env.feed.CreatePost(context.Background(), alice, &CreatePostRequest{
		Content: "hello",
		Hashtag: "unicorns",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreatePostWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &models.User{Username: "ghost", Email: "ghost@example.com", Password: "x", IsActive: true}
	require.NoError(t, env.userRepo.Create(ctx, user))

	_, _, err := env.feed.CreatePost(ctx, actorFor(user.ID), &CreatePostRequest{
		Content: "hello",
		Hashtag: "general",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreatePostDeferred(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")

	publishAt := time.Now().Add(time.Hour)
	post, scheduled, err := env.feed.CreatePost(ctx, alice, &CreatePostRequest{
		Content:     "later",
		Hashtag:     "general",
		ScheduledAt: &publishAt,
	})
	require.NoError(t, err)
	assert.True(t, scheduled)
	assert.Nil(t, post)

	pending, err := env.scheduler.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	// Nothing visible until the worker publishes it.
	posts, err := env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreateFromSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")

	require.NoError(t, env.feed.CreateFromSchedule(ctx, ScheduledPost{
		ID:       uuid.New().String(),
		AuthorID: aliceProfile.ID.String(),
		Content:  "published later",
		Hashtag:  "travel",
	}))

	posts, err := env.feed.GetFeed(ctx, alice, "", 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "published later", posts[0].Content)
}

func TestCreateFromScheduleMissingAuthor(t *testing.T) {
	env := newTestEnv(t)

	err := env.feed.CreateFromSchedule(context.Background(), ScheduledPost{
		ID:       uuid.New().String(),
		AuthorID: uuid.New().String(),
		Content:  "orphan",
		Hashtag:  "general",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")
	bob, _ := env.newMember(t, "bob")

	post := env.newPost(t, aliceProfile, "content", models.HashtagGeneral, time.Now())

	updated, err := env.feed.UpdateMedia(ctx, alice, post.ID.String(), "media/new.png")
	require.NoError(t, err)
	assert.Equal(t, "media/new.png", updated.MediaURL)
	assert.Equal(t, "content", updated.Content)

	_, err = env.feed.UpdateMedia(ctx, bob, post.ID.String(), "media/steal.png")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotAuthorized(err))
}

func TestDeletePostCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.newMember(t, "alice")
	bob, _ := env.newMember(t, "bob")

	post := env.newPost(t, aliceProfile, "doomed", models.HashtagGeneral, time.Now())

	_, err := env.likes.Like(ctx, bob, post.ID.String())
	require.NoError(t, err)
	_, err = env.comments.CreateComment(ctx, bob, post.ID.String(), &CreateCommentRequest{Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, env.feed.DeletePost(ctx, alice, post.ID.String()))

	got, err := env.feed.GetPost(ctx, post.ID.String())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Nil(t, got)

	likeCount, err := env.likeRepo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), likeCount)

	commentCount, err := env.commentRepo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), commentCount)
}

func TestDeletePostAdminBypass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, aliceProfile := env.newMember(t, "alice")
	post := env.newPost(t, aliceProfile, "flagged", models.HashtagGeneral, time.Now())

	admin, _ := env.newMember(t, "admin")
	admin.IsAdmin = true

	require.NoError(t, env.feed.DeletePost(ctx, admin, post.ID.String()))
}

func TestLikedPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _ := env.newMember(t, "alice")
	_, bobProfile := env.newMember(t, "bob")

	base := time.Now().Add(-time.Hour)
	liked := env.newPost(t, bobProfile, "liked one", models.HashtagGeneral, base)
	env.newPost(t, bobProfile, "ignored one", models.HashtagGeneral, base.Add(time.Minute))

	_, err := env.likes.Like(ctx, alice, liked.ID.String())
	require.NoError(t, err)

	posts, err := env.feed.LikedPosts(ctx, alice, 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, liked.ID, posts[0].ID)
}
