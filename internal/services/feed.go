package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/sociograph/sociograph/internal/models"
	"github.com/sociograph/sociograph/internal/policy"
	"github.com/sociograph/sociograph/internal/repository"
	"github.com/sociograph/sociograph/pkg/logger"
	"github.com/sociograph/sociograph/pkg/queue"
)

// FeedService owns post lifecycle and feed composition. The feed is a
// live snapshot: every call resolves the viewer's current follow set
// and computes aggregate counts in the same query as the selection, so
// results always reflect the store at query time.
type FeedService struct {
	postRepo    *repository.PostRepository
	profileRepo *repository.ProfileRepository
	scheduler   *SchedulerService
	producer    EventPublisher
	logger      *logger.Logger
}

func NewFeedService(
	postRepo *repository.PostRepository,
	profileRepo *repository.ProfileRepository,
	scheduler *SchedulerService,
	producer EventPublisher,
	logger *logger.Logger,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		scheduler:   scheduler,
		producer:    producer,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Content     string     `json:"content" binding:"required,min=1,max=2000"`
	MediaURL    string     `json:"media_url"`
	Hashtag     string     `json:"hashtag" binding:"required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// CreatePost creates the post now, or hands it to the deferred queue
// when scheduled_at lies in the future. The second return value
// reports whether the post was deferred.
func (s *FeedService) CreatePost(ctx context.Context, actor policy.Actor, req *CreatePostRequest) (*models.Post, bool, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, false, err
	}

	hashtag := models.Hashtag(req.Hashtag)
	if !hashtag.Valid() {
		return nil, false, apperrors.Validation("unknown hashtag")
	}

	author, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, false, err
	}
	if author == nil {
		return nil, false, apperrors.NotFound("profile")
	}

	if req.ScheduledAt != nil && req.ScheduledAt.After(time.Now()) {
		err := s.scheduler.SchedulePost(ctx, ScheduledPost{
			AuthorID:  author.ID.String(),
			Content:   req.Content,
			MediaURL:  req.MediaURL,
			Hashtag:   req.Hashtag,
			PublishAt: *req.ScheduledAt,
		})
		if err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	post := &models.Post{
		AuthorID: author.ID,
		Content:  req.Content,
		MediaURL: req.MediaURL,
		Hashtag:  hashtag,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, false, err
	}

	publishEvent(ctx, s.producer, s.logger, post.ID.String(), queue.EventPostCreated, queue.PostEventData{
		PostID:    post.ID.String(),
		AuthorID:  author.ID.String(),
		Hashtag:   string(post.Hashtag),
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id":   post.ID,
		"author_id": author.ID,
	}).Info("Post created successfully")

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return post, false, nil
	}
	return created, false, nil
}

// CreateFromSchedule is the worker-side half of deferred creation.
func (s *FeedService) CreateFromSchedule(ctx context.Context, sp ScheduledPost) error {
	authorID, err := uuid.Parse(sp.AuthorID)
	if err != nil {
		return apperrors.Validation("invalid author ID in scheduled post")
	}

	hashtag := models.Hashtag(sp.Hashtag)
	if !hashtag.Valid() {
		return apperrors.Validation("unknown hashtag in scheduled post")
	}

	author, err := s.profileRepo.GetByID(ctx, authorID)
	if err != nil {
		return err
	}
	if author == nil {
		// Author deleted between scheduling and activation.
		return apperrors.NotFound("profile")
	}

	post := &models.Post{
		AuthorID: authorID,
		Content:  sp.Content,
		MediaURL: sp.MediaURL,
		Hashtag:  hashtag,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return err
	}

	publishEvent(ctx, s.producer, s.logger, post.ID.String(), queue.EventPostCreated, queue.PostEventData{
		PostID:    post.ID.String(),
		AuthorID:  sp.AuthorID,
		Hashtag:   sp.Hashtag,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id":   post.ID,
		"author_id": sp.AuthorID,
	}).Info("Scheduled post published")
	return nil
}

// GetFeed composes the viewer's feed: own posts plus posts from
// currently-followed authors, newest first, optionally narrowed by a
// case-insensitive hashtag substring.
func (s *FeedService) GetFeed(ctx context.Context, actor policy.Actor, hashtag string, offset, limit int) ([]*models.Post, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	viewer, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, apperrors.NotFound("profile")
	}

	return s.postRepo.Feed(ctx, viewer.ID, hashtag, offset, limit)
}

func (s *FeedService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID")
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NotFound("post")
	}
	return post, nil
}

func (s *FeedService) GetProfilePosts(ctx context.Context, profileID string, offset, limit int) ([]*models.Post, error) {
	id, err := uuid.Parse(profileID)
	if err != nil {
		return nil, apperrors.Validation("invalid profile ID")
	}
	return s.postRepo.GetByAuthor(ctx, id, offset, limit)
}

// LikedPosts lists the posts the acting profile has liked.
func (s *FeedService) LikedPosts(ctx context.Context, actor policy.Actor, offset, limit int) ([]*models.Post, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	viewer, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, apperrors.NotFound("profile")
	}

	return s.postRepo.LikedBy(ctx, viewer.ID, offset, limit)
}

// UpdateMedia replaces the post's media reference. Content itself is
// immutable after creation; media replace is the only allowed edit.
func (s *FeedService) UpdateMedia(ctx context.Context, actor policy.Actor, postID, mediaURL string) (*models.Post, error) {
	if mediaURL == "" {
		return nil, apperrors.Validation("media reference is required")
	}

	post, err := s.ownedPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}

	post.MediaURL = mediaURL
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post; the store cascades to its comments and
// likes.
func (s *FeedService) DeletePost(ctx context.Context, actor policy.Actor, postID string) error {
	post, err := s.ownedPost(ctx, actor, postID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}

	publishEvent(ctx, s.producer, s.logger, post.ID.String(), queue.EventPostDeleted, queue.PostEventData{
		PostID:   post.ID.String(),
		AuthorID: post.AuthorID.String(),
		Hashtag:  string(post.Hashtag),
	})

	s.logger.WithField("post_id", postID).Info("Post deleted")
	return nil
}

func (s *FeedService) ownedPost(ctx context.Context, actor policy.Actor, postID string) (*models.Post, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID")
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NotFound("post")
	}

	if err := policy.RequireOwner(actor, post.Author.UserID); err != nil {
		return nil, err
	}
	return post, nil
}
