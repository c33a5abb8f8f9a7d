package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/sociograph/sociograph/internal/models"
	"github.com/sociograph/sociograph/internal/policy"
	"github.com/sociograph/sociograph/internal/repository"
	"github.com/sociograph/sociograph/pkg/logger"
	"github.com/sociograph/sociograph/pkg/queue"
)

type LikeService struct {
	likeRepo    *repository.LikeRepository
	postRepo    *repository.PostRepository
	profileRepo *repository.ProfileRepository
	producer    EventPublisher
	logger      *logger.Logger
}

func NewLikeService(
	likeRepo *repository.LikeRepository,
	postRepo *repository.PostRepository,
	profileRepo *repository.ProfileRepository,
	producer EventPublisher,
	logger *logger.Logger,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
		producer:    producer,
		logger:      logger,
	}
}

// Like records that the acting profile liked the post. Liking twice is
// a conflict; the unique pair index backs the pre-check when two
// requests race.
func (s *LikeService) Like(ctx context.Context, actor policy.Actor, postID string) (*models.Like, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("profile")
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NotFound("post")
	}

	existing, err := s.likeRepo.Get(ctx, profile.ID, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("you already liked this post")
	}

	like := &models.Like{
		AuthorID: profile.ID,
		PostID:   id,
	}

	if err := s.likeRepo.Create(ctx, like); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("you already liked this post")
		}
		return nil, err
	}

	publishEvent(ctx, s.producer, s.logger, profile.ID.String(), queue.EventLikeCreated, queue.LikeEventData{
		AuthorID: profile.ID.String(),
		PostID:   postID,
	})

	s.logger.WithFields(map[string]interface{}{
		"profile_id": profile.ID,
		"post_id":    postID,
	}).Info("Post liked")
	return like, nil
}

// Unlike removes the like if present; a missing like is a soft no-op
// reported through the first return value.
func (s *LikeService) Unlike(ctx context.Context, actor policy.Actor, postID string) (bool, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return false, err
	}

	id, err := uuid.Parse(postID)
	if err != nil {
		return false, apperrors.Validation("invalid post ID")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return false, err
	}
	if profile == nil {
		return false, apperrors.NotFound("profile")
	}

	// The soft no-op is only for a missing like; a missing post is
	// still not found.
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, apperrors.NotFound("post")
	}

	removed, err := s.likeRepo.Delete(ctx, profile.ID, id)
	if err != nil {
		return false, err
	}
	if removed == 0 {
		return false, nil
	}

	publishEvent(ctx, s.producer, s.logger, profile.ID.String(), queue.EventLikeDeleted, queue.LikeEventData{
		AuthorID: profile.ID.String(),
		PostID:   postID,
	})

	s.logger.WithFields(map[string]interface{}{
		"profile_id": profile.ID,
		"post_id":    postID,
	}).Info("Post unliked")
	return true, nil
}

func (s *LikeService) PostLikes(ctx context.Context, postID string, offset, limit int) ([]*models.Like, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID")
	}
	return s.likeRepo.ListByPost(ctx, id, offset, limit)
}
