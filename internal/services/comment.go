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

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	profileRepo *repository.ProfileRepository
	producer    EventPublisher
	logger      *logger.Logger
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	profileRepo *repository.ProfileRepository,
	producer EventPublisher,
	logger *logger.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
		producer:    producer,
		logger:      logger,
	}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

func (s *CommentService) CreateComment(ctx context.Context, actor policy.Actor, postID string, req *CreateCommentRequest) (*models.Comment, error) {
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

	comment := &models.Comment{
		AuthorID: profile.ID,
		PostID:   id,
		Content:  req.Content,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.producer, s.logger, profile.ID.String(), queue.EventCommentCreated, queue.CommentEventData{
		CommentID: comment.ID.String(),
		AuthorID:  profile.ID.String(),
		PostID:    postID,
	})

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    postID,
	}).Info("Comment created")
	return comment, nil
}

func (s *CommentService) PostComments(ctx context.Context, postID string, offset, limit int) ([]*models.Comment, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID")
	}
	return s.commentRepo.ListByPost(ctx, id, offset, limit)
}

// UpdateComment edits the text; only the comment's owner may edit,
// with no admin bypass, matching the ownership-only rule for edits.
func (s *CommentService) UpdateComment(ctx context.Context, actor policy.Actor, commentID string, req *UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if comment.Author.UserID != actor.UserID {
		return nil, apperrors.NotAuthorized("you do not own this comment")
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor policy.Actor, commentID string) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}

	if err := policy.RequireOwner(actor, comment.Author.UserID); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}

	publishEvent(ctx, s.producer, s.logger, comment.AuthorID.String(), queue.EventCommentDeleted, queue.CommentEventData{
		CommentID: comment.ID.String(),
		AuthorID:  comment.AuthorID.String(),
		PostID:    comment.PostID.String(),
	})

	s.logger.WithField("comment_id", commentID).Info("Comment deleted")
	return nil
}

func (s *CommentService) getComment(ctx context.Context, commentID string) (*models.Comment, error) {
	id, err := uuid.Parse(commentID)
	if err != nil {
		return nil, apperrors.Validation("invalid comment ID")
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperrors.NotFound("comment")
	}
	return comment, nil
}
