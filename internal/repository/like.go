package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return err
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

// Delete reports the number of removed rows so callers can distinguish
// an unlike from a no-op on a like that never existed.
func (r *LikeRepository) Delete(ctx context.Context, authorID, postID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("author_id = ? AND post_id = ?", authorID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete like: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *LikeRepository) Get(ctx context.Context, authorID, postID uuid.UUID) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("author_id = ? AND post_id = ?", authorID, postID).
		First(&like).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

func (r *LikeRepository) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Like, error) {
	var likes []*models.Like
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("failed to get likes by post: %w", err)
	}
	return likes, nil
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
