package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/models"
	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		// Preserved as-is so callers can map the unique-pair violation.
		if err == gorm.ErrDuplicatedKey {
			return err
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// Delete removes the edge if present and reports how many rows went
// away, so callers can tell a real unfollow from a no-op.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete follow: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *FollowRepository) Get(ctx context.Context, followerID, followingID uuid.UUID) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get follow: %w", err)
	}
	return &follow, nil
}

// Followers lists the profiles following the given profile, oldest
// edge first so repeated pages walk a stable order.
func (r *FollowRepository) Followers(ctx context.Context, profileID uuid.UUID, offset, limit int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).
		Table("profiles").
		Select("profiles.*").
		Joins("JOIN follows ON follows.follower_id = profiles.id").
		Where("follows.following_id = ?", profileID).
		Order("follows.created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return profiles, nil
}

// Followings lists the profiles the given profile follows, oldest edge
// first.
func (r *FollowRepository) Followings(ctx context.Context, profileID uuid.UUID, offset, limit int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).
		Table("profiles").
		Select("profiles.*").
		Joins("JOIN follows ON follows.following_id = profiles.id").
		Where("follows.follower_id = ?", profileID).
		Order("follows.created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to get followings: %w", err)
	}
	return profiles, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", profileID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *FollowRepository) CountFollowings(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", profileID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count followings: %w", err)
	}
	return count, nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}
	return count > 0, nil
}
