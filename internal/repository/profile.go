package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

// ProfileWithStats is the list/detail projection: a profile annotated
// with edge counts computed at query time.
type ProfileWithStats struct {
	models.Profile  `gorm:"embedded"`
	FollowersCount  int64 `json:"followers_count"`
	FollowingsCount int64 `json:"followings_count"`
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return err
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by user: %w", err)
	}
	return &profile, nil
}

// List returns profiles annotated with edge counts, optionally filtered
// by case-insensitive substring match on first or last name.
func (r *ProfileRepository) List(ctx context.Context, firstName, lastName string, offset, limit int) ([]*ProfileWithStats, error) {
	db := r.db.WithContext(ctx).
		Table("profiles").
		Select("profiles.*, COUNT(DISTINCT incoming.id) AS followers_count, COUNT(DISTINCT outgoing.id) AS followings_count").
		Joins("LEFT JOIN follows incoming ON incoming.following_id = profiles.id").
		Joins("LEFT JOIN follows outgoing ON outgoing.follower_id = profiles.id").
		Group("profiles.id")

	if firstName != "" {
		db = db.Where(`LOWER(profiles.first_name) LIKE ? ESCAPE '\'`, likePattern(firstName))
	}
	if lastName != "" {
		db = db.Where(`LOWER(profiles.last_name) LIKE ? ESCAPE '\'`, likePattern(lastName))
	}

	var rows []*ProfileWithStats
	if err := db.Order("profiles.created_at ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return rows, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return err
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
