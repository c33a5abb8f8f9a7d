package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/sociograph/sociograph/internal/models"
	"github.com/sociograph/sociograph/internal/policy"
	"github.com/sociograph/sociograph/internal/repository"
	"github.com/sociograph/sociograph/pkg/cache"
	"github.com/sociograph/sociograph/pkg/logger"
	"github.com/sociograph/sociograph/pkg/queue"
)

type ProfileService struct {
	profileRepo *repository.ProfileRepository
	followRepo  *repository.FollowRepository
	cache       StatsCache
	producer    EventPublisher
	statsTTL    time.Duration
	logger      *logger.Logger
}

func NewProfileService(
	profileRepo *repository.ProfileRepository,
	followRepo *repository.FollowRepository,
	statsCache StatsCache,
	producer EventPublisher,
	statsTTL time.Duration,
	logger *logger.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		followRepo:  followRepo,
		cache:       statsCache,
		producer:    producer,
		statsTTL:    statsTTL,
		logger:      logger,
	}
}

type CreateProfileRequest struct {
	FirstName   string     `json:"first_name" binding:"required,max=50"`
	LastName    string     `json:"last_name" binding:"required,max=50"`
	Biography   string     `json:"biography" binding:"max=2000"`
	PhoneNumber *string    `json:"phone_number"`
	BirthDate   *time.Time `json:"birth_date"`
}

type UpdateProfileRequest struct {
	FirstName   *string    `json:"first_name" binding:"omitempty,max=50"`
	LastName    *string    `json:"last_name" binding:"omitempty,max=50"`
	Biography   *string    `json:"biography" binding:"omitempty,max=2000"`
	PhoneNumber *string    `json:"phone_number"`
	BirthDate   *time.Time `json:"birth_date"`
}

type ProfileStats struct {
	FollowersCount  int64 `json:"followers_count"`
	FollowingsCount int64 `json:"followings_count"`
}

func (s *ProfileService) CreateProfile(ctx context.Context, actor policy.Actor, req *CreateProfileRequest) (*models.Profile, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	if req.PhoneNumber != nil {
		if err := validatePhoneNumber(*req.PhoneNumber); err != nil {
			return nil, err
		}
	}

	existing, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("profile already exists for this user")
	}

	profile := &models.Profile{
		UserID:      actor.UserID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Biography:   req.Biography,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   req.BirthDate,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("profile or phone number already exists")
		}
		return nil, err
	}

	publishEvent(ctx, s.producer, s.logger, profile.ID.String(), queue.EventProfileCreated, map[string]interface{}{
		"profile_id": profile.ID,
		"user_id":    profile.UserID,
	})

	s.logger.WithField("profile_id", profile.ID).Info("Profile created successfully")
	return profile, nil
}

// GetProfile returns the profile with follower/following counts. The
// counts come from a short-lived cache; on a miss they are recounted
// from the graph and cached until the next follow event evicts them.
func (s *ProfileService) GetProfile(ctx context.Context, profileID string) (*repository.ProfileWithStats, error) {
	id, err := uuid.Parse(profileID)
	if err != nil {
		return nil, apperrors.Validation("invalid profile ID")
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("profile")
	}

	stats, err := s.profileStats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &repository.ProfileWithStats{
		Profile:         *profile,
		FollowersCount:  stats.FollowersCount,
		FollowingsCount: stats.FollowingsCount,
	}, nil
}

func (s *ProfileService) profileStats(ctx context.Context, profileID uuid.UUID) (*ProfileStats, error) {
	key := ProfileStatsKey(profileID.String())

	var cached ProfileStats
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !cache.IsMiss(err) {
		s.logger.WithError(err).Warn("Failed to read profile stats cache")
	}

	followers, err := s.followRepo.CountFollowers(ctx, profileID)
	if err != nil {
		return nil, err
	}
	followings, err := s.followRepo.CountFollowings(ctx, profileID)
	if err != nil {
		return nil, err
	}

	stats := &ProfileStats{FollowersCount: followers, FollowingsCount: followings}
	if err := s.cache.SetJSON(ctx, key, stats, s.statsTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache profile stats")
	}
	return stats, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context, firstName, lastName string, offset, limit int) ([]*repository.ProfileWithStats, error) {
	return s.profileRepo.List(ctx, firstName, lastName, offset, limit)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, actor policy.Actor, profileID string, req *UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.ownedProfile(ctx, actor, profileID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Biography != nil {
		profile.Biography = *req.Biography
	}
	if req.PhoneNumber != nil {
		if err := validatePhoneNumber(*req.PhoneNumber); err != nil {
			return nil, err
		}
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.BirthDate != nil {
		profile.BirthDate = req.BirthDate
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("phone number already in use")
		}
		return nil, err
	}

	publishEvent(ctx, s.producer, s.logger, profile.ID.String(), queue.EventProfileUpdated, map[string]interface{}{
		"profile_id": profile.ID,
	})

	s.logger.WithField("profile_id", profile.ID).Info("Profile updated successfully")
	return profile, nil
}

// UpdatePicture stores a new opaque media reference for the profile.
func (s *ProfileService) UpdatePicture(ctx context.Context, actor policy.Actor, profileID, pictureRef string) (*models.Profile, error) {
	if pictureRef == "" {
		return nil, apperrors.Validation("picture reference is required")
	}

	profile, err := s.ownedProfile(ctx, actor, profileID)
	if err != nil {
		return nil, err
	}

	profile.ProfilePicture = pictureRef
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) DeleteProfile(ctx context.Context, actor policy.Actor, profileID string) error {
	profile, err := s.ownedProfile(ctx, actor, profileID)
	if err != nil {
		return err
	}

	if err := s.profileRepo.Delete(ctx, profile.ID); err != nil {
		return err
	}

	s.invalidateStats(ctx, profile.ID.String())
	publishEvent(ctx, s.producer, s.logger, profile.ID.String(), queue.EventProfileDeleted, map[string]interface{}{
		"profile_id": profile.ID,
	})

	s.logger.WithField("profile_id", profileID).Info("Profile deleted")
	return nil
}

// Follow creates the directed edge actor -> target. Self-follow is a
// validation failure, a duplicate edge a conflict; the unique pair
// index backs the pre-check under concurrent requests.
func (s *ProfileService) Follow(ctx context.Context, actor policy.Actor, targetProfileID string) error {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return err
	}

	targetID, err := uuid.Parse(targetProfileID)
	if err != nil {
		return apperrors.Validation("invalid profile ID")
	}

	follower, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if follower == nil {
		return apperrors.NotFound("profile")
	}

	if follower.ID == targetID {
		return apperrors.Validation("you cannot follow yourself")
	}

	target, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.NotFound("profile")
	}

	existing, err := s.followRepo.Get(ctx, follower.ID, targetID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.Conflict("you have already followed this user")
	}

	follow := &models.Follow{
		FollowerID:  follower.ID,
		FollowingID: targetID,
	}

	if err := s.followRepo.Create(ctx, follow); err != nil {
		if isDuplicate(err) {
			return apperrors.Conflict("you have already followed this user")
		}
		return err
	}

	s.invalidateStats(ctx, follower.ID.String(), targetID.String())
	publishEvent(ctx, s.producer, s.logger, follower.ID.String(), queue.EventFollowCreated, queue.FollowEventData{
		FollowerID:  follower.ID.String(),
		FollowingID: targetID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  follower.ID,
		"following_id": targetID,
	}).Info("Follow edge created")
	return nil
}

// Unfollow removes the edge if it exists. A missing edge is not an
// error: the first return value reports whether anything was removed.
func (s *ProfileService) Unfollow(ctx context.Context, actor policy.Actor, targetProfileID string) (bool, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return false, err
	}

	targetID, err := uuid.Parse(targetProfileID)
	if err != nil {
		return false, apperrors.Validation("invalid profile ID")
	}

	follower, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return false, err
	}
	if follower == nil {
		return false, apperrors.NotFound("profile")
	}

	// The soft no-op is only for a missing edge; a missing target is
	// still not found.
	target, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, apperrors.NotFound("profile")
	}

	removed, err := s.followRepo.Delete(ctx, follower.ID, targetID)
	if err != nil {
		return false, err
	}
	if removed == 0 {
		return false, nil
	}

	s.invalidateStats(ctx, follower.ID.String(), targetID.String())
	publishEvent(ctx, s.producer, s.logger, follower.ID.String(), queue.EventFollowDeleted, queue.FollowEventData{
		FollowerID:  follower.ID.String(),
		FollowingID: targetID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  follower.ID,
		"following_id": targetID,
	}).Info("Follow edge removed")
	return true, nil
}

func (s *ProfileService) Followers(ctx context.Context, profileID string, offset, limit int) ([]*models.Profile, error) {
	id, err := uuid.Parse(profileID)
	if err != nil {
		return nil, apperrors.Validation("invalid profile ID")
	}
	return s.followRepo.Followers(ctx, id, offset, limit)
}

func (s *ProfileService) Followings(ctx context.Context, profileID string, offset, limit int) ([]*models.Profile, error) {
	id, err := uuid.Parse(profileID)
	if err != nil {
		return nil, apperrors.Validation("invalid profile ID")
	}
	return s.followRepo.Followings(ctx, id, offset, limit)
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("profile")
	}
	return profile, nil
}

func (s *ProfileService) ownedProfile(ctx context.Context, actor policy.Actor, profileID string) (*models.Profile, error) {
	id, err := uuid.Parse(profileID)
	if err != nil {
		return nil, apperrors.Validation("invalid profile ID")
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("profile")
	}

	if err := policy.RequireOwner(actor, profile.UserID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) invalidateStats(ctx context.Context, profileIDs ...string) {
	keys := make([]string, 0, len(profileIDs))
	for _, id := range profileIDs {
		keys = append(keys, ProfileStatsKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate profile stats cache")
	}
}

func validatePhoneNumber(phone string) error {
	trimmed := strings.TrimPrefix(phone, "+")
	if trimmed == "" || len(trimmed) < 7 || len(trimmed) > 15 {
		return apperrors.Validation(fmt.Sprintf("invalid phone number %q", phone))
	}
	for _, r := range trimmed {
		if !unicode.IsDigit(r) {
			return apperrors.Validation(fmt.Sprintf("invalid phone number %q", phone))
		}
	}
	return nil
}
