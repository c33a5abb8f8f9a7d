package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sociograph/sociograph/pkg/cache"
	"github.com/sociograph/sociograph/pkg/logger"
)

// SchedulerService is the deferred-post hand-off: payloads land in a
// redis sorted set scored by activation time and the worker drains the
// due range. At-least-once: an entry is only removed after the post is
// actually created.
type SchedulerService struct {
	cache    *cache.RedisClient
	queueKey string
	logger   *logger.Logger
}

type ScheduledPost struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	MediaURL  string    `json:"media_url"`
	Hashtag   string    `json:"hashtag"`
	PublishAt time.Time `json:"publish_at"`
}

// DueEntry carries the raw queue member alongside the decoded payload
// so the member can be removed verbatim after handling.
type DueEntry struct {
	Member string
	Post   ScheduledPost
}

func NewSchedulerService(cache *cache.RedisClient, queueKey string, logger *logger.Logger) *SchedulerService {
	return &SchedulerService{
		cache:    cache,
		queueKey: queueKey,
		logger:   logger,
	}
}

func (s *SchedulerService) SchedulePost(ctx context.Context, post ScheduledPost) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduled post: %w", err)
	}

	if err := s.cache.ZAdd(ctx, s.queueKey, &redis.Z{
		Score:  float64(post.PublishAt.Unix()),
		Member: string(data),
	}); err != nil {
		return fmt.Errorf("failed to enqueue scheduled post: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"author_id":  post.AuthorID,
		"publish_at": post.PublishAt,
	}).Info("Post scheduled for deferred creation")
	return nil
}

// Due returns every entry whose activation time is at or before now.
func (s *SchedulerService) Due(ctx context.Context, now time.Time) ([]DueEntry, error) {
	members, err := s.cache.ZRangeByScoreMax(ctx, s.queueKey, float64(now.Unix()))
	if err != nil {
		return nil, fmt.Errorf("failed to read due posts: %w", err)
	}

	entries := make([]DueEntry, 0, len(members))
	for _, member := range members {
		raw, ok := member.Member.(string)
		if !ok {
			continue
		}
		var post ScheduledPost
		if err := json.Unmarshal([]byte(raw), &post); err != nil {
			s.logger.WithError(err).Warn("Dropping undecodable scheduled post")
			if remErr := s.cache.ZRem(ctx, s.queueKey, raw); remErr != nil {
				s.logger.WithError(remErr).Warn("Failed to drop scheduled post")
			}
			continue
		}
		entries = append(entries, DueEntry{Member: raw, Post: post})
	}
	return entries, nil
}

func (s *SchedulerService) Remove(ctx context.Context, member string) error {
	return s.cache.ZRem(ctx, s.queueKey, member)
}

func (s *SchedulerService) Pending(ctx context.Context) (int64, error) {
	return s.cache.ZCard(ctx, s.queueKey)
}
