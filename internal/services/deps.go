package services

import (
	"context"
	"time"

	"github.com/sociograph/sociograph/pkg/logger"
	"github.com/sociograph/sociograph/pkg/queue"
)

// EventPublisher is satisfied by *queue.KafkaProducer. Events are
// best-effort: a publish failure is logged, never surfaced to callers.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// StatsCache is the subset of the redis client the profile service
// needs for its short-lived follower/following counters.
type StatsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func publishEvent(ctx context.Context, producer EventPublisher, log *logger.Logger, key string, t queue.EventType, data interface{}) {
	event, err := queue.NewEvent(t, time.Now(), data)
	if err != nil {
		log.WithError(err).WithField("event_type", t).Error("Failed to build event")
		return
	}
	if err := producer.Publish(ctx, key, event); err != nil {
		log.WithError(err).WithField("event_type", t).Error("Failed to publish event")
	}
}

// ProfileStatsKey is the cache key for a profile's edge counters; the
// worker deletes it when follow events arrive.
func ProfileStatsKey(profileID string) string {
	return "profile:stats:" + profileID
}
