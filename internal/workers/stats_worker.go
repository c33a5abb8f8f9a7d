package workers

import (
	"context"
	"encoding/json"

	"github.com/sociograph/sociograph/internal/services"
	"github.com/sociograph/sociograph/pkg/cache"
	"github.com/sociograph/sociograph/pkg/logger"
	"github.com/sociograph/sociograph/pkg/queue"
)

// StatsWorker consumes social events and invalidates the cached
// follower/following counts of the profiles involved. The API also
// invalidates inline on follow changes; this path covers writers that
// only go through the event stream.
type StatsWorker struct {
	cache    *cache.RedisClient
	consumer *queue.KafkaConsumer
	logger   *logger.Logger
}

func NewStatsWorker(cache *cache.RedisClient, consumer *queue.KafkaConsumer, logger *logger.Logger) *StatsWorker {
	return &StatsWorker{
		cache:    cache,
		consumer: consumer,
		logger:   logger,
	}
}

func (w *StatsWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stats worker...")

	return w.consumer.Subscribe(ctx, func(msg queue.Message) error {
		switch msg.Event.Type {
		case queue.EventFollowCreated, queue.EventFollowDeleted:
			return w.handleFollowChange(ctx, msg.Event)
		case queue.EventProfileDeleted:
			return w.handleProfileDeleted(ctx, msg.Event)
		default:
			return nil
		}
	})
}

func (w *StatsWorker) handleFollowChange(ctx context.Context, event queue.Event) error {
	var data queue.FollowEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		w.logger.WithError(err).Warn("Undecodable follow event")
		return nil
	}

	w.logger.WithFields(map[string]interface{}{
		"event_type":   event.Type,
		"follower_id":  data.FollowerID,
		"following_id": data.FollowingID,
	}).Info("Invalidating follow stats")

	for _, id := range []string{data.FollowerID, data.FollowingID} {
		if id == "" {
			continue
		}
		if err := w.cache.Delete(ctx, services.ProfileStatsKey(id)); err != nil {
			w.logger.WithError(err).WithField("profile_id", id).Error("Failed to invalidate stats cache")
		}
	}
	return nil
}

func (w *StatsWorker) handleProfileDeleted(ctx context.Context, event queue.Event) error {
	var data struct {
		ProfileID string `json:"profile_id"`
	}
	if err := json.Unmarshal(event.Data, &data); err != nil || data.ProfileID == "" {
		return nil
	}
	if err := w.cache.Delete(ctx, services.ProfileStatsKey(data.ProfileID)); err != nil {
		w.logger.WithError(err).WithField("profile_id", data.ProfileID).Error("Failed to invalidate stats cache")
	}
	return nil
}

func (w *StatsWorker) Stop() error {
	w.logger.Info("Stopping stats worker...")
	return w.consumer.Close()
}
