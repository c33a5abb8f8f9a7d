package workers

import (
	"context"
	"time"

	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/sociograph/sociograph/internal/services"
	"github.com/sociograph/sociograph/pkg/logger"
)

// retryable reports whether a failed scheduled publication is worth
// another attempt. Validation and missing-author failures never heal.
func retryable(err error) bool {
	return !apperrors.IsValidation(err) && !apperrors.IsNotFound(err)
}

// SchedulerWorker drains the deferred-post queue. Each tick it reads
// every entry whose activation time has passed, creates the post, and
// only then removes the entry, so a crash mid-batch re-delivers rather
// than drops.
type SchedulerWorker struct {
	scheduler    *services.SchedulerService
	feedService  *services.FeedService
	pollInterval time.Duration
	logger       *logger.Logger
	stop         chan struct{}
	done         chan struct{}
}

func NewSchedulerWorker(
	scheduler *services.SchedulerService,
	feedService *services.FeedService,
	pollInterval time.Duration,
	logger *logger.Logger,
) *SchedulerWorker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &SchedulerWorker{
		scheduler:    scheduler,
		feedService:  feedService,
		pollInterval: pollInterval,
		logger:       logger,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (w *SchedulerWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting scheduler worker...")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.WithError(err).Error("Failed to drain scheduled posts")
			}
		}
	}
}

func (w *SchedulerWorker) drain(ctx context.Context) error {
	entries, err := w.scheduler.Due(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := w.feedService.CreateFromSchedule(ctx, entry.Post); err != nil {
			w.logger.WithError(err).WithField("author_id", entry.Post.AuthorID).Error("Failed to publish scheduled post")
			// Unrecoverable payloads would loop forever; drop them.
			if !retryable(err) {
				if remErr := w.scheduler.Remove(ctx, entry.Member); remErr != nil {
					w.logger.WithError(remErr).Warn("Failed to drop scheduled post")
				}
			}
			continue
		}
		if err := w.scheduler.Remove(ctx, entry.Member); err != nil {
			w.logger.WithError(err).Warn("Failed to remove published entry")
		}
	}
	return nil
}

func (w *SchedulerWorker) Stop() error {
	w.logger.Info("Stopping scheduler worker...")
	close(w.stop)
	select {
	case <-w.done:
	case <-time.After(10 * time.Second):
	}
	return nil
}
