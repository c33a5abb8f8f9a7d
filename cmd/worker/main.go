package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/repository"
	"github.com/sociograph/sociograph/internal/services"
	"github.com/sociograph/sociograph/internal/workers"
	"github.com/sociograph/sociograph/pkg/cache"
	"github.com/sociograph/sociograph/pkg/logger"
	"github.com/sociograph/sociograph/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLoggerWithLevel(cfg.Log.Level)
	logger.Info("Starting Sociograph worker...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	socialEventsConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.SocialEvents, "stats-worker-group")
	defer socialEventsConsumer.Close()

	socialEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.SocialEvents)
	defer socialEventsProducer.Close()

	profileRepo := repository.NewProfileRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)

	schedulerService := services.NewSchedulerService(redisClient, cfg.Scheduler.QueueKey, logger)
	feedService := services.NewFeedService(postRepo, profileRepo, schedulerService, socialEventsProducer, logger)

	schedulerWorker := workers.NewSchedulerWorker(schedulerService, feedService, cfg.Scheduler.PollInterval, logger)
	statsWorker := workers.NewStatsWorker(redisClient, socialEventsConsumer, logger)

	go func() {
		if err := schedulerWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Scheduler worker stopped with error")
		}
	}()

	go func() {
		if err := statsWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Stats worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	if err := schedulerWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop scheduler worker")
	}
	if err := statsWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop stats worker")
	}

	logger.Info("Worker exited")
}
