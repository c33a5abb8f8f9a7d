package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/handlers"
	"github.com/sociograph/sociograph/internal/middleware"
	"github.com/sociograph/sociograph/internal/repository"
	"github.com/sociograph/sociograph/internal/services"
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
	logger.Info("Starting Sociograph API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

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

	socialEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.SocialEvents)
	defer socialEventsProducer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	profileRepo := repository.NewProfileRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)

	schedulerService := services.NewSchedulerService(redisClient, cfg.Scheduler.QueueKey, logger)
	userService := services.NewUserService(userRepo, logger)
	profileService := services.NewProfileService(profileRepo, followRepo, redisClient, socialEventsProducer, cfg.Feed.StatsCacheTTL, logger)
	feedService := services.NewFeedService(postRepo, profileRepo, schedulerService, socialEventsProducer, logger)
	likeService := services.NewLikeService(likeRepo, postRepo, profileRepo, socialEventsProducer, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, profileRepo, socialEventsProducer, logger)

	userHandler := handlers.NewUserHandler(userService, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	profileHandler := handlers.NewProfileHandler(profileService)
	feedHandler := handlers.NewFeedHandler(feedService, likeService, commentService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(&middleware.JWTConfig{Secret: cfg.JWT.Secret}))
		{
			protected.GET("/users/me", userHandler.GetMe)
			protected.DELETE("/users/me", userHandler.DeleteAccount)

			protected.POST("/profiles", profileHandler.CreateProfile)
			protected.GET("/profiles", profileHandler.ListProfiles)
			protected.GET("/profiles/:id", profileHandler.GetProfile)
			protected.PATCH("/profiles/:id", profileHandler.UpdateProfile)
			protected.PUT("/profiles/:id/picture", profileHandler.UploadPicture)
			protected.DELETE("/profiles/:id", profileHandler.DeleteProfile)
			protected.POST("/profiles/:id/follow", profileHandler.Follow)
			protected.DELETE("/profiles/:id/follow", profileHandler.Unfollow)
			protected.GET("/profiles/:id/followers", profileHandler.GetFollowers)
			protected.GET("/profiles/:id/followings", profileHandler.GetFollowings)
			protected.GET("/profiles/:id/posts", feedHandler.GetProfilePosts)

			protected.POST("/posts", feedHandler.CreatePost)
			protected.GET("/feed", feedHandler.GetFeed)
			protected.GET("/posts/liked", feedHandler.GetLikedPosts)
			protected.GET("/posts/:id", feedHandler.GetPost)
			protected.PUT("/posts/:id/media", feedHandler.UpdatePostMedia)
			protected.DELETE("/posts/:id", feedHandler.DeletePost)
			protected.POST("/posts/:id/like", feedHandler.LikePost)
			protected.DELETE("/posts/:id/like", feedHandler.UnlikePost)
			protected.GET("/posts/:id/likes", feedHandler.GetPostLikes)
			protected.POST("/posts/:id/comments", feedHandler.CreateComment)
			protected.GET("/posts/:id/comments", feedHandler.GetPostComments)
			protected.PUT("/comments/:id", feedHandler.UpdateComment)
			protected.DELETE("/comments/:id", feedHandler.DeleteComment)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	dirs := []string{"logs", "configs"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Failed to create directory %s: %v", dir, err)
		}
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "sociograph"
  password: "sociograph"
  dbname: "sociograph"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    social_events: "social-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

feed:
  stats_cache_ttl: 30s

scheduler:
  queue_key: "posts:scheduled"
  poll_interval: 5s

log:
  level: "info"`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
