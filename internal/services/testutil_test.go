package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/models"
	"github.com/sociograph/sociograph/internal/policy"
	"github.com/sociograph/sociograph/internal/repository"
	"github.com/sociograph/sociograph/pkg/cache"
	"github.com/sociograph/sociograph/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// capturePublisher records published events instead of talking to a broker.
type capturePublisher struct {
	events []interface{}
}

func (p *capturePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.events = append(p.events, value)
	return nil
}

type testEnv struct {
	db     *gorm.DB
	redis  *cache.RedisClient
	mini   *miniredis.Miniredis
	events *capturePublisher

	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	followRepo  *repository.FollowRepository
	postRepo    *repository.PostRepository
	likeRepo    *repository.LikeRepository
	commentRepo *repository.CommentRepository

	users     *UserService
	profiles  *ProfileService
	feed      *FeedService
	likes     *LikeService
	comments  *CommentService
	scheduler *SchedulerService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database with a single connection keeps the
	// whole pool on one in-memory store and enforces the cascades.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	mini := miniredis.RunT(t)
	redisClient := cache.NewRedisClient(mini.Addr(), "", 0, 10, 2)
	t.Cleanup(func() { redisClient.Close() })

	log := logger.NewLoggerWithLevel("error")
	events := &capturePublisher{}

	env := &testEnv{
		db:     db,
		redis:  redisClient,
		mini:   mini,
		events: events,

		userRepo:    repository.NewUserRepository(db),
		profileRepo: repository.NewProfileRepository(db),
		followRepo:  repository.NewFollowRepository(db),
		postRepo:    repository.NewPostRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
		commentRepo: repository.NewCommentRepository(db),
	}

	env.scheduler = NewSchedulerService(redisClient, "posts:scheduled", log)
	env.users = NewUserService(env.userRepo, log)
	env.profiles = NewProfileService(env.profileRepo, env.followRepo, redisClient, events, time.Minute, log)
	env.feed = NewFeedService(env.postRepo, env.profileRepo, env.scheduler, events, log)
	env.likes = NewLikeService(env.likeRepo, env.postRepo, env.profileRepo, events, log)
	env.comments = NewCommentService(env.commentRepo, env.postRepo, env.profileRepo, events, log)
	return env
}

func actorFor(userID uuid.UUID) policy.Actor {
	return policy.Actor{UserID: userID, Authenticated: true}
}

// newMember creates an identity with a profile and returns the acting
// identity plus the profile.
func (e *testEnv) newMember(t *testing.T, name string) (policy.Actor, *models.Profile) {
	t.Helper()

	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))

	profile := &models.Profile{
		UserID:    user.ID,
		FirstName: name,
		LastName:  "Tester",
	}
	require.NoError(t, e.profileRepo.Create(context.Background(), profile))

	return policy.Actor{UserID: user.ID, Authenticated: true}, profile
}

// newPost inserts a post directly with an explicit creation time so
// ordering assertions are deterministic.
func (e *testEnv) newPost(t *testing.T, author *models.Profile, content string, hashtag models.Hashtag, createdAt time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		AuthorID:  author.ID,
		Content:   content,
		Hashtag:   hashtag,
		CreatedAt: createdAt,
	}
	require.NoError(t, e.postRepo.Create(context.Background(), post))
	return post
}
