package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sociograph/sociograph/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied filter
// text so a literal "%" or "_" only matches itself.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for use with
// a `LIKE ? ESCAPE '\'` clause.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// annotated selects posts with their like/comment counts in the same
// query as the post rows themselves, grouped by post so duplicate join
// rows never duplicate a post.
func (r *PostRepository) annotated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, COUNT(DISTINCT likes.id) AS like_count, COUNT(DISTINCT comments.id) AS comment_count").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Joins("LEFT JOIN comments ON comments.post_id = posts.id").
		Group("posts.id")
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var posts []*models.Post
	if err := r.annotated(ctx).
		Preload("Author").
		Where("posts.id = ?", id).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return posts[0], nil
}

// Feed returns the posts visible to the viewer: everything authored by
// the viewer or by a profile the viewer currently follows, newest
// first, annotated with live aggregate counts. The optional hashtag is
// a case-insensitive substring filter.
func (r *PostRepository) Feed(ctx context.Context, viewerID uuid.UUID, hashtag string, offset, limit int) ([]*models.Post, error) {
	followings := r.db.Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ?", viewerID)

	db := r.annotated(ctx).
		Where("(posts.author_id IN (?) OR posts.author_id = ?)", followings, viewerID)

	if hashtag != "" {
		db = db.Where(`LOWER(posts.hashtag) LIKE ? ESCAPE '\'`, likePattern(hashtag))
	}

	var posts []*models.Post
	if err := db.Preload("Author").
		Order("posts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to compose feed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.annotated(ctx).
		Preload("Author").
		Where("posts.author_id = ?", authorID).
		Order("posts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by author: %w", err)
	}
	return posts, nil
}

// LikedBy returns the posts the given profile has liked, newest first.
func (r *PostRepository) LikedBy(ctx context.Context, profileID uuid.UUID, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.annotated(ctx).
		Preload("Author").
		Joins("JOIN likes viewer_likes ON viewer_likes.post_id = posts.id AND viewer_likes.author_id = ?", profileID).
		Order("posts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get liked posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
