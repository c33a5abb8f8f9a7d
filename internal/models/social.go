package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hashtag is the fixed category set a post is tagged with.
type Hashtag string

const (
	HashtagGeneral Hashtag = "general"
	HashtagTravel  Hashtag = "travel"
	HashtagFood    Hashtag = "food"
	HashtagSport   Hashtag = "sport"
	HashtagMusic   Hashtag = "music"
	HashtagTech    Hashtag = "tech"
	HashtagNews    Hashtag = "news"
)

func (h Hashtag) Valid() bool {
	switch h {
	case HashtagGeneral, HashtagTravel, HashtagFood, HashtagSport, HashtagMusic, HashtagTech, HashtagNews:
		return true
	}
	return false
}

// Follow is a directed edge: follower sees following's posts.
// The unique pair index is the authoritative guard against duplicate
// edges under concurrent requests; edges are never updated in place.
type Follow struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	FollowerID  uuid.UUID `json:"follower_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair"`
	FollowingID uuid.UUID `json:"following_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  Profile `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following Profile `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

type Post struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	MediaURL  string    `json:"media_url"`
	Hashtag   Hashtag   `json:"hashtag" gorm:"type:varchar(32);not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Aggregate annotations computed by the feed queries; never stored.
	LikeCount    int64 `json:"like_count" gorm:"-:migration;->"`
	CommentCount int64 `json:"comment_count" gorm:"-:migration;->"`

	Author Profile `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;not null;index"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author Profile `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Post   Post    `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Like is toggled on and off, never updated; the pair index keeps one
// like per profile per post.
type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_pair"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_pair"`
	CreatedAt time.Time `json:"created_at"`

	Author Profile `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Post   Post    `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (Follow) TableName() string {
	return "follows"
}

func (Post) TableName() string {
	return "posts"
}

func (Comment) TableName() string {
	return "comments"
}

func (Like) TableName() string {
	return "likes"
}
