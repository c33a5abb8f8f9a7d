package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity record: credentials and role flags only.
// Social-facing data lives on Profile.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	IsAdmin   bool      `json:"is_admin" gorm:"default:false"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile extends an identity with display and biographical data,
// exactly one per user. Deleting the user cascades here and, through
// the profile, to all authored content and graph edges.
type Profile struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	FirstName      string     `json:"first_name" gorm:"not null"`
	LastName       string     `json:"last_name" gorm:"not null"`
	Biography      string     `json:"biography" gorm:"type:text"`
	ProfilePicture string     `json:"profile_picture"`
	PhoneNumber    *string    `json:"phone_number" gorm:"uniqueIndex"`
	BirthDate      *time.Time `json:"birth_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IDs are generated application-side so the same models work against
// stores without gen_random_uuid().
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (Profile) TableName() string {
	return "profiles"
}
