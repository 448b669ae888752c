package model

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the login/credentials record. Profile data lives in Profile,
// created lazily when missing (legacy rows may have no profile at all).
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Phone        string    `gorm:"type:varchar(11);uniqueIndex;not null" json:"phone"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "logindata"
}

// Profile is the 1:1 user profile row, keyed by the owning User ID.
// AvgRating/ReviewCount are the seller reputation aggregates recomputed
// on every new review.
type Profile struct {
	ID          uint       `gorm:"primarykey" json:"-"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Nickname    string     `gorm:"type:varchar(50)" json:"nickname"`
	AvatarURL   string     `json:"avatar_url"`
	Gender      int        `gorm:"default:0" json:"gender"` // 0 unknown, 1 male, 2 female
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Bio         string     `gorm:"type:text" json:"bio"`
	SchoolID    *uint      `gorm:"index" json:"school_id,omitempty"`
	AvgRating   float64    `gorm:"default:5" json:"avg_rating"`
	ReviewCount int        `gorm:"default:0" json:"review_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	School *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

func (Profile) TableName() string {
	return "users"
}
