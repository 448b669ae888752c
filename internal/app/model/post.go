package model

import (
	"time"
)

type PostStatus string

const (
	PostStatusPendingAudit PostStatus = "pending_audit"
	PostStatusVisible      PostStatus = "visible"
	PostStatusHidden       PostStatus = "hidden"
)

// Post is a community post. Posts go through the same moderation flow as
// book listings but with their own status values.
type Post struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	AuthorID  uint       `gorm:"not null;index" json:"author_id"`
	Title     string     `gorm:"type:varchar(100);not null" json:"title"`
	Content   string     `gorm:"type:text" json:"content"`
	Status    PostStatus `gorm:"type:varchar(20);default:'pending_audit';index" json:"status"`
	AuditNote string     `gorm:"type:varchar(200)" json:"audit_note,omitempty"`
	ViewCount int        `gorm:"default:0" json:"view_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}
