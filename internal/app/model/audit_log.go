package model

import (
	"time"
)

type AuditAction string

const (
	AuditActionPass   AuditAction = "pass"
	AuditActionReject AuditAction = "reject"
)

// AuditLog records one moderation decision. Rows are append-only.
type AuditLog struct {
	ID         uint        `gorm:"primarykey" json:"id"`
	AdminID    uint        `gorm:"not null;index" json:"admin_id"`
	TargetType string      `gorm:"type:varchar(20);not null;index" json:"target_type"`
	TargetID   uint        `gorm:"not null;index" json:"target_id"`
	Action     AuditAction `gorm:"type:varchar(10);not null" json:"action"`
	Note       string      `gorm:"type:varchar(200)" json:"note,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`

	Admin User `gorm:"foreignKey:AdminID" json:"-"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
