package model

import (
	"time"
)

// School is a read-mostly reference entity. Coordinates are optional and
// only used by the nearby-books lookup; schools without them are skipped
// there.
type School struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	City      string    `gorm:"type:varchar(50)" json:"city"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (School) TableName() string {
	return "school"
}
