package model

import (
	"strings"
	"time"
)

// Review is a buyer's rating of a completed order. One review per order.
// Image URLs are stored comma-joined so the column stays portable across
// postgres and the sqlite test database.
type Review struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	OrderID    uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	ReviewerID uint      `gorm:"not null;index" json:"reviewer_id"`
	SellerID   uint      `gorm:"not null;index" json:"seller_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Content    string    `gorm:"type:varchar(500)" json:"content,omitempty"`
	ImageURLs  string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Reviewer User  `gorm:"foreignKey:ReviewerID" json:"-"`
	Product  Book  `gorm:"foreignKey:ProductID" json:"-"`
	Order    Order `gorm:"foreignKey:OrderID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

// ImageList splits the stored URLs, dropping empties.
func (r *Review) ImageList() []string {
	if r.ImageURLs == "" {
		return []string{}
	}
	parts := strings.Split(r.ImageURLs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetImageList joins urls into the stored representation.
func (r *Review) SetImageList(urls []string) {
	r.ImageURLs = strings.Join(urls, ",")
}
