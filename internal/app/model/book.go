package model

import (
	"time"
)

type BookStatus string

const (
	BookStatusPendingAudit BookStatus = "pending_audit" // awaiting admin audit
	BookStatusOnSale       BookStatus = "on_sale"
	BookStatusOffSale      BookStatus = "off_sale"
	BookStatusRejected     BookStatus = "rejected"
)

// Book is a second-hand book listing owned by its seller. Stock is never
// negative: order creation decrements it with a conditional write.
type Book struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	ISBN        string     `gorm:"type:varchar(20);index" json:"isbn"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Author      string     `gorm:"type:varchar(100)" json:"author"`
	Publisher   string     `gorm:"type:varchar(100)" json:"publisher"`
	PublishDate string     `gorm:"type:varchar(10)" json:"publish_date"` // YYYY-MM-DD
	CategoryID  uint       `gorm:"not null;index" json:"category_id"`
	Description string     `gorm:"type:text" json:"description"`
	CoverImg    string     `json:"cover_img"`
	Condition   string     `gorm:"type:varchar(20)" json:"condition"` // e.g. new / like_new / used
	Price       float64    `gorm:"not null" json:"price"`
	Stock       int        `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Status      BookStatus `gorm:"type:varchar(20);default:'pending_audit';index" json:"status"`
	AuditNote   string     `gorm:"type:varchar(200)" json:"audit_note,omitempty"`
	SellerID    uint       `gorm:"not null;index" json:"seller_id"`
	ViewCount   int        `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Seller   User     `gorm:"foreignKey:SellerID" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Book) TableName() string {
	return "book"
}

// Category is the reference table for book listings.
type Category struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:varchar(200)" json:"description"`
}

func (Category) TableName() string {
	return "categories"
}
