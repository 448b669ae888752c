package model

import (
	"time"
)

type OrderStatus string
type FulfillmentType string

const (
	OrderStatusPendingPay     OrderStatus = "pending_pay"
	OrderStatusPendingShip    OrderStatus = "pending_ship"
	OrderStatusPendingReceive OrderStatus = "pending_receive"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"

	FulfillmentSelfPickup FulfillmentType = "self_pickup"
	FulfillmentLogistics  FulfillmentType = "logistics"
)

// orderTransitions is the full status state machine. Completed and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPay:     {OrderStatusCancelled, OrderStatusPendingShip},
	OrderStatusPendingShip:    {OrderStatusCancelled, OrderStatusPendingReceive},
	OrderStatusPendingReceive: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:      {},
	OrderStatusCancelled:      {},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal successors of s, for error messages.
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	return orderTransitions[s]
}

// Valid reports whether s is one of the defined order statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Order is a single-product purchase. TotalAmount is fixed at creation
// (unit price x quantity) and never recomputed.
type Order struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	OrderNo          string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`
	BuyerID          uint            `gorm:"not null;index" json:"buyer_id"`
	SellerID         uint            `gorm:"not null;index" json:"seller_id"`
	ProductID        uint            `gorm:"not null;index" json:"product_id"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	TotalAmount      float64         `gorm:"not null" json:"total_amount"`
	FulfillmentType  FulfillmentType `gorm:"type:varchar(20);not null" json:"fulfillment_type"`
	PickupLocationID *uint           `gorm:"index" json:"pickup_location_id,omitempty"`
	ReceiverName     string          `gorm:"type:varchar(50)" json:"receiver_name,omitempty"`
	ReceiverPhone    string          `gorm:"type:varchar(20)" json:"receiver_phone,omitempty"`
	ReceiverAddress  string          `gorm:"type:varchar(200)" json:"receiver_address,omitempty"`
	Remark           string          `gorm:"type:varchar(200)" json:"remark,omitempty"`
	Status           OrderStatus     `gorm:"type:varchar(20);default:'pending_pay';index" json:"status"`
	LogisticsNo      string          `gorm:"type:varchar(50)" json:"logistics_no,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Buyer          User    `gorm:"foreignKey:BuyerID" json:"-"`
	Seller         User    `gorm:"foreignKey:SellerID" json:"-"`
	Product        Book    `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	PickupLocation *School `gorm:"foreignKey:PickupLocationID" json:"pickup_location,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
