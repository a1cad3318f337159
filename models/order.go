package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // placed, awaiting payment
	OrderStatusPaid      OrderStatus = "paid"      // payment confirmed by admin
	OrderStatusFulfilled OrderStatus = "fulfilled" // handed to the customer
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type Order struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	Number int  `gorm:"uniqueIndex;not null" json:"number"` // human-facing, max+1, never reused

	CustomerName  string `gorm:"not null" json:"customer_name"`
	ContactMethod string `gorm:"type:VARCHAR(10);not null" json:"contact_method"` // telegram | phone | email
	ContactValue  string `gorm:"not null" json:"contact_value"`
	Address       string `json:"address"`
	Comment       string `json:"comment"`

	Currency      string `gorm:"size:3" json:"currency"`
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`

	Status      OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PromoCodeID *uint       `json:"promo_code_id,omitempty"`
	UserID      *string     `gorm:"index" json:"user_id,omitempty"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem is a point-in-time copy of a cart line. PriceCents is snapshotted
// at order creation so later catalog changes never alter historical orders.
type OrderItem struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	OrderID    uint  `gorm:"index" json:"order_id"`
	VariantID  uint  `json:"variant_id"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"price_cents"`
}
