package models

import "time"

// Cart belongs to exactly one owner: an authenticated user (UserID) or an
// anonymous guest (GuestToken). Never both.
type Cart struct {
	CartID     uint       `gorm:"primaryKey" json:"cart_id"`
	UserID     *string    `gorm:"uniqueIndex" json:"user_id,omitempty"`
	GuestToken *string    `gorm:"uniqueIndex" json:"guest_token,omitempty"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	CartID    uint    `gorm:"index;uniqueIndex:idx_cart_variant" json:"cart_id"`
	VariantID uint    `gorm:"uniqueIndex:idx_cart_variant" json:"variant_id"`
	Variant   Variant `gorm:"foreignKey:VariantID" json:"variant"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	AddedAt   time.Time
}
