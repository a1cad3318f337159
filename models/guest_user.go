package models

import "time"

// GuestUser is an anonymous identity issued before login. Its ID owns the
// guest cart until the customer authenticates and the cart is merged.
type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}
