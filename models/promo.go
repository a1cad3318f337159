package models

import "time"

type PromoKind string

const (
	PromoKindPercent PromoKind = "PERCENT" // Amount is percent points
	PromoKindFixed   PromoKind = "FIXED"   // Amount is minor currency units
)

type PromoCode struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string     `gorm:"uniqueIndex;not null" json:"code"` // canonical: trimmed, uppercase
	Kind      PromoKind  `gorm:"type:VARCHAR(10);not null" json:"kind"`
	Amount    int64      `gorm:"not null" json:"amount"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	MinOrderCents *int64 `json:"min_order_cents,omitempty"`
	MaxUses       *int64 `json:"max_uses,omitempty"`
	UsedCount     int64  `gorm:"default:0" json:"used_count"`
	PerUserLimit  *int64 `json:"per_user_limit,omitempty"`

	// OwnerUserID restricts redemption to one account (a personal code).
	OwnerUserID *string `gorm:"index" json:"owner_user_id,omitempty"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromoUsage is the per-user audit row: one row per successful redemption,
// counted to enforce PerUserLimit. Never updated after insert.
type PromoUsage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"index:idx_user_promo" json:"user_id"`
	PromoID   uint   `gorm:"index:idx_user_promo" json:"promo_id"`
	CreatedAt time.Time
}
