package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string      `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `json:"description"`
	Images      []string    `gorm:"serializer:json" json:"images"`
	Specs       []SpecEntry `gorm:"serializer:json" json:"specs"`
	Published   bool        `gorm:"default:true" json:"published"`
	Variants    []Variant   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// SpecEntry is one admin-editable key/value pair shown on the product page.
// Order matters for display, so specs are kept as a list, not a map.
type SpecEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Variant struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  uint   `gorm:"index" json:"product_id"`
	SKU        string `gorm:"uniqueIndex" json:"sku"`
	Label      string `json:"label"`
	PriceCents int64  `gorm:"not null" json:"price_cents"`
	Currency   string `gorm:"size:3;default:'RUB'" json:"currency"`
	Stock      int    `json:"stock"`
	Active     bool   `gorm:"default:true" json:"active"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
