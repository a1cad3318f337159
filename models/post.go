package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog/CMS entry edited by the admin.
type Post struct {
	ID        uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string   `gorm:"uniqueIndex;not null" json:"slug"`
	Title     string   `gorm:"not null" json:"title"`
	Content   string   `json:"content"`
	Images    []string `gorm:"serializer:json" json:"images"`
	Published bool     `gorm:"default:false" json:"published"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
