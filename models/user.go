package models

import "time"

type User struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	TgID      string  `gorm:"uniqueIndex" json:"tg_id"`
	Phone     string  `json:"phone"`
	Name      string  `json:"name"`
	Cart      *Cart   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart,omitempty"`
	Orders    []Order `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
