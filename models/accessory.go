package models

import (
	"time"

	"gorm.io/gorm"
)

// Accessory represents a product type that production orders are built for
type Accessory struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Accessory model
func (Accessory) TableName() string {
	return "accessories"
}
