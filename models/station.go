package models

import (
	"time"

	"gorm.io/gorm"
)

// Station represents one workstation in the production line.
// Sequence gives each station a unique position in the line; orders move
// through stations strictly by ascending sequence. Values do not need to
// be contiguous, only unique.
type Station struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Sequence  int            `gorm:"uniqueIndex;not null" json:"sequence"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Station model
func (Station) TableName() string {
	return "stations"
}
