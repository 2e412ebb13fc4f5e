package models

import (
	"time"

	"gorm.io/gorm"
)

// Production order statuses. An order is pending when it waits to be
// claimed at its current station, in_progress while an open task exists
// there, and completed once it has passed the last station. Completed is
// terminal.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ProductionOrder represents one unit of product moving through the line.
// StationID always points at the station where the next (or currently
// open) task happens; once the order is completed it keeps pointing at
// the last station, where production finished.
type ProductionOrder struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	SerialNumber       string     `gorm:"uniqueIndex;not null" json:"serial_number"`
	AccessoryID        uint       `gorm:"not null;index" json:"accessory_id"`
	Accessory          Accessory  `gorm:"foreignKey:AccessoryID" json:"accessory"`
	StationID          uint       `gorm:"not null;index" json:"station_id"` // current station
	Station            Station    `gorm:"foreignKey:StationID" json:"station"`
	Status             string     `gorm:"not null;default:'pending'" json:"status"` // pending, in_progress, completed
	AssignedOperatorID *uint      `gorm:"index" json:"assigned_operator_id"`        // nullable scheduling hint, not enforced exclusivity
	AssignedOperator   *Operator  `gorm:"foreignKey:AssignedOperatorID" json:"assigned_operator,omitempty"`
	DueDate            *time.Time `json:"due_date"`
	ImageS3Key         *string    `json:"image_s3_key"`                 // nullable, S3 key for the reference drawing
	ImageURL           *string    `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL for the drawing
	Tasks              []Task     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ProductionOrder model
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// IsCompleted returns true if the order has passed the last station
func (o *ProductionOrder) IsCompleted() bool {
	return o.Status == StatusCompleted
}
