package models

import (
	"time"

	"gorm.io/gorm"
)

// Task represents one operator's worked interval on an order at one
// station. It is created open when the operator claims the order and
// closed exactly once on completion; closed tasks are never reopened.
//
// The partial unique index on OperatorID enforces at the database level
// that an operator has at most one open task at any time.
type Task struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	Order      ProductionOrder `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	StationID  uint            `gorm:"not null;index" json:"station_id"`
	Station    Station         `gorm:"foreignKey:StationID" json:"station"`
	OperatorID uint            `gorm:"not null;index:idx_tasks_one_open,unique,where:completed = false AND deleted_at IS NULL" json:"operator_id"`
	Operator   Operator        `gorm:"foreignKey:OperatorID" json:"operator"`
	StartedAt  time.Time       `gorm:"not null" json:"started_at"`
	EndedAt    *time.Time      `json:"ended_at"` // nullable, set when the task is closed
	Completed  bool            `gorm:"not null;default:false" json:"completed"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}
