package models

import (
	"time"

	"gorm.io/gorm"
)

// Operator roles
const (
	RoleOperator   = "operator"
	RoleSupervisor = "supervisor"
)

// Operator represents a shop floor worker (or supervisor) in the system.
// Stations is the set of workstations the operator is authorized to work
// at; an operator may only claim orders waiting at one of these stations.
type Operator struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'operator'" json:"role"` // "operator" or "supervisor"
	Stations  []Station      `gorm:"many2many:operator_stations" json:"stations,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Operator model
func (Operator) TableName() string {
	return "operators"
}

// IsSupervisor returns true if the operator has the supervisor role
func (o *Operator) IsSupervisor() bool {
	return o.Role == RoleSupervisor
}
