package models

import (
	"time"
)

// VisitorDepartment is the synthetic department guests are reported under
const VisitorDepartment = "Visitor"

// Customer is a registered person that can be issued meals.
// Customers are never removed, only deactivated.
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null" json:"external_id"` // id assigned by the biometric device
	Name       string    `gorm:"not null;index" json:"name"`
	Department string    `gorm:"index" json:"department"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
