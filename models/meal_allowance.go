package models

import "time"

// MealAllowance counts the approved meals of one customer on one business day.
// It is the row the daily limit gate conditionally increments.
type MealAllowance struct {
	CustomerID  uint      `gorm:"primaryKey;autoIncrement:false" json:"customer_id"`
	BusinessDay string    `gorm:"primaryKey;size:10" json:"business_day"` // YYYY-MM-DD in the canteen timezone
	Used        int       `gorm:"not null;default:0" json:"used"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the MealAllowance model
func (MealAllowance) TableName() string {
	return "meal_allowances"
}
