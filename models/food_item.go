package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FoodItem is a meal definition that can be issued at the canteen
type FoodItem struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Code          string                      `gorm:"uniqueIndex;not null" json:"code"`
	Name          string                      `gorm:"not null" json:"name"`
	Price         decimal.Decimal             `gorm:"type:numeric(12,2);not null" json:"price"`
	Subsidy       decimal.Decimal             `gorm:"type:numeric(12,2);not null;default:0" json:"subsidy"`
	Currency      string                      `gorm:"not null;default:'USD'" json:"currency"`
	Active        bool                        `gorm:"not null" json:"active"`
	AvailableDays datatypes.JSONSlice[string] `json:"available_days"` // empty means every day
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for the FoodItem model
func (FoodItem) TableName() string {
	return "food_items"
}

// AvailableOn reports whether the item may be issued on the given weekday
func (f FoodItem) AvailableOn(day time.Weekday) bool {
	if len(f.AvailableDays) == 0 {
		return true
	}
	for _, name := range f.AvailableDays {
		if name == day.String() {
			return true
		}
	}
	return false
}
