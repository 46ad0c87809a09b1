package models

import "time"

// SettingsID is the primary key of the only settings row
const SettingsID = 1

// Settings is the canteen-wide configuration singleton
type Settings struct {
	ID             uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	DailyMealLimit int       `gorm:"not null;default:1;check:daily_meal_limit > 0" json:"daily_meal_limit"`
	CompanyName    string    `gorm:"not null" json:"company_name"`
	UpdatedByID    *uint     `json:"updated_by_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}
