package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsDefaults are used when the settings row is created on first read
type SettingsDefaults struct {
	DailyMealLimit int
	CompanyName    string
}

// SettingsInput carries the editable settings fields
type SettingsInput struct {
	DailyMealLimit int
	CompanyName    string
}

// SettingsService owns the canteen settings singleton
type SettingsService struct {
	db       *gorm.DB
	defaults SettingsDefaults
}

// NewSettingsService creates a settings service
func NewSettingsService(db *gorm.DB, defaults SettingsDefaults) *SettingsService {
	if defaults.DailyMealLimit < 1 {
		defaults.DailyMealLimit = 1
	}
	return &SettingsService{db: db, defaults: defaults}
}

// Get returns the settings, creating the default row on first access.
// The fixed primary key keeps concurrent first reads from creating two rows.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	db := s.db.WithContext(ctx)

	var settings models.Settings
	err := db.First(&settings, models.SettingsID).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings = models.Settings{
		ID:             models.SettingsID,
		DailyMealLimit: s.defaults.DailyMealLimit,
		CompanyName:    s.defaults.CompanyName,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	if err := db.First(&settings, models.SettingsID).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

// Update changes the settings and records who changed them
func (s *SettingsService) Update(ctx context.Context, operator *models.User, in SettingsInput) (*models.Settings, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.DailyMealLimit < 1 {
		return nil, NewValidationError("dailyMealLimit must be a positive integer")
	}
	if in.CompanyName == "" {
		return nil, NewValidationError("companyName is required")
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.DailyMealLimit = in.DailyMealLimit
	settings.CompanyName = in.CompanyName
	if operator != nil {
		id := operator.ID
		settings.UpdatedByID = &id
	}
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}
