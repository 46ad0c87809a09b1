package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FoodItemInput carries the editable fields of a food item
type FoodItemInput struct {
	Code          string
	Name          string
	Price         decimal.Decimal
	Subsidy       decimal.Decimal
	Currency      string
	AvailableDays []string
	Active        *bool
}

// CatalogService resolves meal codes and administers food items
type CatalogService struct {
	db  *gorm.DB
	cal *Calendar
}

// NewCatalogService creates a catalog service
func NewCatalogService(db *gorm.DB, cal *Calendar) *CatalogService {
	return &CatalogService{db: db, cal: cal}
}

// ResolveMeal returns the active food item whose code matches exactly and
// which is served on the current canteen weekday.
func (s *CatalogService) ResolveMeal(ctx context.Context, code string) (*models.FoodItem, error) {
	return s.resolveMeal(s.db.WithContext(ctx), code)
}

func (s *CatalogService) resolveMeal(db *gorm.DB, code string) (*models.FoodItem, error) {
	if code == "" {
		return nil, NewValidationError("foodItemCode is required")
	}

	var item models.FoodItem
	if err := db.Where("code = ? AND active = ?", code, true).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodItemNotFound
		}
		return nil, fmt.Errorf("failed to load food item: %w", err)
	}

	if !item.AvailableOn(s.cal.Today()) {
		return nil, ErrFoodItemNotFound
	}
	return &item, nil
}

// GetFoodItem returns a food item by id regardless of its active flag
func (s *CatalogService) GetFoodItem(ctx context.Context, id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodItemNotFound
		}
		return nil, fmt.Errorf("failed to load food item: %w", err)
	}
	return &item, nil
}

// ListFoodItems lists food items ordered by code, optionally filtered by active flag
func (s *CatalogService) ListFoodItems(ctx context.Context, active *bool) ([]models.FoodItem, error) {
	query := s.db.WithContext(ctx).Order("code ASC")
	if active != nil {
		query = query.Where("active = ?", *active)
	}

	var items []models.FoodItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	return items, nil
}

// CreateFoodItem validates and stores a new food item
func (s *CatalogService) CreateFoodItem(ctx context.Context, in FoodItemInput) (*models.FoodItem, error) {
	days, err := validateFoodItem(&in)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureCodeFree(db, in.Code, 0); err != nil {
		return nil, err
	}

	item := models.FoodItem{
		Code:          in.Code,
		Name:          in.Name,
		Price:         in.Price,
		Subsidy:       in.Subsidy,
		Currency:      in.Currency,
		Active:        in.Active == nil || *in.Active,
		AvailableDays: days,
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create food item: %w", err)
	}
	return &item, nil
}

// UpdateFoodItem replaces the editable fields of a food item.
// Orders keep the price they were issued with.
func (s *CatalogService) UpdateFoodItem(ctx context.Context, id uint, in FoodItemInput) (*models.FoodItem, error) {
	days, err := validateFoodItem(&in)
	if err != nil {
		return nil, err
	}

	item, err := s.GetFoodItem(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureCodeFree(db, in.Code, item.ID); err != nil {
		return nil, err
	}

	item.Code = in.Code
	item.Name = in.Name
	item.Price = in.Price
	item.Subsidy = in.Subsidy
	item.Currency = in.Currency
	item.AvailableDays = days
	if in.Active != nil {
		item.Active = *in.Active
	}
	if err := db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update food item: %w", err)
	}
	return item, nil
}

// DeactivateFoodItem soft-deletes a food item
func (s *CatalogService) DeactivateFoodItem(ctx context.Context, id uint) (*models.FoodItem, error) {
	item, err := s.GetFoodItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(item).Update("active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate food item: %w", err)
	}
	item.Active = false
	return item, nil
}

func (s *CatalogService) ensureCodeFree(db *gorm.DB, code string, exceptID uint) error {
	var count int64
	query := db.Model(&models.FoodItem{}).Where("code = ?", code)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check food item code: %w", err)
	}
	if count > 0 {
		return &ServiceError{Kind: KindValidation, Code: "FOOD_ITEM_CODE_EXISTS", Message: "A food item with this code already exists"}
	}
	return nil
}

func validateFoodItem(in *FoodItemInput) ([]string, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Currency = strings.TrimSpace(in.Currency)
	if in.Currency == "" {
		in.Currency = "USD"
	}

	switch {
	case in.Code == "":
		return nil, NewValidationError("code is required")
	case in.Name == "":
		return nil, NewValidationError("name is required")
	case in.Price.IsNegative():
		return nil, NewValidationError("price must not be negative")
	case in.Subsidy.IsNegative():
		return nil, NewValidationError("subsidy must not be negative")
	case in.Subsidy.GreaterThan(in.Price):
		return nil, NewValidationError("subsidy must not exceed price")
	}

	return normalizeWeekdays(in.AvailableDays)
}

// normalizeWeekdays maps case-insensitive English weekday names to time.Weekday names
func normalizeWeekdays(names []string) ([]string, error) {
	var out []string
	seen := make(map[time.Weekday]bool)
	for _, name := range names {
		day, ok := parseWeekday(name)
		if !ok {
			return nil, NewValidationError(fmt.Sprintf("invalid weekday %q", name))
		}
		if !seen[day] {
			seen[day] = true
			out = append(out, day.String())
		}
	}
	return out, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}
