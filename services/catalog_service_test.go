package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMeal_Availability(t *testing.T) {
	db := setupTestDB(t)
	cal := fixedCalendar(monday)
	catalog := NewCatalogService(db, cal)
	ctx := context.Background()

	seedFoodItem(t, db, "1", "Every Day", "5", "1")
	seedFoodItem(t, db, "2", "Weekdays", "5", "1", "Monday", "Tuesday")
	seedFoodItem(t, db, "3", "Weekend", "5", "1", "Saturday", "Sunday")
	inactive := seedFoodItem(t, db, "4", "Retired", "5", "1")
	require.NoError(t, db.Model(inactive).Update("active", false).Error)

	tests := []struct {
		code string
		ok   bool
	}{
		{"1", true},
		{"2", true},
		{"3", false},
		{"4", false},
		{"5", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			item, err := catalog.ResolveMeal(ctx, tt.code)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.code, item.Code)
			} else {
				assert.ErrorIs(t, err, ErrFoodItemNotFound)
			}
		})
	}

	_, err := catalog.ResolveMeal(ctx, "")
	assert.True(t, IsKind(err, KindValidation))
}

func TestResolveMeal_WeekendItemOnSaturday(t *testing.T) {
	db := setupTestDB(t)
	saturday := monday.AddDate(0, 0, 5)
	catalog := NewCatalogService(db, fixedCalendar(saturday))
	seedFoodItem(t, db, "3", "Weekend", "5", "1", "Saturday")

	item, err := catalog.ResolveMeal(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Weekend", item.Name)
}

func validFoodItemInput() FoodItemInput {
	return FoodItemInput{
		Code:          " 7 ",
		Name:          " Soup ",
		Price:         decimal.RequireFromString("4.00"),
		Subsidy:       decimal.RequireFromString("1.50"),
		AvailableDays: []string{"monday", "FRIDAY", "Monday"},
	}
}

func TestCreateFoodItem(t *testing.T) {
	db := setupTestDB(t)
	catalog := NewCatalogService(db, fixedCalendar(monday))

	item, err := catalog.CreateFoodItem(context.Background(), validFoodItemInput())
	require.NoError(t, err)

	assert.Equal(t, "7", item.Code)
	assert.Equal(t, "Soup", item.Name)
	assert.Equal(t, "USD", item.Currency)
	assert.True(t, item.Active)
	assert.Equal(t, []string{time.Monday.String(), time.Friday.String()}, []string(item.AvailableDays))

	_, err = catalog.CreateFoodItem(context.Background(), validFoodItemInput())
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "FOOD_ITEM_CODE_EXISTS", se.Code)
}

func TestCreateFoodItem_Validation(t *testing.T) {
	db := setupTestDB(t)
	catalog := NewCatalogService(db, fixedCalendar(monday))

	tests := []struct {
		name   string
		mutate func(*FoodItemInput)
	}{
		{"missing code", func(in *FoodItemInput) { in.Code = " " }},
		{"missing name", func(in *FoodItemInput) { in.Name = "" }},
		{"negative price", func(in *FoodItemInput) { in.Price = decimal.NewFromInt(-1) }},
		{"negative subsidy", func(in *FoodItemInput) { in.Subsidy = decimal.NewFromInt(-1) }},
		{"subsidy above price", func(in *FoodItemInput) { in.Subsidy = decimal.RequireFromString("4.01") }},
		{"unknown weekday", func(in *FoodItemInput) { in.AvailableDays = []string{"Funday"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validFoodItemInput()
			tt.mutate(&in)
			_, err := catalog.CreateFoodItem(context.Background(), in)
			assert.True(t, IsKind(err, KindValidation), "got %v", err)
		})
	}
}

func TestUpdateAndDeactivateFoodItem(t *testing.T) {
	db := setupTestDB(t)
	catalog := NewCatalogService(db, fixedCalendar(monday))
	ctx := context.Background()
	soup := seedFoodItem(t, db, "7", "Soup", "4", "1")
	seedFoodItem(t, db, "8", "Salad", "4", "1")

	in := validFoodItemInput()
	in.Price = decimal.RequireFromString("6")
	updated, err := catalog.UpdateFoodItem(ctx, soup.ID, in)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(6)))

	in.Code = "8"
	_, err = catalog.UpdateFoodItem(ctx, soup.ID, in)
	assert.True(t, IsKind(err, KindValidation))

	_, err = catalog.UpdateFoodItem(ctx, 999, validFoodItemInput())
	assert.ErrorIs(t, err, ErrFoodItemNotFound)

	deactivated, err := catalog.DeactivateFoodItem(ctx, soup.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	active := true
	items, err := catalog.ListFoodItems(ctx, &active)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "8", items[0].Code)

	all, err := catalog.ListFoodItems(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
