package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name  string
		model interface{ TableName() string }
		want  string
	}{
		{"user", User{}, "users"},
		{"customer", Customer{}, "customers"},
		{"food item", FoodItem{}, "food_items"},
		{"order", Order{}, "orders"},
		{"settings", Settings{}, "settings"},
		{"meal allowance", MealAllowance{}, "meal_allowances"},
		{"audit log", AuditLog{}, "audit_logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.model.TableName())
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, User{Role: RoleAdmin}.IsAdmin())
	assert.False(t, User{Role: RoleOperator}.IsAdmin())
	assert.False(t, User{}.IsAdmin())
}

func TestFoodItemAvailableOn(t *testing.T) {
	everyDay := FoodItem{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.True(t, everyDay.AvailableOn(d), "items without availability list are served on %s", d)
	}

	mondays := FoodItem{AvailableDays: []string{"Monday"}}
	assert.True(t, mondays.AvailableOn(time.Monday))
	assert.False(t, mondays.AvailableOn(time.Tuesday))
	assert.False(t, mondays.AvailableOn(time.Sunday))
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderStatusPending, OrderStatusApproved, OrderStatusRejected} {
		assert.True(t, IsValidOrderStatus(s), s)
	}
	for _, s := range []string{"", "APPROVED", "cancelled", "done"} {
		assert.False(t, IsValidOrderStatus(s), s)
	}
}

func TestOrderIsPending(t *testing.T) {
	assert.True(t, Order{Status: OrderStatusPending}.IsPending())
	assert.False(t, Order{Status: OrderStatusApproved}.IsPending())
	assert.False(t, Order{Status: OrderStatusRejected}.IsPending())
}
