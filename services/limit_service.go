package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyLimiter enforces the per-customer daily meal cap.
//
// The cap is enforced with a conditional increment on the meal_allowances row
// of (customer, business day), executed inside the same transaction that
// writes the approved order. Concurrent approvals for the same customer
// serialize on that row, so the approved count can never pass the limit.
// Guests are never capped.
type DailyLimiter struct {
	cal *Calendar
}

// NewDailyLimiter creates a limiter bound to the canteen calendar
func NewDailyLimiter(cal *Calendar) *DailyLimiter {
	return &DailyLimiter{cal: cal}
}

// CountApprovedToday counts the approved orders of identity whose approval
// falls on the current canteen day.
func (l *DailyLimiter) CountApprovedToday(ctx context.Context, db *gorm.DB, identity Identity) (int, error) {
	start, end := l.cal.DayBounds(l.cal.Now())
	return countApproved(db.WithContext(ctx), identity, start, end)
}

// Check fails with a limit error when identity already reached the cap.
// It consumes nothing and only gives early feedback; consume is the real gate.
func (l *DailyLimiter) Check(ctx context.Context, db *gorm.DB, identity Identity, limit int) error {
	if identity.IsGuest() {
		return nil
	}
	count, err := l.CountApprovedToday(ctx, db, identity)
	if err != nil {
		return err
	}
	if count >= limit {
		return NewLimitExceededError(count, limit)
	}
	return nil
}

// consume takes one unit of the customer's allowance for day. It must run
// inside the transaction that commits the approval, so a rollback returns the unit.
func (l *DailyLimiter) consume(tx *gorm.DB, identity Identity, day time.Time, limit int) error {
	if identity.IsGuest() {
		return nil
	}
	customerID := identity.Customer().ID
	key := l.cal.DayKey(day)

	if err := l.ensureAllowance(tx, identity, day); err != nil {
		return err
	}

	res := tx.Model(&models.MealAllowance{}).
		Where("customer_id = ? AND business_day = ? AND used < ?", customerID, key, limit).
		Update("used", gorm.Expr("used + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to consume meal allowance: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var allowance models.MealAllowance
	if err := tx.Where("customer_id = ? AND business_day = ?", customerID, key).First(&allowance).Error; err != nil {
		return fmt.Errorf("failed to read meal allowance: %w", err)
	}
	return NewLimitExceededError(allowance.Used, limit)
}

// ensureAllowance creates the allowance row on first use of the day, seeded
// with the approvals already recorded. Concurrent creators race on the primary
// key and all but one insert are dropped.
func (l *DailyLimiter) ensureAllowance(tx *gorm.DB, identity Identity, day time.Time) error {
	start, end := l.cal.DayBounds(day)
	used, err := countApproved(tx, identity, start, end)
	if err != nil {
		return err
	}

	allowance := models.MealAllowance{
		CustomerID:  identity.Customer().ID,
		BusinessDay: l.cal.DayKey(day),
		Used:        used,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&allowance).Error; err != nil {
		return fmt.Errorf("failed to create meal allowance: %w", err)
	}
	return nil
}

func countApproved(db *gorm.DB, identity Identity, start, end time.Time) (int, error) {
	query := db.Model(&models.Order{}).
		Where("status = ? AND approved_at >= ? AND approved_at < ?", models.OrderStatusApproved, start.UTC(), end.UTC())
	if identity.IsGuest() {
		query = query.Where("is_guest = ? AND guest_name = ?", true, identity.DisplayName())
	} else {
		query = query.Where("customer_id = ?", identity.Customer().ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count approved orders: %w", err)
	}
	return int(count), nil
}
