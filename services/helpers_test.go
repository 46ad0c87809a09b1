package services

import (
	"testing"
	"time"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// monday is the fixed "now" of most tests: Monday 2 March 2026, noon UTC
var monday = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

// setupTestDB opens a fresh in-memory database. A single connection keeps
// the database alive and runs transactions one at a time, so concurrent tests
// check the outcome under contention, not the isolation of the gate itself.
// TestDailyLimiter_ConsumeIsDrivenByAllowanceCounter covers that the gate
// reads the allowance row.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// fixedCalendar is a UTC calendar whose clock is frozen at now
func fixedCalendar(now time.Time) *Calendar {
	return NewCalendar(time.UTC).WithClock(func() time.Time { return now })
}

func seedFoodItem(t *testing.T, db *gorm.DB, code, name, price, subsidy string, days ...string) *models.FoodItem {
	t.Helper()
	item := &models.FoodItem{
		Code:          code,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		Subsidy:       decimal.RequireFromString(subsidy),
		Currency:      "USD",
		Active:        true,
		AvailableDays: days,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedCustomer(t *testing.T, db *gorm.DB, externalID, name, department string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		ExternalID: externalID,
		Name:       name,
		Department: department,
		Active:     true,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedOperator(t *testing.T, db *gorm.DB, auth0ID, role string) *models.User {
	t.Helper()
	user := &models.User{
		Auth0ID: auth0ID,
		Name:    "Operator " + auth0ID,
		Email:   auth0ID + "@canteen.test",
		Role:    role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// testEngine bundles an order service with mock collaborators
type testEngine struct {
	db       *gorm.DB
	cal      *Calendar
	orders   *OrderService
	query    *OrderQueryService
	settings *SettingsService
	printer  *MockTicketPrinter
	archive  *MockTicketArchive
	notifier *MockNotifier
	audit    *MockAuditLogger
}

func newTestEngine(t *testing.T, db *gorm.DB, now time.Time, dailyLimit int) *testEngine {
	t.Helper()
	cal := fixedCalendar(now)
	e := &testEngine{
		db:       db,
		cal:      cal,
		query:    NewOrderQueryService(db, cal),
		settings: NewSettingsService(db, SettingsDefaults{DailyMealLimit: dailyLimit, CompanyName: "Acme Canteen"}),
		printer:  NewMockTicketPrinter(),
		archive:  NewMockTicketArchive(),
		notifier: NewMockNotifier(),
		audit:    NewMockAuditLogger(),
	}
	e.orders = NewOrderService(db, OrderServiceDeps{
		Calendar:     cal,
		Catalog:      NewCatalogService(db, cal),
		Identities:   NewIdentityService(db),
		Limiter:      NewDailyLimiter(cal),
		Settings:     e.settings,
		Printer:      e.printer,
		Archive:      e.archive,
		Notifier:     e.notifier,
		Audit:        e.audit,
		Dispatcher:   NewDispatcher(time.Second),
		PrintTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(e.orders.Dispatcher.Wait)
	return e
}

// settle waits for background side effects to finish
func (e *testEngine) settle() {
	e.orders.Dispatcher.Wait()
}

func (e *testEngine) approvedCount(t *testing.T, customerID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Order{}).
		Where("customer_id = ? AND status = ?", customerID, models.OrderStatusApproved).
		Count(&count).Error)
	return count
}
