package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/config"
	"github.com/kendall-kelly/canteen-meals-api/middleware"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testNow is Monday 2 March 2026, noon UTC
var testNow = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// testCanteen is the wired set of services behind the controllers
type testCanteen struct {
	db       *gorm.DB
	orders   *services.OrderService
	printer  *services.MockTicketPrinter
	notifier *services.MockNotifier
}

// setupCanteen registers every service against db with mock side effects
func setupCanteen(t *testing.T, db *gorm.DB, dailyLimit int) *testCanteen {
	t.Helper()
	cal := services.NewCalendar(time.UTC).WithClock(func() time.Time { return testNow })
	settings := services.NewSettingsService(db, services.SettingsDefaults{DailyMealLimit: dailyLimit, CompanyName: "Test Canteen"})
	catalog := services.NewCatalogService(db, cal)

	c := &testCanteen{
		db:       db,
		printer:  services.NewMockTicketPrinter(),
		notifier: services.NewMockNotifier(),
	}
	c.orders = services.NewOrderService(db, services.OrderServiceDeps{
		Calendar:     cal,
		Catalog:      catalog,
		Identities:   services.NewIdentityService(db),
		Limiter:      services.NewDailyLimiter(cal),
		Settings:     settings,
		Printer:      c.printer,
		Archive:      services.NewMockTicketArchive(),
		Notifier:     c.notifier,
		Audit:        services.NewMockAuditLogger(),
		Dispatcher:   services.NewDispatcher(time.Second),
		PrintTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(c.orders.Dispatcher.Wait)

	services.SetOrderService(c.orders)
	services.SetOrderQueryService(services.NewOrderQueryService(db, cal))
	services.SetCatalogService(catalog)
	services.SetCustomerService(services.NewCustomerService(db))
	services.SetSettingsService(settings)
	services.SetAuditService(services.NewAuditService(db))
	return c
}

func (c *testCanteen) seedOperator(t *testing.T, auth0ID, role string) *models.User {
	t.Helper()
	user := &models.User{Auth0ID: auth0ID, Name: "Operator " + auth0ID, Email: auth0ID + "@canteen.test", Role: role}
	require.NoError(t, c.db.Create(user).Error)
	return user
}

func (c *testCanteen) seedFoodItem(t *testing.T, code, name, price, subsidy string) *models.FoodItem {
	t.Helper()
	item := &models.FoodItem{
		Code:     code,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Subsidy:  decimal.RequireFromString(subsidy),
		Currency: "USD",
		Active:   true,
	}
	require.NoError(t, c.db.Create(item).Error)
	return item
}

func (c *testCanteen) seedCustomer(t *testing.T, externalID, name, department string) *models.Customer {
	t.Helper()
	customer := &models.Customer{ExternalID: externalID, Name: name, Department: department, Active: true}
	require.NoError(t, c.db.Create(customer).Error)
	return customer
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		mockClaims := &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{Role: role},
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// operatorRouter authenticates every request as the given operator
func operatorRouter(user *models.User) *gin.Engine {
	router := setupTestRouter()
	router.Use(mockAuthMiddleware(user.Auth0ID, user.Role, "token-"+user.Auth0ID), middleware.LoadOperator())
	return router
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decodeResponse(t, w)
	errObj, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "no error object in %s", w.Body.String())
	return errObj["code"].(string)
}
