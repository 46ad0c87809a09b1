package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_RecordAndList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuditService(db)
	ctx := context.Background()
	admin := seedOperator(t, db, "auth0|admin", models.RoleAdmin)

	require.NoError(t, svc.Record(ctx, AuditEntry{
		Action:      AuditOrderCreated,
		SubjectType: "order",
		SubjectID:   "1",
		Actor:       Actor{User: admin, IPAddress: "10.0.0.1"},
		Details:     map[string]interface{}{"reference": "ORD-1"},
	}))
	require.NoError(t, svc.Record(ctx, AuditEntry{
		Action:      AuditOrderAutoCreated,
		SubjectType: "order",
		SubjectID:   "2",
		Actor:       DeviceActor("10.0.0.9"),
	}))
	require.NoError(t, svc.Record(ctx, AuditEntry{
		Action:      AuditSettingsUpdated,
		SubjectType: "settings",
		SubjectID:   "1",
		Actor:       Actor{User: admin},
	}))

	logs, page, err := svc.List(ctx, AuditFilter{SubjectType: "order"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(2), page.Total)

	// Newest first
	assert.Equal(t, AuditOrderAutoCreated, logs[0].Action)
	assert.Equal(t, "Device", logs[0].PerformedByUsername)
	assert.Nil(t, logs[0].PerformedByUserID)
	assert.Equal(t, "10.0.0.9", logs[0].IPAddress)

	require.NotNil(t, logs[1].PerformedByUserID)
	assert.Equal(t, admin.ID, *logs[1].PerformedByUserID)
	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(logs[1].Details, &details))
	assert.Equal(t, "ORD-1", details["reference"])

	byAction, _, err := svc.List(ctx, AuditFilter{Action: AuditSettingsUpdated})
	require.NoError(t, err)
	assert.Len(t, byAction, 1)
}

func TestAuditService_RecordedThroughOrderService(t *testing.T) {
	db := setupTestDB(t)
	e := newTestEngine(t, db, monday, 1)
	e.orders.Audit = NewAuditService(db)
	ctx := context.Background()
	op := seedOperator(t, db, "auth0|op", models.RoleOperator)
	seedFoodItem(t, db, "2", "Lunch", "10", "5")

	_, err := e.orders.CreateManual(ctx, Actor{User: op}, CreateOrderInput{
		FoodItemCode: "2",
		Identity:     IdentityRequest{IsGuest: true, GuestName: "Jo"},
	})
	require.NoError(t, err)
	e.settle()

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, AuditOrderCreated, logs[0].Action)
	assert.Equal(t, op.Name, logs[0].PerformedByUsername)
}
