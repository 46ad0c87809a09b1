package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditOrderCreated     = "ORDER_CREATED"
	AuditOrderAutoCreated = "ORDER_AUTO_CREATED"
	AuditOrderApproved    = "ORDER_APPROVED"
	AuditOrderRejected    = "ORDER_REJECTED"
	AuditOrderUpdated     = "ORDER_UPDATED"
	AuditOrderReprinted   = "ORDER_REPRINTED"
	AuditFoodItemCreated  = "FOOD_ITEM_CREATED"
	AuditFoodItemUpdated  = "FOOD_ITEM_UPDATED"
	AuditFoodItemDisabled = "FOOD_ITEM_DEACTIVATED"
	AuditCustomerCreated  = "CUSTOMER_CREATED"
	AuditCustomerUpdated  = "CUSTOMER_UPDATED"
	AuditCustomerDisabled = "CUSTOMER_DEACTIVATED"
	AuditSettingsUpdated  = "SETTINGS_UPDATED"
)

// Actor is who triggered an operation. User is nil for device events.
type Actor struct {
	User      *models.User
	IPAddress string
}

// DeviceActor is the actor of biometric device events
func DeviceActor(ip string) Actor {
	return Actor{IPAddress: ip}
}

// Name is the name recorded in audit entries and printed on tickets
func (a Actor) Name() string {
	if a.User == nil {
		return "Device"
	}
	return a.User.Name
}

func (a Actor) userID() *uint {
	if a.User == nil {
		return nil
	}
	id := a.User.ID
	return &id
}

// AuditEntry is one audited action
type AuditEntry struct {
	Action      string
	SubjectType string
	SubjectID   string
	Actor       Actor
	Details     map[string]interface{}
}

// AuditLogger records audit entries
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditFilter narrows the audit log listing
type AuditFilter struct {
	Action      string
	SubjectType string
	Page        int
	Limit       int
}

// AuditService stores audit entries in the audit_logs table
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates an audit service
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends an entry to the audit log
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	row := models.AuditLog{
		Action:              entry.Action,
		SubjectType:         entry.SubjectType,
		SubjectID:           entry.SubjectID,
		PerformedByUserID:   entry.Actor.userID(),
		PerformedByUsername: entry.Actor.Name(),
		Details:             datatypes.JSON(details),
		IPAddress:           entry.Actor.IPAddress,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// List returns audit entries newest first
func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, Pagination, error) {
	page := NewPagination(f.Page, f.Limit)

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.SubjectType != "" {
		query = query.Where("subject_type = ?", f.SubjectType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, page, fmt.Errorf("failed to count audit logs: %w", err)
	}
	page.SetTotal(total)

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&logs).Error; err != nil {
		return nil, page, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, page, nil
}
