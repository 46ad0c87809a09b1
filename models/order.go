package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
)

// Order origins
const (
	OrderOriginManual    = "manual"
	OrderOriginAutomatic = "automatic"
)

// MaxNotesLength bounds the free-text notes stored on an order
const MaxNotesLength = 500

// Order is a meal ticket issued to a registered customer or a guest.
// Orders are never deleted.
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Reference      string          `gorm:"uniqueIndex;not null" json:"reference"`
	CustomerID     *uint           `gorm:"index" json:"customer_id"` // set for registered customers only
	Customer       *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	IsGuest        bool            `gorm:"not null;default:false;index" json:"is_guest"`
	GuestName      *string         `json:"guest_name"` // set for guests only
	FoodItemID     *uint           `gorm:"index" json:"food_item_id"`
	FoodItem       *FoodItem       `gorm:"foreignKey:FoodItemID" json:"food_item,omitempty"`
	FoodItemCode   string          `gorm:"not null" json:"food_item_code"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Subsidy        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subsidy"`
	Status         string          `gorm:"not null;default:'pending';index" json:"status"` // pending, approved, rejected
	Origin         string          `gorm:"not null;default:'manual'" json:"origin"`        // manual, automatic
	Notes          string          `gorm:"size:500" json:"notes"`
	OperatorID     *uint           `gorm:"index" json:"operator_id"` // who created the order, nil for device orders
	Operator       *User           `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
	ProcessedByID  *uint           `json:"processed_by_id"` // who approved or rejected
	ProcessedBy    *User           `gorm:"foreignKey:ProcessedByID" json:"processed_by,omitempty"`
	OrderedAt      time.Time       `gorm:"not null;index" json:"ordered_at"`
	ApprovedAt     *time.Time      `gorm:"index" json:"approved_at"`
	BusinessDay    string          `gorm:"size:10;index" json:"business_day"` // day whose allowance the approval consumed
	TicketPrinted  bool            `gorm:"not null;default:false" json:"ticket_printed"`
	DeviceEventKey *string         `gorm:"uniqueIndex" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsPending reports whether the order can still transition
func (o Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsValidOrderStatus reports whether s is one of the three order statuses
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected:
		return true
	}
	return false
}
