package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"gorm.io/gorm"
)

// Identity is who a meal is issued to: a registered customer or a guest label.
// The zero value is not a valid identity; build one with RegisteredIdentity or GuestIdentity.
type Identity struct {
	customer  *models.Customer
	guestName string
}

// RegisteredIdentity identifies an existing customer
func RegisteredIdentity(c *models.Customer) Identity {
	return Identity{customer: c}
}

// GuestIdentity identifies an ad-hoc guest by free-text name
func GuestIdentity(name string) Identity {
	return Identity{guestName: name}
}

// IsGuest reports whether the identity is a guest label
func (i Identity) IsGuest() bool {
	return i.customer == nil
}

// Customer returns the registered customer, nil for guests
func (i Identity) Customer() *models.Customer {
	return i.customer
}

// DisplayName is the name printed on the ticket
func (i Identity) DisplayName() string {
	if i.customer != nil {
		return i.customer.Name
	}
	return i.guestName
}

// ExternalID is the device id of a registered customer, empty for guests
func (i Identity) ExternalID() string {
	if i.customer != nil {
		return i.customer.ExternalID
	}
	return ""
}

// ApplyTo writes the identity onto the order, clearing the fields of the other mode
func (i Identity) ApplyTo(order *models.Order) {
	if i.customer != nil {
		id := i.customer.ID
		order.CustomerID = &id
		order.Customer = i.customer
		order.IsGuest = false
		order.GuestName = nil
		return
	}
	name := i.guestName
	order.CustomerID = nil
	order.Customer = nil
	order.IsGuest = true
	order.GuestName = &name
}

// IdentityOf reconstructs the identity stored on an order
func IdentityOf(order *models.Order) Identity {
	if order.IsGuest {
		name := ""
		if order.GuestName != nil {
			name = *order.GuestName
		}
		return GuestIdentity(name)
	}
	if order.Customer != nil {
		return RegisteredIdentity(order.Customer)
	}
	c := &models.Customer{}
	if order.CustomerID != nil {
		c.ID = *order.CustomerID
	}
	return RegisteredIdentity(c)
}

// IdentityRequest is the raw identity part of a create or update request
type IdentityRequest struct {
	CustomerID uint
	IsGuest    bool
	GuestName  string
}

// IdentityService resolves identity requests against registered customers
type IdentityService struct {
	db *gorm.DB
}

// NewIdentityService creates an identity service
func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// Resolve validates the request and loads the customer for registered identities.
// Inactive customers are reported as not found.
func (s *IdentityService) Resolve(ctx context.Context, req IdentityRequest) (Identity, error) {
	return s.resolve(s.db.WithContext(ctx), req)
}

func (s *IdentityService) resolve(db *gorm.DB, req IdentityRequest) (Identity, error) {
	if req.IsGuest {
		name := strings.TrimSpace(req.GuestName)
		if name == "" {
			return Identity{}, NewValidationError("guestName is required for guest orders")
		}
		return GuestIdentity(name), nil
	}

	if req.CustomerID == 0 {
		return Identity{}, NewValidationError("customerId is required")
	}

	var customer models.Customer
	if err := db.Where("id = ? AND active = ?", req.CustomerID, true).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrCustomerNotFound
		}
		return Identity{}, fmt.Errorf("failed to load customer: %w", err)
	}
	return RegisteredIdentity(&customer), nil
}

// ResolveExternal finds the active customer a device id belongs to
func (s *IdentityService) ResolveExternal(ctx context.Context, externalID string) (Identity, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("external_id = ? AND active = ?", externalID, true).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrCustomerNotFound
		}
		return Identity{}, fmt.Errorf("failed to load customer: %w", err)
	}
	return RegisteredIdentity(&customer), nil
}
