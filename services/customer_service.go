package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"gorm.io/gorm"
)

// CustomerInput carries the editable fields of a registered customer
type CustomerInput struct {
	ExternalID string
	Name       string
	Department string
	Active     *bool
}

// CustomerFilter narrows the customer listing
type CustomerFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	Limit      int
}

// CustomerService administers registered customers
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a customer service
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// List returns customers ordered by name
func (s *CustomerService) List(ctx context.Context, f CustomerFilter) ([]models.Customer, Pagination, error) {
	page := NewPagination(f.Page, f.Limit)

	query := s.db.WithContext(ctx).Model(&models.Customer{})
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := containsPattern(search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(external_id) LIKE ?"+likeEscape+")", pattern, pattern)
	}
	if dept := strings.TrimSpace(f.Department); dept != "" {
		query = query.Where("LOWER(department) = ?", strings.ToLower(dept))
	}
	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, page, fmt.Errorf("failed to count customers: %w", err)
	}
	page.SetTotal(total)

	var customers []models.Customer
	if err := query.Order("name ASC").Offset(page.Offset()).Limit(page.Limit).Find(&customers).Error; err != nil {
		return nil, page, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, page, nil
}

// Get returns a customer by id regardless of its active flag
func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return &customer, nil
}

// Create registers a new customer
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := validateCustomer(&in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := s.ensureExternalIDFree(db, in.ExternalID, 0); err != nil {
		return nil, err
	}

	customer := models.Customer{
		ExternalID: in.ExternalID,
		Name:       in.Name,
		Department: in.Department,
		Active:     in.Active == nil || *in.Active,
	}
	if err := db.Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

// Update replaces the editable fields of a customer
func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	if err := validateCustomer(&in); err != nil {
		return nil, err
	}
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := s.ensureExternalIDFree(db, in.ExternalID, customer.ID); err != nil {
		return nil, err
	}

	customer.ExternalID = in.ExternalID
	customer.Name = in.Name
	customer.Department = in.Department
	if in.Active != nil {
		customer.Active = *in.Active
	}
	if err := db.Save(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// Deactivate soft-deletes a customer; their orders stay untouched
func (s *CustomerService) Deactivate(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(customer).Update("active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate customer: %w", err)
	}
	customer.Active = false
	return customer, nil
}

func (s *CustomerService) ensureExternalIDFree(db *gorm.DB, externalID string, exceptID uint) error {
	var count int64
	query := db.Model(&models.Customer{}).Where("external_id = ?", externalID)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check external id: %w", err)
	}
	if count > 0 {
		return &ServiceError{Kind: KindValidation, Code: "CUSTOMER_EXISTS", Message: "A customer with this external ID already exists"}
	}
	return nil
}

func validateCustomer(in *CustomerInput) error {
	in.ExternalID = strings.TrimSpace(in.ExternalID)
	in.Name = strings.TrimSpace(in.Name)
	in.Department = strings.TrimSpace(in.Department)

	switch {
	case in.ExternalID == "":
		return NewValidationError("externalId is required")
	case in.Name == "":
		return NewValidationError("name is required")
	case strings.EqualFold(in.Department, models.VisitorDepartment):
		return NewValidationError("department Visitor is reserved for guests")
	}
	return nil
}
