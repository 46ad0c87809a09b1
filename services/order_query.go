package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderFilter holds the query parameters of the order listing
type OrderFilter struct {
	From       string // YYYY-MM-DD, defaults to today
	To         string // YYYY-MM-DD, defaults to today
	Department string // "Visitor" selects guest orders
	CustomerID uint
	Search     string
	Status     string
	Page       int
	Limit      int
}

// DateRange is the inclusive day range a listing covers
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OrderList is one page of orders
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
	DateRange  DateRange      `json:"date_range"`
}

// StatusCounts counts orders per status
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// OrderSummary aggregates the orders matching a filter
type OrderSummary struct {
	DateRange       DateRange       `json:"date_range"`
	TotalOrders     int64           `json:"total_orders"`
	ByStatus        StatusCounts    `json:"by_status"`
	ApprovedPrice   decimal.Decimal `json:"approved_price_total"`
	ApprovedSubsidy decimal.Decimal `json:"approved_subsidy_total"`
	ApprovedNet     decimal.Decimal `json:"approved_net_total"`
}

// OrderQueryService builds read-only views over orders
type OrderQueryService struct {
	db  *gorm.DB
	cal *Calendar
}

// NewOrderQueryService creates an order query service
func NewOrderQueryService(db *gorm.DB, cal *Calendar) *OrderQueryService {
	return &OrderQueryService{db: db, cal: cal}
}

// orderScope is a compiled filter. empty means no order can match and the
// order table must not be queried at all.
type orderScope struct {
	apply     func(*gorm.DB) *gorm.DB
	dateRange DateRange
	empty     bool
}

// ListOrders returns one page of orders, newest first
func (s *OrderQueryService) ListOrders(ctx context.Context, f OrderFilter) (*OrderList, error) {
	page := NewPagination(f.Page, f.Limit)

	scope, err := s.compile(ctx, f)
	if err != nil {
		return nil, err
	}
	list := &OrderList{Orders: []models.Order{}, DateRange: scope.dateRange}
	if scope.empty {
		page.SetTotal(0)
		list.Pagination = page
		return list, nil
	}

	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Order{}).Scopes(scope.apply).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	page.SetTotal(total)

	err = db.Scopes(scope.apply).
		Preload("Customer").
		Preload("FoodItem").
		Order("ordered_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&list.Orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	list.Pagination = page
	return list, nil
}

// Summary aggregates counts and approved totals over the same filter as ListOrders
func (s *OrderQueryService) Summary(ctx context.Context, f OrderFilter) (*OrderSummary, error) {
	scope, err := s.compile(ctx, f)
	if err != nil {
		return nil, err
	}
	summary := &OrderSummary{DateRange: scope.dateRange}
	if scope.empty {
		return summary, nil
	}

	db := s.db.WithContext(ctx)
	var rows []struct {
		Status string
		Count  int64
	}
	err = db.Model(&models.Order{}).Scopes(scope.apply).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, r := range rows {
		summary.TotalOrders += r.Count
		switch r.Status {
		case models.OrderStatusPending:
			summary.ByStatus.Pending = r.Count
		case models.OrderStatusApproved:
			summary.ByStatus.Approved = r.Count
		case models.OrderStatusRejected:
			summary.ByStatus.Rejected = r.Count
		}
	}

	var totals struct {
		Price   decimal.Decimal
		Subsidy decimal.Decimal
	}
	err = db.Model(&models.Order{}).Scopes(scope.apply).
		Where("status = ?", models.OrderStatusApproved).
		Select("COALESCE(SUM(price), 0) AS price, COALESCE(SUM(subsidy), 0) AS subsidy").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum approved orders: %w", err)
	}
	summary.ApprovedPrice = totals.Price
	summary.ApprovedSubsidy = totals.Subsidy
	summary.ApprovedNet = totals.Price.Sub(totals.Subsidy)
	return summary, nil
}

// compile turns the filter into a scope. Department and search filters are
// resolved to customer ids first; a department without customers yields an
// empty scope so the order table is never queried.
func (s *OrderQueryService) compile(ctx context.Context, f OrderFilter) (*orderScope, error) {
	start, end := s.cal.DayBounds(s.cal.Now())
	if from := strings.TrimSpace(f.From); from != "" {
		day, err := s.cal.ParseDay(from)
		if err != nil {
			return nil, NewValidationError("from must be a date in YYYY-MM-DD format")
		}
		start, _ = s.cal.DayBounds(day)
	}
	if to := strings.TrimSpace(f.To); to != "" {
		day, err := s.cal.ParseDay(to)
		if err != nil {
			return nil, NewValidationError("to must be a date in YYYY-MM-DD format")
		}
		_, end = s.cal.DayBounds(day)
	}

	scope := &orderScope{dateRange: DateRange{From: start, To: end.Add(-time.Millisecond)}}
	var conditions []func(*gorm.DB) *gorm.DB
	add := func(query string, args ...interface{}) {
		conditions = append(conditions, func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) })
	}

	add("ordered_at >= ? AND ordered_at < ?", start.UTC(), end.UTC())

	db := s.db.WithContext(ctx)
	switch dept := strings.TrimSpace(f.Department); {
	case dept == models.VisitorDepartment:
		add("is_guest = ?", true)
	case dept != "":
		var ids []uint
		if err := db.Model(&models.Customer{}).Where("LOWER(department) = ?", strings.ToLower(dept)).Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve department: %w", err)
		}
		if len(ids) == 0 {
			scope.empty = true
			return scope, nil
		}
		add("customer_id IN ?", ids)
	}

	if f.CustomerID != 0 {
		add("customer_id = ? AND is_guest = ?", f.CustomerID, false)
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := containsPattern(search)
		var ids []uint
		if err := db.Model(&models.Customer{}).Where("LOWER(name) LIKE ?"+likeEscape, pattern).Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("failed to search customers: %w", err)
		}
		if len(ids) > 0 {
			add("(customer_id IN ? OR (is_guest = ? AND LOWER(guest_name) LIKE ?"+likeEscape+"))", ids, true, pattern)
		} else {
			add("is_guest = ? AND LOWER(guest_name) LIKE ?"+likeEscape, true, pattern)
		}
	}

	if models.IsValidOrderStatus(f.Status) {
		add("status = ?", f.Status)
	}

	scope.apply = func(db *gorm.DB) *gorm.DB {
		for _, c := range conditions {
			db = c(db)
		}
		return db
	}
	return scope, nil
}
