package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrderInput is a manual order issued by an operator
type CreateOrderInput struct {
	FoodItemCode    string
	Identity        IdentityRequest
	Notes           string
	RequireApproval bool // create as pending instead of approving immediately
}

// UpdateOrderInput lists the fields to change on a pending order; nil means unchanged
type UpdateOrderInput struct {
	FoodItemCode *string
	Identity     *IdentityRequest
	Notes        *string
}

// DeviceEvent is a meal request sent by the biometric device
type DeviceEvent struct {
	ExternalUserID string
	WorkCode       string
	VerifyTime     string
}

// DeviceResult is the outcome of a device event
type DeviceResult struct {
	Order     *models.Order
	Duplicate bool // the event was already ingested
}

// OrderServiceDeps are the collaborators of the order service
type OrderServiceDeps struct {
	Calendar     *Calendar
	Catalog      *CatalogService
	Identities   *IdentityService
	Limiter      *DailyLimiter
	Settings     *SettingsService
	Printer      TicketPrinter
	Archive      TicketArchive // optional
	Notifier     Notifier
	Audit        AuditLogger
	Dispatcher   *Dispatcher
	PrintTimeout time.Duration
}

// OrderService owns the order lifecycle: creation, the pending -> approved/rejected
// transition, updates of pending orders and ticket reprints.
//
// Every state change commits in one transaction together with the daily limit
// gate; printing, notifications and audit run afterwards through the dispatcher
// and can never undo or fail a committed transition.
type OrderService struct {
	db *gorm.DB
	OrderServiceDeps
}

// NewOrderService creates an order service
func NewOrderService(db *gorm.DB, deps OrderServiceDeps) *OrderService {
	if deps.Dispatcher == nil {
		deps.Dispatcher = NewDispatcher(deps.PrintTimeout)
	}
	if deps.Printer == nil {
		deps.Printer = LogTicketPrinter{}
	}
	if deps.Notifier == nil {
		deps.Notifier = MultiNotifier{}
	}
	return &OrderService{db: db, OrderServiceDeps: deps}
}

// CreateManual issues a meal on behalf of an operator. Registered customers
// pass the daily limit gate before anything is written. The order is approved
// immediately unless in.RequireApproval is set.
func (s *OrderService) CreateManual(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error) {
	notes, err := validateNotes(in.Notes)
	if err != nil {
		return nil, err
	}
	in.FoodItemCode = strings.TrimSpace(in.FoodItemCode)
	if in.FoodItemCode == "" {
		return nil, NewValidationError("foodItemCode is required")
	}

	meal, err := s.Catalog.ResolveMeal(ctx, in.FoodItemCode)
	if err != nil {
		return nil, err
	}
	identity, err := s.Identities.Resolve(ctx, in.Identity)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Calendar.Now()
	order := &models.Order{
		Reference:    newOrderReference(),
		Origin:       models.OrderOriginManual,
		Notes:        notes,
		OperatorID:   actor.userID(),
		OrderedAt:    now.UTC(),
		Status:       models.OrderStatusPending,
		FoodItemCode: meal.Code,
	}
	snapshotMeal(order, meal)
	identity.ApplyTo(order)

	if in.RequireApproval {
		if err := s.Limiter.Check(ctx, s.db, identity, settings.DailyMealLimit); err != nil {
			return nil, err
		}
	} else {
		s.markApproved(order, actor, now)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.Status == models.OrderStatusApproved {
			if err := s.Limiter.consume(tx, identity, now, settings.DailyMealLimit); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(AuditOrderCreated, order, actor, map[string]interface{}{
		"status":         order.Status,
		"food_item_code": order.FoodItemCode,
		"is_guest":       order.IsGuest,
	})

	var printed *bool
	if order.Status == models.OrderStatusApproved {
		p := s.printTicket(order, actor, settings.CompanyName)
		printed = &p
	}
	s.notify(EventOrderCreated, order, printed)
	return order, nil
}

// IngestDeviceEvent issues a meal for a device event. Orders from the device are
// approved at ingestion. Replays carrying the same verify time return the
// original order without consuming another meal. Printing and notification
// happen in the background.
func (s *OrderService) IngestDeviceEvent(ctx context.Context, ip string, ev DeviceEvent) (*DeviceResult, error) {
	ev.ExternalUserID = strings.TrimSpace(ev.ExternalUserID)
	ev.WorkCode = strings.TrimSpace(ev.WorkCode)
	ev.VerifyTime = strings.TrimSpace(ev.VerifyTime)
	if ev.ExternalUserID == "" || ev.WorkCode == "" {
		return nil, NewValidationError("externalUserId and workCode are required")
	}

	identity, err := s.Identities.ResolveExternal(ctx, ev.ExternalUserID)
	if err != nil {
		return nil, err
	}

	var eventKey *string
	if ev.VerifyTime != "" {
		key := ev.ExternalUserID + "|" + ev.WorkCode + "|" + ev.VerifyTime
		eventKey = &key
		if existing, err := s.findByDeviceKey(ctx, key); err != nil {
			return nil, err
		} else if existing != nil {
			return &DeviceResult{Order: existing, Duplicate: true}, nil
		}
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Limiter.Check(ctx, s.db, identity, settings.DailyMealLimit); err != nil {
		return nil, err
	}

	meal, err := s.Catalog.ResolveMeal(ctx, ev.WorkCode)
	if err != nil {
		return nil, err
	}

	actor := DeviceActor(ip)
	now := s.Calendar.Now()
	order := &models.Order{
		Reference:      newOrderReference(),
		Origin:         models.OrderOriginAutomatic,
		OrderedAt:      now.UTC(),
		FoodItemCode:   meal.Code,
		DeviceEventKey: eventKey,
	}
	snapshotMeal(order, meal)
	identity.ApplyTo(order)
	s.markApproved(order, actor, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Limiter.consume(tx, identity, now, settings.DailyMealLimit); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		// A concurrent replay of the same event may have won the unique key
		if eventKey != nil && !IsKind(err, KindLimitExceeded) {
			if existing, findErr := s.findByDeviceKey(ctx, *eventKey); findErr == nil && existing != nil {
				return &DeviceResult{Order: existing, Duplicate: true}, nil
			}
		}
		return nil, err
	}

	s.audit(AuditOrderAutoCreated, order, actor, map[string]interface{}{
		"external_user_id": ev.ExternalUserID,
		"work_code":        ev.WorkCode,
		"verify_time":      ev.VerifyTime,
	})

	company := settings.CompanyName
	background := *order
	s.Dispatcher.Go("device ticket "+order.Reference, func(context.Context) error {
		printed := s.printTicket(&background, actor, company)
		s.notify(EventOrderCreated, &background, &printed)
		return nil
	})
	return &DeviceResult{Order: order}, nil
}

// Approve moves a pending order to approved. The daily limit gate is evaluated
// again at approval time, in the same transaction as the status change.
func (s *OrderService) Approve(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Calendar.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return ErrAlreadyProcessed
		}

		if err := s.Limiter.consume(tx, IdentityOf(order), now, settings.DailyMealLimit); err != nil {
			return err
		}

		approvedAt := now.UTC()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":          models.OrderStatusApproved,
				"approved_at":     approvedAt,
				"business_day":    s.Calendar.DayKey(now),
				"processed_by_id": actor.userID(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to approve order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit(AuditOrderApproved, order, actor, nil)
	printed := s.printTicket(order, actor, settings.CompanyName)
	s.notify(EventOrderApproved, order, &printed)
	return order, nil
}

// Reject moves a pending order to rejected, storing the optional reason in its notes
func (s *OrderService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.Order, error) {
	reason, err := validateNotes(reason)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return ErrAlreadyProcessed
		}

		updates := map[string]interface{}{
			"status":          models.OrderStatusRejected,
			"processed_by_id": actor.userID(),
		}
		if reason != "" {
			updates["notes"] = reason
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to reject order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit(AuditOrderRejected, order, actor, map[string]interface{}{"reason": reason})
	s.notify(EventOrderRejected, order, nil)
	return order, nil
}

// Update edits a pending order. The price and subsidy are snapshotted again
// only when the food item changes. Switching identity mode clears the fields
// of the previous mode. Processed orders cannot be edited.
func (s *OrderService) Update(ctx context.Context, actor Actor, id uint, in UpdateOrderInput) (*models.Order, error) {
	var notes *string
	if in.Notes != nil {
		n, err := validateNotes(*in.Notes)
		if err != nil {
			return nil, err
		}
		notes = &n
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return ErrAlreadyProcessed
		}

		if in.FoodItemCode != nil {
			if code := strings.TrimSpace(*in.FoodItemCode); code != order.FoodItemCode {
				meal, err := s.Catalog.resolveMeal(tx, code)
				if err != nil {
					return err
				}
				snapshotMeal(order, meal)
				order.FoodItemCode = meal.Code
			}
		}

		if in.Identity != nil {
			identity, err := s.Identities.resolve(tx, *in.Identity)
			if err != nil {
				return err
			}
			identity.ApplyTo(order)
		}
		if notes != nil {
			order.Notes = *notes
		}

		changes := map[string]interface{}{
			"customer_id":    order.CustomerID,
			"is_guest":       order.IsGuest,
			"guest_name":     order.GuestName,
			"food_item_id":   order.FoodItemID,
			"food_item_code": order.FoodItemCode,
			"price":          order.Price,
			"subsidy":        order.Subsidy,
			"notes":          order.Notes,
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			Updates(changes)
		if res.Error != nil {
			return fmt.Errorf("failed to update order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit(AuditOrderUpdated, order, actor, map[string]interface{}{
		"food_item_code": order.FoodItemCode,
		"is_guest":       order.IsGuest,
	})
	s.notify(EventOrderUpdated, order, nil)
	return order, nil
}

// Reprint prints the ticket of an order again from its stored data.
// It does not evaluate the limit gate or touch the price snapshot.
func (s *OrderService) Reprint(ctx context.Context, actor Actor, id uint) (*models.Order, bool, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	printed := s.printTicket(order, actor, settings.CompanyName)
	s.audit(AuditOrderReprinted, order, actor, map[string]interface{}{"printed": printed})
	s.notify(EventOrderUpdated, order, &printed)
	return order, printed, nil
}

// TicketURL returns a temporary download link to the archived ticket of an order
func (s *OrderService) TicketURL(ctx context.Context, id uint) (string, error) {
	if s.Archive == nil {
		return "", NewNotFoundError("TICKET_ARCHIVE_DISABLED", "Ticket archiving is not configured")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !order.TicketPrinted {
		return "", NewNotFoundError("TICKET_NOT_ARCHIVED", "No ticket has been printed for this order")
	}

	key := TicketKey(BuildTicket(order, Actor{}, "", s.Calendar.Location()))
	url, err := s.Archive.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket url: %w", err)
	}
	return url, nil
}

// Get loads an order with its customer, food item and operators
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("FoodItem").
		Preload("Operator").
		Preload("ProcessedBy").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// BuildTicket assembles the ticket of an order from its persisted data
func BuildTicket(order *models.Order, actor Actor, companyName string, loc *time.Location) Ticket {
	identity := IdentityOf(order)
	mealName := order.FoodItemCode
	if order.FoodItem != nil {
		mealName = order.FoodItem.Name
	}
	timestamp := order.OrderedAt
	if order.ApprovedAt != nil {
		timestamp = *order.ApprovedAt
	}
	return Ticket{
		CompanyName:         companyName,
		IdentityDisplayName: identity.DisplayName(),
		IdentityExternalID:  identity.ExternalID(),
		MealName:            mealName,
		Timestamp:           timestamp.In(loc),
		OrderReference:      order.Reference,
		OperatorName:        actor.Name(),
	}
}

// printTicket prints synchronously within the print timeout and marks the order
// printed. A failure only leaves ticket_printed false.
func (s *OrderService) printTicket(order *models.Order, actor Actor, companyName string) bool {
	ticket := BuildTicket(order, actor, companyName, s.Calendar.Location())
	err := s.Dispatcher.Run("print ticket "+order.Reference, s.PrintTimeout, func(ctx context.Context) error {
		return s.Printer.Print(ctx, ticket)
	})
	if err != nil {
		return false
	}

	if err := s.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("ticket_printed", true).Error; err != nil {
		log.Printf("warning: failed to mark order %s printed: %v", order.Reference, err)
	} else {
		order.TicketPrinted = true
	}

	if s.Archive != nil {
		s.Dispatcher.Go("archive ticket "+order.Reference, func(ctx context.Context) error {
			_, err := s.Archive.Archive(ctx, ticket)
			return err
		})
	}
	return true
}

func (s *OrderService) notify(kind string, order *models.Order, printed *bool) {
	event := Event{
		Kind:       kind,
		OrderID:    order.ID,
		Reference:  order.Reference,
		Status:     order.Status,
		Printed:    printed,
		OccurredAt: time.Now().UTC(),
	}
	s.Dispatcher.Go("notify "+kind+" "+order.Reference, func(ctx context.Context) error {
		return s.Notifier.Notify(ctx, event)
	})
}

func (s *OrderService) audit(action string, order *models.Order, actor Actor, details map[string]interface{}) {
	if s.Audit == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	details["reference"] = order.Reference
	entry := AuditEntry{
		Action:      action,
		SubjectType: "order",
		SubjectID:   strconv.FormatUint(uint64(order.ID), 10),
		Actor:       actor,
		Details:     details,
	}
	s.Dispatcher.Go("audit "+action, func(ctx context.Context) error {
		return s.Audit.Record(ctx, entry)
	})
}

func (s *OrderService) markApproved(order *models.Order, actor Actor, now time.Time) {
	approvedAt := now.UTC()
	order.Status = models.OrderStatusApproved
	order.ApprovedAt = &approvedAt
	order.BusinessDay = s.Calendar.DayKey(now)
	order.ProcessedByID = actor.userID()
}

func (s *OrderService) findByDeviceKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("device_event_key = ?", key).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up device event: %w", err)
	}
	return &order, nil
}

func loadOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Preload("Customer").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func snapshotMeal(order *models.Order, meal *models.FoodItem) {
	id := meal.ID
	order.FoodItemID = &id
	order.FoodItem = meal
	order.Price = meal.Price
	order.Subsidy = meal.Subsidy
}

func validateNotes(notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if len([]rune(notes)) > models.MaxNotesLength {
		return "", NewValidationError(fmt.Sprintf("notes must be at most %d characters", models.MaxNotesLength))
	}
	return notes, nil
}

func newOrderReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:10])
}
