package services

import (
	"context"
	"errors"
	"time"
)

// Order event kinds
const (
	EventOrderCreated  = "created"
	EventOrderApproved = "approved"
	EventOrderRejected = "rejected"
	EventOrderUpdated  = "updated"
)

// Event is broadcast to dashboards after an order changes.
// Delivery is at most once; subscribers re-query after reconnecting.
type Event struct {
	Kind       string    `json:"kind"`
	OrderID    uint      `json:"order_id"`
	Reference  string    `json:"reference"`
	Status     string    `json:"status"`
	Printed    *bool     `json:"printed,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers order events to subscribers
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// MultiNotifier fans an event out to several notifiers
type MultiNotifier []Notifier

// Notify delivers to every notifier and joins their errors
func (m MultiNotifier) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
