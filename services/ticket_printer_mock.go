package services

import (
	"context"
	"sync"
	"time"
)

// MockTicketPrinter is a mock implementation of TicketPrinter for testing
type MockTicketPrinter struct {
	mu      sync.Mutex
	tickets []Ticket
	err     error
	delay   time.Duration
}

// NewMockTicketPrinter creates a mock printer that always succeeds
func NewMockTicketPrinter() *MockTicketPrinter {
	return &MockTicketPrinter{}
}

// FailWith makes every subsequent Print return err
func (m *MockTicketPrinter) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// SetDelay makes Print block for d or until the context is done
func (m *MockTicketPrinter) SetDelay(d time.Duration) {
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
}

// Print records the ticket
func (m *MockTicketPrinter) Print(ctx context.Context, ticket Ticket) error {
	m.mu.Lock()
	delay, err := m.delay, m.err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.tickets = append(m.tickets, ticket)
	m.mu.Unlock()
	return nil
}

// Tickets returns a copy of every printed ticket
func (m *MockTicketPrinter) Tickets() []Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Ticket(nil), m.tickets...)
}
