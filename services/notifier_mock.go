package services

import (
	"context"
	"sync"
)

// MockNotifier records events for testing
type MockNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewMockNotifier creates a mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// FailWith makes every subsequent Notify return err after recording the event
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Notify records the event
func (m *MockNotifier) Notify(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

// Events returns a copy of the recorded events
func (m *MockNotifier) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
