package services

import (
	"context"
	"fmt"
	"sync"
)

// MockTicketArchive is an in-memory TicketArchive for testing
type MockTicketArchive struct {
	mu      sync.RWMutex
	tickets map[string]Ticket
}

// NewMockTicketArchive creates an empty mock archive
func NewMockTicketArchive() *MockTicketArchive {
	return &MockTicketArchive{tickets: make(map[string]Ticket)}
}

// Archive stores the ticket in memory
func (m *MockTicketArchive) Archive(_ context.Context, ticket Ticket) (string, error) {
	key := TicketKey(ticket)
	m.mu.Lock()
	m.tickets[key] = ticket
	m.mu.Unlock()
	return key, nil
}

// GetPresignedURL returns a fake URL for archived tickets
func (m *MockTicketArchive) GetPresignedURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	m.mu.RLock()
	_, exists := m.tickets[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("ticket not found in mock archive: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Keys returns the keys of every archived ticket
func (m *MockTicketArchive) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.tickets))
	for k := range m.tickets {
		keys = append(keys, k)
	}
	return keys
}
