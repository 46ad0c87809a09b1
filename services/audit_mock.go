package services

import (
	"context"
	"sync"
)

// MockAuditLogger records audit entries in memory for testing
type MockAuditLogger struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

// NewMockAuditLogger creates a mock audit logger
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

// FailWith makes every subsequent Record return err
func (m *MockAuditLogger) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Record stores the entry unless a failure is configured
func (m *MockAuditLogger) Record(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries
func (m *MockAuditLogger) Entries() []AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AuditEntry(nil), m.entries...)
}

// Actions returns the action of every recorded entry in order
func (m *MockAuditLogger) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, len(m.entries))
	for i, e := range m.entries {
		actions[i] = e.Action
	}
	return actions
}
