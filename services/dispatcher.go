package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Dispatcher runs best-effort side effects (printing, notifications, audit)
// outside the order transaction. Every call is bounded by a timeout and
// failures are logged, never returned to the operation that triggered them.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose tasks time out after timeout
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

// Go runs fn in the background
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.Run(name, d.timeout, fn)
	}()
}

// Run runs fn and waits at most timeout for it. The error is logged and
// returned so callers can downgrade it to a soft field.
func (d *Dispatcher) Run(name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = d.timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- fn(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("timed out after %s", timeout)
	}
	if err != nil {
		log.Printf("warning: %s failed: %v", name, err)
	}
	return err
}

// Wait blocks until every background task has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
