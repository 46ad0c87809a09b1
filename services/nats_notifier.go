package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// OrderEventsSubjectPrefix prefixes the NATS subject of every order event
const OrderEventsSubjectPrefix = "canteen.orders."

// NATSNotifier publishes order events to NATS
type NATSNotifier struct {
	conn *nats.Conn
}

// NewNATSNotifier connects to the NATS server at url
func NewNATSNotifier(url string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url, nats.Name("canteen-meals-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSNotifier{conn: conn}, nil
}

// Notify publishes the event on canteen.orders.<kind>
func (n *NATSNotifier) Notify(_ context.Context, event Event) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return n.conn.Publish(OrderEventsSubjectPrefix+event.Kind, msg)
}

// Close drains and closes the connection
func (n *NATSNotifier) Close() error {
	return n.conn.Drain()
}
