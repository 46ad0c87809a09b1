package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

// Ticket is the data printed on a meal ticket
type Ticket struct {
	CompanyName         string    `json:"company_name"`
	IdentityDisplayName string    `json:"identity_display_name"`
	IdentityExternalID  string    `json:"identity_external_id,omitempty"`
	MealName            string    `json:"meal_name"`
	Timestamp           time.Time `json:"timestamp"`
	OrderReference      string    `json:"order_reference"`
	OperatorName        string    `json:"operator_name"`
}

// TicketPrinter prints meal tickets
type TicketPrinter interface {
	Print(ctx context.Context, ticket Ticket) error
}

// ESC/POS control sequences
var (
	escInit      = []byte{0x1b, 0x40}
	escAlignMid  = []byte{0x1b, 0x61, 0x01}
	escAlignLeft = []byte{0x1b, 0x61, 0x00}
	escBoldOn    = []byte{0x1b, 0x45, 0x01}
	escBoldOff   = []byte{0x1b, 0x45, 0x00}
	gsCut        = []byte{0x1d, 0x56, 0x41, 0x03}
)

// NetworkTicketPrinter sends ESC/POS tickets to a raw TCP printer (usually port 9100)
type NetworkTicketPrinter struct {
	addr string
}

// NewNetworkTicketPrinter creates a printer client for host:port
func NewNetworkTicketPrinter(addr string) *NetworkTicketPrinter {
	return &NetworkTicketPrinter{addr: addr}
}

// Print renders the ticket and writes it to the printer before the context deadline
func (p *NetworkTicketPrinter) Print(ctx context.Context, ticket Ticket) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to printer %s: %w", p.addr, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Printf("warning: failed to close printer connection: %v", closeErr)
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set printer deadline: %w", err)
		}
	}

	if _, err := conn.Write(RenderTicket(ticket)); err != nil {
		return fmt.Errorf("failed to write ticket: %w", err)
	}
	return nil
}

// RenderTicket formats a ticket as ESC/POS bytes
func RenderTicket(t Ticket) []byte {
	var buf bytes.Buffer
	buf.Write(escInit)
	buf.Write(escAlignMid)
	buf.Write(escBoldOn)
	fmt.Fprintf(&buf, "%s\n", t.CompanyName)
	buf.Write(escBoldOff)
	fmt.Fprintf(&buf, "MEAL TICKET\n%s\n\n", t.OrderReference)
	buf.Write(escAlignLeft)
	fmt.Fprintf(&buf, "Name:     %s\n", t.IdentityDisplayName)
	if t.IdentityExternalID != "" {
		fmt.Fprintf(&buf, "ID:       %s\n", t.IdentityExternalID)
	}
	fmt.Fprintf(&buf, "Meal:     %s\n", t.MealName)
	fmt.Fprintf(&buf, "Date:     %s\n", t.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(&buf, "Operator: %s\n", t.OperatorName)
	buf.WriteString("\n\n\n")
	buf.Write(gsCut)
	return buf.Bytes()
}

// LogTicketPrinter writes tickets to the application log.
// It is used when no printer address is configured.
type LogTicketPrinter struct{}

// Print logs the ticket
func (LogTicketPrinter) Print(_ context.Context, t Ticket) error {
	log.Printf("ticket %s: %s / %s / %s", t.OrderReference, t.IdentityDisplayName, t.MealName, t.Timestamp.Format(time.RFC3339))
	return nil
}
