package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/797Events/797Eventsapp-sub000/internal/kafka"
)

var ErrNoRecipient = errors.New("booking event has no recipient")

type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a rendered message. The default one only logs.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

type Sender struct {
	transport Transport
	logger    *slog.Logger
}

func NewSender(transport Transport, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	if transport == nil {
		transport = logTransport{logger: logger}
	}
	return &Sender{transport: transport, logger: logger}
}

// Send renders and delivers the customer notification for a booking event.
// Types without a customer message are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	msg, ok := Render(event)
	if !ok {
		return nil
	}
	if msg.To == "" {
		return fmt.Errorf("%s for booking %s: %w", event.Type, event.BookingID, ErrNoRecipient)
	}
	if err := s.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s for booking %s: %w", event.Type, event.BookingID, err)
	}
	s.logger.Info("notification sent", "type", event.Type, "booking_id", event.BookingID)
	return nil
}

func Render(event kafka.BookingEvent) (Message, bool) {
	msg := Message{To: event.Email}
	switch event.Type {
	case kafka.EventBookingCreated:
		msg.Subject = "Your booking is on hold"
		msg.Body = fmt.Sprintf("Hi %s, we are holding %d pass(es) for you until %s. Amount due: %s.",
			event.CustomerName, event.Quantity, event.ExpiresAt.Format("2006-01-02 15:04 MST"), formatAmount(event.FinalAmount))
	case kafka.EventTicketIssued:
		msg.Subject = "Your ticket"
		msg.Body = fmt.Sprintf("Hi %s, your booking %s is confirmed. Show this code at the gate:\n\n%s",
			event.CustomerName, event.BookingID, event.TicketPayload)
	case kafka.EventBookingCancelled:
		msg.Subject = "Booking cancelled"
		msg.Body = fmt.Sprintf("Hi %s, booking %s has been cancelled.", event.CustomerName, event.BookingID)
	case kafka.EventBookingExpired:
		msg.Subject = "Booking hold expired"
		msg.Body = fmt.Sprintf("Hi %s, the hold on booking %s expired before payment.", event.CustomerName, event.BookingID)
	default:
		return Message{}, false
	}
	return msg, true
}

// formatAmount prints minor units with two decimals.
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

type logTransport struct {
	logger *slog.Logger
}

func (t logTransport) Deliver(ctx context.Context, msg Message) error {
	t.logger.InfoContext(ctx, "email", "to", msg.To, "subject", msg.Subject)
	return nil
}
