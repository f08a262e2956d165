package kafka

import (
	"context"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/checkin"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventBookingExpired   = "booking_expired"
	EventTicketIssued     = "ticket_issued"
)

type AppliedCode struct {
	Code      string `json:"code"`
	Kind      string `json:"kind"`
	OwnerID   string `json:"owner_id,omitempty"`
	AmountOff int64  `json:"amount_off"`
}

// BookingEvent is published on the booking topic and, for customer facing
// types, on the notifications topic. Influencer owner ids travel with it so
// commission accounting can attribute the sale.
type BookingEvent struct {
	Type          string        `json:"type"`
	BookingID     string        `json:"booking_id"`
	EventID       string        `json:"event_id"`
	PassID        string        `json:"pass_id"`
	CustomerName  string        `json:"customer_name"`
	Email         string        `json:"email"`
	Quantity      int           `json:"quantity"`
	FinalAmount   int64         `json:"final_amount"`
	Status        string        `json:"status"`
	AppliedCodes  []AppliedCode `json:"applied_codes,omitempty"`
	TicketPayload string        `json:"ticket_payload,omitempty"`
	ExpiresAt     time.Time     `json:"expires_at"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

type publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// ScanAuditor sends every gate scan outcome to the audit topic.
type ScanAuditor struct {
	producer publisher
	topic    string
}

func NewScanAuditor(producer publisher, topic string) *ScanAuditor {
	return &ScanAuditor{producer: producer, topic: topic}
}

func (a *ScanAuditor) RecordScan(ctx context.Context, entry checkin.AuditEntry) error {
	if a.producer == nil || a.topic == "" {
		return nil
	}
	return a.producer.Publish(ctx, a.topic, entry.BookingID, entry)
}

var _ checkin.Auditor = (*ScanAuditor)(nil)
