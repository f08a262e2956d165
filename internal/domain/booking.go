package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type Booking struct {
	ID               string            `json:"id"`
	EventID          string            `json:"event_id"`
	PassID           string            `json:"pass_id"`
	CustomerName     string            `json:"customer_name"`
	CustomerEmail    string            `json:"customer_email"`
	CustomerPhone    string            `json:"customer_phone"`
	Quantity         int               `json:"quantity"`
	OriginalAmount   int64             `json:"original_amount"`
	FinalAmount      int64             `json:"final_amount"`
	Status           BookingStatus     `json:"status"`
	AppliedDiscounts []AppliedDiscount `json:"applied_discounts"`
	TicketIssuedAt   *time.Time        `json:"ticket_issued_at,omitempty"`
	ExpiresAt        time.Time         `json:"expires_at"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (b *Booking) DiscountAmount() int64 {
	var total int64
	for _, d := range b.AppliedDiscounts {
		total += d.AmountOff
	}
	return total
}
