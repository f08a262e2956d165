package checkin

import (
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
)

type Outcome string

const (
	OutcomeAdmitted         Outcome = "ADMITTED"
	OutcomeAlreadyAdmitted  Outcome = "ALREADY_ADMITTED"
	OutcomeNotFound         Outcome = "NOT_FOUND"
	OutcomeNotConfirmed     Outcome = "NOT_CONFIRMED"
	OutcomeEventMismatch    Outcome = "EVENT_MISMATCH"
	OutcomeInvalidSignature Outcome = "INVALID_SIGNATURE"
	OutcomeTransientError   Outcome = "TRANSIENT_ERROR"
	OutcomeInvalidRequest   Outcome = "INVALID_REQUEST"
)

// Signal is the light shown to the guard.
type Signal string

const (
	SignalGreen  Signal = "green"
	SignalYellow Signal = "yellow"
	SignalRed    Signal = "red"
)

func (o Outcome) Signal() Signal {
	switch o {
	case OutcomeAdmitted:
		return SignalGreen
	case OutcomeAlreadyAdmitted, OutcomeTransientError:
		return SignalYellow
	default:
		return SignalRed
	}
}

// Retryable is true only for infrastructure failures; every other outcome is
// final for the scan attempt.
func (o Outcome) Retryable() bool {
	return o == OutcomeTransientError
}

type BookingSummary struct {
	BookingID    string               `json:"booking_id"`
	EventID      string               `json:"event_id"`
	EventName    string               `json:"event_name,omitempty"`
	PassID       string               `json:"pass_id"`
	CustomerName string               `json:"customer_name"`
	Quantity     int                  `json:"quantity"`
	Status       domain.BookingStatus `json:"status"`
}

type Result struct {
	Outcome Outcome         `json:"outcome"`
	Booking *BookingSummary `json:"booking,omitempty"`
	// CheckInTime is the new admission time for Admitted and the original one
	// for AlreadyAdmitted.
	CheckInTime *time.Time `json:"check_in_time,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

func summarize(b *domain.Booking) *BookingSummary {
	return &BookingSummary{
		BookingID:    b.ID,
		EventID:      b.EventID,
		PassID:       b.PassID,
		CustomerName: b.CustomerName,
		Quantity:     b.Quantity,
		Status:       b.Status,
	}
}
