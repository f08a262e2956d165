package domain

import "time"

// TicketPayload is what gets encoded into the scannable ticket.
type TicketPayload struct {
	BookingID string    `json:"booking_id"`
	EventID   string    `json:"event_id"`
	IssuedAt  time.Time `json:"issued_at"`
	Signature string    `json:"signature"`
}

// AttendanceRecord is written once per booking and never updated.
type AttendanceRecord struct {
	BookingID        string    `json:"booking_id"`
	EventID          string    `json:"event_id"`
	CheckInTime      time.Time `json:"check_in_time"`
	ScannedByGuardID string    `json:"scanned_by_guard_id"`
	GuardName        string    `json:"guard_name"`
	Location         string    `json:"location"`
}
