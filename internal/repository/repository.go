package repository

import (
	"context"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
)

type EventRepository interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	GetPass(ctx context.Context, id string) (*domain.Pass, error)
	ListPasses(ctx context.Context, eventID string) ([]domain.Pass, error)
}

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	// Confirm moves a pending booking to confirmed, takes its passes from the
	// pass inventory and charges its discounts to the event budget, all or
	// nothing.
	Confirm(ctx context.Context, id string, issuedAt time.Time) (*domain.Booking, error)
	Cancel(ctx context.Context, id string) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type DiscountRepository interface {
	FindByCode(ctx context.Context, code string) (domain.DiscountCode, error)
}

type StudentVerificationRepository interface {
	IsVerified(ctx context.Context, code, customerEmail string) (bool, error)
}

type AttendanceRepository interface {
	InsertAttendanceIfAbsent(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, bool, error)
	GetAttendance(ctx context.Context, bookingID string) (*domain.AttendanceRecord, error)
}
