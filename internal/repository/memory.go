package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
)

// MemoryStore keeps every record in process. It backs local runs and tests;
// InsertAttendanceIfAbsent holds the lock across check and write so it has
// the same guarantee as the unique index in Postgres.
type MemoryStore struct {
	mu         sync.Mutex
	events     map[string]domain.Event
	passes     map[string]domain.Pass
	bookings   map[string]domain.Booking
	codes      map[string]domain.DiscountCode
	students   map[string]bool
	attendance map[string]domain.AttendanceRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:     make(map[string]domain.Event),
		passes:     make(map[string]domain.Pass),
		bookings:   make(map[string]domain.Booking),
		codes:      make(map[string]domain.DiscountCode),
		students:   make(map[string]bool),
		attendance: make(map[string]domain.AttendanceRecord),
	}
}

func (s *MemoryStore) PutEvent(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
}

func (s *MemoryStore) PutPass(p domain.Pass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passes[p.ID] = p
}

func (s *MemoryStore) PutBooking(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

func (s *MemoryStore) PutDiscountCode(c domain.DiscountCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[strings.ToUpper(c.Info().Code)] = c
}

func (s *MemoryStore) SetStudentVerified(code, customerEmail string, verified bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[studentKey(code, customerEmail)] = verified
}

func studentKey(code, email string) string {
	return strings.ToUpper(code) + "|" + strings.ToLower(email)
}

func (s *MemoryStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return events, nil
}

func (s *MemoryStore) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) GetPass(ctx context.Context, id string) (*domain.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListPasses(ctx context.Context, eventID string) ([]domain.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	passes := make([]domain.Pass, 0)
	for _, p := range s.passes {
		if p.EventID == eventID {
			passes = append(passes, p)
		}
	}
	sort.Slice(passes, func(i, j int) bool { return passes[i].UnitPrice < passes[j].UnitPrice })
	return passes, nil
}

func (s *MemoryStore) FindByCode(ctx context.Context, code string) (domain.DiscountCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) IsVerified(ctx context.Context, code, customerEmail string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.students[studentKey(code, customerEmail)], nil
}

func (s *MemoryStore) CreatePending(ctx context.Context, booking *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	booking.Status = domain.BookingStatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now
	s.bookings[booking.ID] = cloneBooking(*booking)
	return nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b = cloneBooking(b)
	return &b, nil
}

func (s *MemoryStore) Confirm(ctx context.Context, id string, issuedAt time.Time) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidTransition
	}
	pass, ok := s.passes[b.PassID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if pass.Sold+b.Quantity > pass.Capacity {
		return nil, domain.ErrPassSoldOut
	}
	spent := b.DiscountAmount()
	e, hasEvent := s.events[b.EventID]
	if spent > 0 && hasEvent {
		if remaining, capped := e.RemainingBudget(); capped && spent > remaining {
			return nil, domain.ErrDiscountBudgetExceeded
		}
	}

	pass.Sold += b.Quantity
	s.passes[pass.ID] = pass
	if hasEvent {
		e.DiscountSpent += spent
		s.events[e.ID] = e
	}

	issued := issuedAt.UTC()
	b.Status = domain.BookingStatusConfirmed
	b.TicketIssuedAt = &issued
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b

	out := cloneBooking(b)
	return &out, nil
}

func (s *MemoryStore) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidTransition
	}
	b.Status = domain.BookingStatusCancelled
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	out := cloneBooking(b)
	return &out, nil
}

func (s *MemoryStore) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []domain.Booking
	for id, b := range s.bookings {
		if b.Status == domain.BookingStatusPending && !b.ExpiresAt.After(deadline) {
			b.Status = domain.BookingStatusExpired
			b.UpdatedAt = time.Now().UTC()
			s.bookings[id] = b
			expired = append(expired, cloneBooking(b))
		}
	}
	return expired, nil
}

func (s *MemoryStore) InsertAttendanceIfAbsent(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.AttendanceRecord{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.attendance[record.BookingID]; ok {
		return existing, false, nil
	}
	s.attendance[record.BookingID] = record
	return record, true, nil
}

func (s *MemoryStore) GetAttendance(ctx context.Context, bookingID string) (*domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.attendance[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func cloneBooking(b domain.Booking) domain.Booking {
	if b.AppliedDiscounts != nil {
		b.AppliedDiscounts = append([]domain.AppliedDiscount(nil), b.AppliedDiscounts...)
	}
	if b.TicketIssuedAt != nil {
		t := *b.TicketIssuedAt
		b.TicketIssuedAt = &t
	}
	return b
}

var (
	_ EventRepository               = (*MemoryStore)(nil)
	_ BookingRepository             = (*MemoryStore)(nil)
	_ DiscountRepository            = (*MemoryStore)(nil)
	_ StudentVerificationRepository = (*MemoryStore)(nil)
	_ AttendanceRepository          = (*MemoryStore)(nil)
)
