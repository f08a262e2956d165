package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/discount"
	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/797Events/797Eventsapp-sub000/internal/kafka"
	"github.com/797Events/797Eventsapp-sub000/internal/pricing"
	"github.com/797Events/797Eventsapp-sub000/internal/repository"
	"github.com/797Events/797Eventsapp-sub000/internal/ticket"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid booking input")
	ErrHoldExpired  = errors.New("booking hold has expired")
	ErrNotTicketed  = errors.New("booking has no issued ticket")
)

type BookingUseCase interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*IssuedTicket, error)
	CancelBooking(ctx context.Context, id string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
	GetTicket(ctx context.Context, id string) (*IssuedTicket, error)
}

type DiscountResolver interface {
	Resolve(ctx context.Context, req discount.Request) (domain.AppliedDiscount, error)
}

type PassCache interface {
	InvalidatePasses(ctx context.Context, eventID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// ticketNotifyAttempts bounds retries of the ticket_issued notification, the
// one message a customer needs to reach the gate.
const ticketNotifyAttempts = 3

type Metrics interface {
	TrackQuote(status string)
	TrackDiscount(kind, result string)
	TrackBooking(status string)
}

type QuoteInput struct {
	EventID        string `json:"event_id"`
	PassID         string `json:"pass_id"`
	Quantity       int    `json:"quantity"`
	InfluencerCode string `json:"influencer_code"`
	PromoCode      string `json:"promo_code"`
	CustomerEmail  string `json:"customer_email"`
}

type Quote struct {
	EventID   string               `json:"event_id"`
	PassID    string               `json:"pass_id"`
	Quantity  int                  `json:"quantity"`
	UnitPrice int64                `json:"unit_price"`
	Pricing   domain.PricingResult `json:"pricing"`
}

type CreateBookingInput struct {
	QuoteInput
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

type IssuedTicket struct {
	Booking *domain.Booking      `json:"booking"`
	Payload domain.TicketPayload `json:"payload"`
	Encoded string               `json:"encoded"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	catalog            repository.EventRepository
	resolver           DiscountResolver
	signer             ticket.Signer
	producer           Producer
	cache              PassCache
	metrics            Metrics
	logger             *slog.Logger
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPassCache(cache PassCache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithMetrics(m Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func WithLogger(l *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	catalog repository.EventRepository,
	resolver DiscountResolver,
	signer ticket.Signer,
	producer Producer,
	bookingTopic string,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		catalog:      catalog,
		resolver:     resolver,
		signer:       signer,
		producer:     producer,
		bookingTopic: bookingTopic,
		holdTTL:      holdTTL,
		metrics:      noopMetrics{},
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Quote prices an order without reserving anything. Each code is resolved on
// its own and the engine enforces one discount per class.
func (s *BookingService) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	q, err := s.quote(ctx, input)
	if err != nil {
		s.metrics.TrackQuote(quoteStatus(err))
		return nil, err
	}
	s.metrics.TrackQuote("ok")
	return q, nil
}

func (s *BookingService) quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.PassID == "" {
		return nil, fmt.Errorf("%w: pass id is required", ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	pass, err := s.catalog.GetPass(ctx, input.PassID)
	if err != nil {
		return nil, fmt.Errorf("load pass %s: %w", input.PassID, err)
	}
	if input.EventID == "" {
		input.EventID = pass.EventID
	}
	if pass.EventID != input.EventID {
		return nil, fmt.Errorf("%w: pass %s does not belong to event %s", ErrInvalidInput, pass.ID, input.EventID)
	}
	if pass.Available() < input.Quantity {
		return nil, domain.ErrPassSoldOut
	}

	original, err := pricing.Subtotal(pass.UnitPrice, input.Quantity)
	if err != nil {
		return nil, err
	}
	var applied []domain.AppliedDiscount
	for _, slot := range []struct {
		name string
		code string
	}{
		{name: "influencer", code: input.InfluencerCode},
		{name: "promo", code: input.PromoCode},
	} {
		if strings.TrimSpace(slot.code) == "" {
			continue
		}
		d, err := s.resolver.Resolve(ctx, discount.Request{
			Code:          slot.code,
			EventID:       input.EventID,
			OrderAmount:   original,
			CustomerEmail: input.CustomerEmail,
		})
		if err != nil {
			s.metrics.TrackDiscount(slot.name, discountResult(err))
			return nil, err
		}
		s.metrics.TrackDiscount(slot.name, "applied")
		applied = append(applied, d)
	}

	result, err := pricing.Compute(pass.UnitPrice, input.Quantity, applied...)
	if err != nil {
		return nil, err
	}
	return &Quote{
		EventID:   input.EventID,
		PassID:    pass.ID,
		Quantity:  input.Quantity,
		UnitPrice: pass.UnitPrice,
		Pricing:   result,
	}, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	input.CustomerEmail = email

	q, err := s.Quote(ctx, input.QuoteInput)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		ID:               uuid.NewString(),
		EventID:          q.EventID,
		PassID:           q.PassID,
		CustomerName:     strings.TrimSpace(input.CustomerName),
		CustomerEmail:    email,
		CustomerPhone:    strings.TrimSpace(input.CustomerPhone),
		Quantity:         q.Quantity,
		OriginalAmount:   q.Pricing.OriginalAmount,
		FinalAmount:      q.Pricing.FinalAmount,
		Status:           domain.BookingStatusPending,
		AppliedDiscounts: q.Pricing.AppliedCodes,
		ExpiresAt:        now.Add(s.holdTTL),
	}
	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	booking.Status = domain.BookingStatusPending
	s.metrics.TrackBooking(string(booking.Status))
	s.publish(ctx, kafka.EventBookingCreated, booking, "")
	return booking, nil
}

// ConfirmBooking runs after payment capture. The pass inventory, booking status
// and event discount budget move together in one repository call.
func (s *BookingService) ConfirmBooking(ctx context.Context, id string) (*IssuedTicket, error) {
	current, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("confirm booking %s in status %s: %w", id, current.Status, domain.ErrInvalidTransition)
	}
	now := s.now().UTC()
	if !current.ExpiresAt.IsZero() && !now.Before(current.ExpiresAt) {
		return nil, ErrHoldExpired
	}

	updated, err := s.bookings.Confirm(ctx, id, now)
	if err != nil {
		return nil, err
	}
	issued, err := s.issue(updated)
	if err != nil {
		return nil, err
	}

	s.metrics.TrackBooking(string(updated.Status))
	s.publish(ctx, kafka.EventTicketIssued, updated, issued.Encoded)
	if s.cache != nil {
		if err := s.cache.InvalidatePasses(ctx, updated.EventID); err != nil {
			s.logger.Warn("invalidate pass cache", "event_id", updated.EventID, "error", err)
		}
	}
	return issued, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled || current.Status == domain.BookingStatusExpired {
		return current, nil
	}
	if current.Status == domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("cancel confirmed booking %s: %w", id, domain.ErrInvalidTransition)
	}

	updated, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.TrackBooking(string(updated.Status))
	s.publish(ctx, kafka.EventBookingCancelled, updated, "")
	return updated, nil
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.metrics.TrackBooking(string(domain.BookingStatusExpired))
		s.publish(ctx, kafka.EventBookingExpired, &expired[i], "")
	}
	return expired, nil
}

// GetTicket re-derives the payload from the stored issue time, so repeated
// calls return the same ticket.
func (s *BookingService) GetTicket(ctx context.Context, id string) (*IssuedTicket, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusConfirmed || b.TicketIssuedAt == nil {
		return nil, ErrNotTicketed
	}
	return s.issue(b)
}

func (s *BookingService) issue(b *domain.Booking) (*IssuedTicket, error) {
	if b.TicketIssuedAt == nil {
		return nil, ErrNotTicketed
	}
	payload := ticket.Issue(s.signer, b, *b.TicketIssuedAt)
	encoded, err := ticket.Encode(payload)
	if err != nil {
		return nil, err
	}
	return &IssuedTicket{Booking: b, Payload: payload, Encoded: encoded}, nil
}

// publish is best effort: a broker outage must not undo a booking change.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, payload string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		EventID:       booking.EventID,
		PassID:        booking.PassID,
		CustomerName:  booking.CustomerName,
		Email:         booking.CustomerEmail,
		Quantity:      booking.Quantity,
		FinalAmount:   booking.FinalAmount,
		Status:        string(booking.Status),
		TicketPayload: payload,
		ExpiresAt:     booking.ExpiresAt,
		OccurredAt:    s.now().UTC(),
	}
	for _, d := range booking.AppliedDiscounts {
		event.AppliedCodes = append(event.AppliedCodes, kafka.AppliedCode{
			Code:      d.Code,
			Kind:      string(d.Kind),
			OwnerID:   d.OwnerID,
			AmountOff: d.AmountOff,
		})
	}

	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		s.logger.Warn("publish booking event", "type", eventType, "booking_id", booking.ID, "error", err)
	}
	if s.notificationsTopic == "" {
		return
	}
	var err error
	if eventType == kafka.EventTicketIssued {
		err = s.producer.PublishWithRetry(ctx, s.notificationsTopic, booking.ID, event, ticketNotifyAttempts)
	} else {
		err = s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	if err != nil {
		s.logger.Warn("publish notification", "type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func quoteStatus(err error) string {
	var ineligible *discount.IneligibleError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrInvalidAmount):
		return "invalid"
	case errors.Is(err, pricing.ErrDuplicateDiscountClass):
		return "duplicate_class"
	case errors.Is(err, discount.ErrCodeNotFound), errors.As(err, &ineligible):
		return "rejected_code"
	case errors.Is(err, domain.ErrPassSoldOut):
		return "sold_out"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func discountResult(err error) string {
	var ineligible *discount.IneligibleError
	switch {
	case errors.Is(err, discount.ErrCodeNotFound):
		return "not_found"
	case errors.As(err, &ineligible):
		return string(ineligible.Reason)
	default:
		return "error"
	}
}

type noopMetrics struct{}

func (noopMetrics) TrackQuote(string)            {}
func (noopMetrics) TrackDiscount(string, string) {}
func (noopMetrics) TrackBooking(string)          {}

var _ BookingUseCase = (*BookingService)(nil)
