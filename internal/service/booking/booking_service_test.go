package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/discount"
	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/797Events/797Eventsapp-sub000/internal/kafka"
	"github.com/797Events/797Eventsapp-sub000/internal/pricing"
	"github.com/797Events/797Eventsapp-sub000/internal/ticket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Confirm(ctx context.Context, id string, issuedAt time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, id, issuedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) GetPass(ctx context.Context, id string) (*domain.Pass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pass), args.Error(1)
}

func (m *MockEventRepository) ListPasses(ctx context.Context, eventID string) ([]domain.Pass, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Pass), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, req discount.Request) (domain.AppliedDiscount, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AppliedDiscount), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func (m *MockProducer) PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error {
	args := m.Called(ctx, topic, key, value, maxRetries)
	return args.Error(0)
}

type MockPassCache struct {
	mock.Mock
}

func (m *MockPassCache) InvalidatePasses(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

type fixture struct {
	bookings *MockBookingRepository
	catalog  *MockEventRepository
	resolver *MockResolver
	producer *MockProducer
	cache    *MockPassCache
	signer   ticket.Signer
	service  *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := ticket.NewHMACSigner("gate-secret")
	require.NoError(t, err)

	f := &fixture{
		bookings: &MockBookingRepository{},
		catalog:  &MockEventRepository{},
		resolver: &MockResolver{},
		producer: &MockProducer{},
		cache:    &MockPassCache{},
		signer:   signer,
	}
	f.service = NewBookingService(
		f.bookings,
		f.catalog,
		f.resolver,
		signer,
		f.producer,
		"booking_topic",
		15*time.Minute,
		WithNotificationsTopic("notifications_topic"),
		WithPassCache(f.cache),
		WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func generalPass() *domain.Pass {
	return &domain.Pass{ID: "pass-ga", EventID: "evt-1", Name: "General", UnitPrice: 10000, Capacity: 100, Sold: 10}
}

func influencerDiscount() domain.AppliedDiscount {
	rule := domain.InfluencerCode{
		CodeInfo:   domain.CodeInfo{Code: "INF10", IsActive: true},
		OwnerID:    "inf-42",
		PercentOff: decimal.NewFromInt(10),
	}
	return domain.AppliedDiscount{Code: "INF10", Kind: rule.Kind(), OwnerID: rule.OwnerID, AmountOff: 1000, Rule: rule}
}

func promoDiscount() domain.AppliedDiscount {
	rule := domain.AdminPromoCode{
		CodeInfo: domain.CodeInfo{Code: "FLAT20", IsActive: true},
		FixedOff: 2000,
	}
	return domain.AppliedDiscount{Code: "FLAT20", Kind: rule.Kind(), AmountOff: 2000, Rule: rule}
}

func TestBookingService_Quote_StacksOnePerClass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()
	f.resolver.On("Resolve", ctx, discount.Request{Code: "inf10", EventID: "evt-1", OrderAmount: 20000}).
		Return(influencerDiscount(), nil).Once()
	f.resolver.On("Resolve", ctx, discount.Request{Code: "FLAT20", EventID: "evt-1", OrderAmount: 20000}).
		Return(promoDiscount(), nil).Once()

	q, err := f.service.Quote(ctx, QuoteInput{
		EventID:        "evt-1",
		PassID:         "pass-ga",
		Quantity:       2,
		InfluencerCode: "inf10",
		PromoCode:      "FLAT20",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(20000), q.Pricing.OriginalAmount)
	// 10% of the original order, plus the flat amount
	assert.Equal(t, int64(4000), q.Pricing.DiscountAmount)
	assert.Equal(t, int64(16000), q.Pricing.FinalAmount)
	require.Len(t, q.Pricing.AppliedCodes, 2)
	assert.Equal(t, "inf-42", q.Pricing.AppliedCodes[0].OwnerID)

	f.catalog.AssertExpectations(t)
	f.resolver.AssertExpectations(t)
}

func TestBookingService_Quote_DefaultsEventFromPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()

	q, err := f.service.Quote(ctx, QuoteInput{PassID: "pass-ga", Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, "evt-1", q.EventID)
	assert.Equal(t, int64(10000), q.Pricing.FinalAmount)
	f.resolver.AssertNotCalled(t, "Resolve")
}

func TestBookingService_Quote_TotalOverflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pricey := generalPass()
	pricey.UnitPrice = 1 << 62
	f.catalog.On("GetPass", ctx, "pass-ga").Return(pricey, nil).Once()

	_, err := f.service.Quote(ctx, QuoteInput{PassID: "pass-ga", Quantity: 4, PromoCode: "FLAT20"})

	assert.ErrorIs(t, err, pricing.ErrInvalidAmount)
	f.resolver.AssertNotCalled(t, "Resolve")
}

func TestBookingService_Quote_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input QuoteInput
	}{
		{name: "Missing pass", input: QuoteInput{EventID: "evt-1", Quantity: 1}},
		{name: "Zero quantity", input: QuoteInput{PassID: "pass-ga", Quantity: 0}},
		{name: "Negative quantity", input: QuoteInput{PassID: "pass-ga", Quantity: -3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Quote(ctx, tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	f.catalog.AssertNotCalled(t, "GetPass")
}

func TestBookingService_Quote_PassFromOtherEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()

	_, err := f.service.Quote(ctx, QuoteInput{EventID: "evt-2", PassID: "pass-ga", Quantity: 1})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBookingService_Quote_SoldOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pass := generalPass()
	pass.Sold = 99
	f.catalog.On("GetPass", ctx, "pass-ga").Return(pass, nil).Once()

	_, err := f.service.Quote(ctx, QuoteInput{PassID: "pass-ga", Quantity: 2})

	assert.ErrorIs(t, err, domain.ErrPassSoldOut)
}

func TestBookingService_Quote_IneligibleCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()
	f.resolver.On("Resolve", ctx, mock.AnythingOfType("discount.Request")).
		Return(domain.AppliedDiscount{}, &discount.IneligibleError{Code: "OLD", Reason: discount.ReasonExpired}).Once()

	_, err := f.service.Quote(ctx, QuoteInput{PassID: "pass-ga", Quantity: 1, PromoCode: "old"})

	var ineligible *discount.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Equal(t, discount.ReasonExpired, ineligible.Reason)
}

func TestBookingService_Quote_TwoPromosRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second := promoDiscount()
	second.Code = "FLAT20B"
	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()
	f.resolver.On("Resolve", ctx, mock.MatchedBy(func(r discount.Request) bool { return r.Code == "FLAT20" })).
		Return(promoDiscount(), nil).Once()
	f.resolver.On("Resolve", ctx, mock.MatchedBy(func(r discount.Request) bool { return r.Code == "FLAT20B" })).
		Return(second, nil).Once()

	_, err := f.service.Quote(ctx, QuoteInput{PassID: "pass-ga", Quantity: 1, InfluencerCode: "FLAT20", PromoCode: "FLAT20B"})

	assert.ErrorIs(t, err, pricing.ErrDuplicateDiscountClass)
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()
	f.resolver.On("Resolve", ctx, discount.Request{Code: "INF10", EventID: "evt-1", OrderAmount: 10000, CustomerEmail: "ana@example.com"}).
		Return(influencerDiscount(), nil).Once()
	f.bookings.On("CreatePending", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	isCreated := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.FinalAmount == 9000 && len(e.AppliedCodes) == 1 && e.AppliedCodes[0].OwnerID == "inf-42"
	})
	f.producer.On("Publish", ctx, "booking_topic", mock.Anything, isCreated).Return(nil).Once()
	f.producer.On("Publish", ctx, "notifications_topic", mock.Anything, isCreated).Return(nil).Once()

	b, err := f.service.CreateBooking(ctx, CreateBookingInput{
		QuoteInput:   QuoteInput{EventID: "evt-1", PassID: "pass-ga", Quantity: 1, InfluencerCode: "INF10", CustomerEmail: " Ana@Example.com "},
		CustomerName: "Ana",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.Equal(t, "ana@example.com", b.CustomerEmail)
	assert.Equal(t, int64(10000), b.OriginalAmount)
	assert.Equal(t, int64(9000), b.FinalAmount)
	assert.Equal(t, fixedNow.Add(15*time.Minute), b.ExpiresAt)

	f.bookings.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input CreateBookingInput
	}{
		{
			name:  "Empty name",
			input: CreateBookingInput{QuoteInput: QuoteInput{PassID: "pass-ga", Quantity: 1, CustomerEmail: "a@example.com"}},
		},
		{
			name:  "Empty email",
			input: CreateBookingInput{QuoteInput: QuoteInput{PassID: "pass-ga", Quantity: 1}, CustomerName: "Ana"},
		},
		{
			name:  "Malformed email",
			input: CreateBookingInput{QuoteInput: QuoteInput{PassID: "pass-ga", Quantity: 1, CustomerEmail: "ana"}, CustomerName: "Ana"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.CreateBooking(ctx, tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	f.bookings.AssertNotCalled(t, "CreatePending")
}

func TestBookingService_CreateBooking_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()
	f.bookings.On("CreatePending", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	f.producer.On("Publish", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Twice()

	b, err := f.service.CreateBooking(ctx, CreateBookingInput{
		QuoteInput:   QuoteInput{PassID: "pass-ga", Quantity: 1, CustomerEmail: "ana@example.com"},
		CustomerName: "Ana",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, b.Status)
	f.producer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_RepositoryError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.catalog.On("GetPass", ctx, "pass-ga").Return(generalPass(), nil).Once()
	f.bookings.On("CreatePending", ctx, mock.AnythingOfType("*domain.Booking")).Return(errors.New("database error")).Once()

	_, err := f.service.CreateBooking(ctx, CreateBookingInput{
		QuoteInput:   QuoteInput{PassID: "pass-ga", Quantity: 1, CustomerEmail: "ana@example.com"},
		CustomerName: "Ana",
	})

	assert.Error(t, err)
	f.producer.AssertNotCalled(t, "Publish")
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:            "bk-1",
		EventID:       "evt-1",
		PassID:        "pass-ga",
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		Quantity:      1,
		FinalAmount:   9000,
		Status:        domain.BookingStatusPending,
		ExpiresAt:     fixedNow.Add(10 * time.Minute),
	}
}

func confirmedBooking() *domain.Booking {
	b := pendingBooking()
	issued := fixedNow
	b.Status = domain.BookingStatusConfirmed
	b.TicketIssuedAt = &issued
	return b
}

func TestBookingService_ConfirmBooking_IssuesSignedTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("GetBooking", ctx, "bk-1").Return(pendingBooking(), nil).Once()
	f.bookings.On("Confirm", ctx, "bk-1", fixedNow).Return(confirmedBooking(), nil).Once()
	isIssued := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventTicketIssued && e.TicketPayload != ""
	})
	f.producer.On("Publish", ctx, "booking_topic", "bk-1", isIssued).Return(nil).Once()
	f.producer.On("PublishWithRetry", ctx, "notifications_topic", "bk-1", isIssued, ticketNotifyAttempts).Return(nil).Once()
	f.cache.On("InvalidatePasses", ctx, "evt-1").Return(nil).Once()

	issued, err := f.service.ConfirmBooking(ctx, "bk-1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, issued.Booking.Status)
	assert.Equal(t, "bk-1", issued.Payload.BookingID)
	assert.Equal(t, "evt-1", issued.Payload.EventID)
	assert.True(t, f.signer.Verify("bk-1", "evt-1", "ana@example.com", issued.Payload.Signature))

	decoded, err := ticket.Decode(issued.Encoded)
	require.NoError(t, err)
	assert.Equal(t, issued.Payload, decoded)

	f.bookings.AssertExpectations(t)
	f.producer.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestBookingService_ConfirmBooking_NotificationFailureKeepsTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("GetBooking", ctx, "bk-1").Return(pendingBooking(), nil).Once()
	f.bookings.On("Confirm", ctx, "bk-1", fixedNow).Return(confirmedBooking(), nil).Once()
	f.producer.On("Publish", ctx, "booking_topic", "bk-1", mock.Anything).Return(nil).Once()
	f.producer.On("PublishWithRetry", ctx, "notifications_topic", "bk-1", mock.Anything, ticketNotifyAttempts).
		Return(errors.New("failed after 3 retries: broker down")).Once()
	f.cache.On("InvalidatePasses", ctx, "evt-1").Return(nil).Once()

	issued, err := f.service.ConfirmBooking(ctx, "bk-1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, issued.Booking.Status)
	assert.NotEmpty(t, issued.Encoded)
	f.producer.AssertExpectations(t)
	f.producer.AssertNotCalled(t, "Publish", ctx, "notifications_topic", mock.Anything, mock.Anything)
}

func TestBookingService_ConfirmBooking_DiscountBudgetSpent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("GetBooking", ctx, "bk-1").Return(pendingBooking(), nil).Once()
	f.bookings.On("Confirm", ctx, "bk-1", fixedNow).Return(nil, domain.ErrDiscountBudgetExceeded).Once()

	_, err := f.service.ConfirmBooking(ctx, "bk-1")

	assert.ErrorIs(t, err, domain.ErrDiscountBudgetExceeded)
	f.producer.AssertNotCalled(t, "Publish")
	f.producer.AssertNotCalled(t, "PublishWithRetry")
	f.cache.AssertNotCalled(t, "InvalidatePasses")
}

func TestBookingService_ConfirmBooking_NotPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("GetBooking", ctx, "bk-1").Return(confirmedBooking(), nil).Once()

	_, err := f.service.ConfirmBooking(ctx, "bk-1")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.bookings.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_ConfirmBooking_HoldExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := pendingBooking()
	stale.ExpiresAt = fixedNow.Add(-time.Second)
	f.bookings.On("GetBooking", ctx, "bk-1").Return(stale, nil).Once()

	_, err := f.service.ConfirmBooking(ctx, "bk-1")

	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestBookingService_ConfirmBooking_SoldOutAtCapture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("GetBooking", ctx, "bk-1").Return(pendingBooking(), nil).Once()
	f.bookings.On("Confirm", ctx, "bk-1", fixedNow).Return(nil, domain.ErrPassSoldOut).Once()

	_, err := f.service.ConfirmBooking(ctx, "bk-1")

	assert.ErrorIs(t, err, domain.ErrPassSoldOut)
	f.producer.AssertNotCalled(t, "Publish")
	f.cache.AssertNotCalled(t, "InvalidatePasses")
}

func TestBookingService_CancelBooking(t *testing.T) {
	t.Run("Pending is cancelled", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		cancelled := pendingBooking()
		cancelled.Status = domain.BookingStatusCancelled
		f.bookings.On("GetBooking", ctx, "bk-1").Return(pendingBooking(), nil).Once()
		f.bookings.On("Cancel", ctx, "bk-1").Return(cancelled, nil).Once()
		f.producer.On("Publish", ctx, mock.Anything, "bk-1", mock.Anything).Return(nil).Twice()

		b, err := f.service.CancelBooking(ctx, "bk-1")

		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, b.Status)
		f.producer.AssertExpectations(t)
	})

	t.Run("Already cancelled is returned as is", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		cancelled := pendingBooking()
		cancelled.Status = domain.BookingStatusCancelled
		f.bookings.On("GetBooking", ctx, "bk-1").Return(cancelled, nil).Once()

		b, err := f.service.CancelBooking(ctx, "bk-1")

		require.NoError(t, err)
		assert.Equal(t, cancelled, b)
		f.bookings.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("Confirmed cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		f.bookings.On("GetBooking", ctx, "bk-1").Return(confirmedBooking(), nil).Once()

		_, err := f.service.CancelBooking(ctx, "bk-1")

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Unknown booking", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		f.bookings.On("GetBooking", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

		_, err := f.service.CancelBooking(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_ExpirePendingBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := *pendingBooking()
	first.Status = domain.BookingStatusExpired
	second := first
	second.ID = "bk-2"
	f.bookings.On("ExpirePendingBefore", ctx, fixedNow).Return([]domain.Booking{first, second}, nil).Once()
	isExpired := mock.MatchedBy(func(e kafka.BookingEvent) bool { return e.Type == kafka.EventBookingExpired })
	f.producer.On("Publish", ctx, mock.Anything, mock.Anything, isExpired).Return(nil).Times(4)

	expired, err := f.service.ExpirePendingBookings(ctx)

	require.NoError(t, err)
	assert.Len(t, expired, 2)
	f.producer.AssertExpectations(t)
}

func TestBookingService_ExpirePendingBookings_RepositoryError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("ExpirePendingBefore", ctx, fixedNow).Return([]domain.Booking(nil), errors.New("database error")).Once()

	_, err := f.service.ExpirePendingBookings(ctx)

	assert.Error(t, err)
	f.producer.AssertNotCalled(t, "Publish")
}

func TestBookingService_GetTicket_IsStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("GetBooking", ctx, "bk-1").Return(confirmedBooking(), nil).Twice()

	first, err := f.service.GetTicket(ctx, "bk-1")
	require.NoError(t, err)
	second, err := f.service.GetTicket(ctx, "bk-1")
	require.NoError(t, err)

	assert.Equal(t, first.Encoded, second.Encoded)
	assert.Equal(t, fixedNow, first.Payload.IssuedAt)
}

func TestBookingService_GetTicket_NotConfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("GetBooking", ctx, "bk-1").Return(pendingBooking(), nil).Once()

	_, err := f.service.GetTicket(ctx, "bk-1")

	assert.ErrorIs(t, err, ErrNotTicketed)
}
