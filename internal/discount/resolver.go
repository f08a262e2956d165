package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
)

var ErrCodeNotFound = errors.New("discount code not found")

type Reason string

const (
	ReasonInactive          Reason = "inactive"
	ReasonExpired           Reason = "expired"
	ReasonWrongEvent        Reason = "wrong_event"
	ReasonBudgetExceeded    Reason = "budget_exceeded"
	ReasonNeedsVerification Reason = "needs_verification"
	ReasonInvalidAmount     Reason = "invalid_amount"
)

// IneligibleError reports a code that exists but cannot be honoured for this
// order.
type IneligibleError struct {
	Code   string
	Reason Reason
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("discount code %s is not eligible: %s", e.Code, e.Reason)
}

// NeedsVerification distinguishes a pending student verification from a code
// that is simply unusable.
func (e *IneligibleError) NeedsVerification() bool {
	return e.Reason == ReasonNeedsVerification
}

type Registry interface {
	FindByCode(ctx context.Context, code string) (domain.DiscountCode, error)
}

type EventReader interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

// StudentVerifier answers whether the customer's student documents were
// uploaded and approved.
type StudentVerifier interface {
	IsVerified(ctx context.Context, code, customerEmail string) (bool, error)
}

type Request struct {
	Code          string
	EventID       string
	OrderAmount   int64
	CustomerEmail string
}

type Resolver struct {
	registry Registry
	events   EventReader
	students StudentVerifier
	now      func() time.Time
}

type Option func(*Resolver)

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(registry Registry, events EventReader, students StudentVerifier, opts ...Option) *Resolver {
	r := &Resolver{
		registry: registry,
		events:   events,
		students: students,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve looks the code up and checks every eligibility rule. Nothing is
// cached between calls.
func (r *Resolver) Resolve(ctx context.Context, req Request) (domain.AppliedDiscount, error) {
	code := Normalize(req.Code)
	if code == "" {
		return domain.AppliedDiscount{}, ErrCodeNotFound
	}
	if req.OrderAmount < 0 {
		return domain.AppliedDiscount{}, &IneligibleError{Code: code, Reason: ReasonInvalidAmount}
	}

	rule, err := r.registry.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AppliedDiscount{}, ErrCodeNotFound
		}
		return domain.AppliedDiscount{}, fmt.Errorf("find discount %s: %w: %v", code, domain.ErrTransient, err)
	}

	info := rule.Info()
	if !info.IsActive {
		return domain.AppliedDiscount{}, &IneligibleError{Code: code, Reason: ReasonInactive}
	}
	if info.ExpiresAt != nil && !r.now().Before(*info.ExpiresAt) {
		return domain.AppliedDiscount{}, &IneligibleError{Code: code, Reason: ReasonExpired}
	}
	if info.ScopeEventID != "" && info.ScopeEventID != req.EventID {
		return domain.AppliedDiscount{}, &IneligibleError{Code: code, Reason: ReasonWrongEvent}
	}

	applied := domain.AppliedDiscount{
		Code:      code,
		Kind:      rule.Kind(),
		AmountOff: rule.AmountOff(req.OrderAmount),
		Rule:      rule,
	}

	switch c := rule.(type) {
	case domain.InfluencerCode:
		applied.OwnerID = c.OwnerID
	case domain.StudentPromoCode:
		if c.RequiresDocumentVerification {
			if err := r.checkStudent(ctx, code, req.CustomerEmail); err != nil {
				return domain.AppliedDiscount{}, err
			}
		}
	}

	if err := r.checkBudget(ctx, code, req.EventID, applied.AmountOff); err != nil {
		return domain.AppliedDiscount{}, err
	}
	return applied, nil
}

func (r *Resolver) checkStudent(ctx context.Context, code, email string) error {
	if r.students == nil || email == "" {
		return &IneligibleError{Code: code, Reason: ReasonNeedsVerification}
	}
	ok, err := r.students.IsVerified(ctx, code, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &IneligibleError{Code: code, Reason: ReasonNeedsVerification}
		}
		return fmt.Errorf("student verification for %s: %w: %v", code, domain.ErrTransient, err)
	}
	if !ok {
		return &IneligibleError{Code: code, Reason: ReasonNeedsVerification}
	}
	return nil
}

func (r *Resolver) checkBudget(ctx context.Context, code, eventID string, amountOff int64) error {
	if r.events == nil || eventID == "" {
		return nil
	}
	event, err := r.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &IneligibleError{Code: code, Reason: ReasonWrongEvent}
		}
		return fmt.Errorf("load event %s: %w: %v", eventID, domain.ErrTransient, err)
	}
	if remaining, capped := event.RemainingBudget(); capped && amountOff > remaining {
		return &IneligibleError{Code: code, Reason: ReasonBudgetExceeded}
	}
	return nil
}
