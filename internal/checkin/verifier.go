// Package checkin admits ticket holders at the gate, at most once per booking.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/797Events/797Eventsapp-sub000/internal/ticket"
)

type BookingReader interface {
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
}

type EventReader interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

// AttendanceStore must implement InsertAttendanceIfAbsent as a single atomic
// operation keyed on BookingID. When a record already exists it is returned
// with inserted == false.
type AttendanceStore interface {
	InsertAttendanceIfAbsent(ctx context.Context, record domain.AttendanceRecord) (existing domain.AttendanceRecord, inserted bool, err error)
}

// Auditor receives every scan outcome, including rejections.
type Auditor interface {
	RecordScan(ctx context.Context, entry AuditEntry) error
}

type Metrics interface {
	ObserveScan(outcome string, elapsed time.Duration)
}

type ScanRequest struct {
	// Payload is the encoded ticket as read by the scanner. Either Payload or
	// BookingID must be set.
	Payload   string
	BookingID string
	// EventID is the event the gate is admitting for.
	EventID   string
	Signature string

	ScannedBy    string
	GuardName    string
	ScanLocation string
	ScanTime     time.Time
}

type AuditEntry struct {
	BookingID    string    `json:"booking_id"`
	EventID      string    `json:"event_id"`
	Outcome      Outcome   `json:"outcome"`
	Reason       string    `json:"reason,omitempty"`
	ScannedBy    string    `json:"scanned_by"`
	GuardName    string    `json:"guard_name"`
	ScanLocation string    `json:"scan_location"`
	ScanTime     time.Time `json:"scan_time"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type Verifier struct {
	bookings         BookingReader
	events           EventReader
	attendance       AttendanceStore
	signer           ticket.Signer
	auditor          Auditor
	metrics          Metrics
	logger           *slog.Logger
	storeTimeout     time.Duration
	auditTimeout     time.Duration
	allowManualEntry bool
	now              func() time.Time
}

type Option func(*Verifier)

func WithAuditor(a Auditor) Option { return func(v *Verifier) { v.auditor = a } }

func WithMetrics(m Metrics) Option { return func(v *Verifier) { v.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(v *Verifier) { v.logger = l } }

func WithStoreTimeout(d time.Duration) Option { return func(v *Verifier) { v.storeTimeout = d } }

// WithAuditTimeout bounds the audit write that follows every scan. The write
// runs after the decision is made and never changes the outcome.
func WithAuditTimeout(d time.Duration) Option { return func(v *Verifier) { v.auditTimeout = d } }

// WithManualEntry lets a guard admit on a typed booking reference that carries
// no signature.
func WithManualEntry(allowed bool) Option { return func(v *Verifier) { v.allowManualEntry = allowed } }

func WithClock(now func() time.Time) Option { return func(v *Verifier) { v.now = now } }

func NewVerifier(bookings BookingReader, events EventReader, attendance AttendanceStore, signer ticket.Signer, opts ...Option) *Verifier {
	v := &Verifier{
		bookings:     bookings,
		events:       events,
		attendance:   attendance,
		signer:       signer,
		logger:       slog.Default(),
		storeTimeout: 3 * time.Second,
		auditTimeout: 500 * time.Millisecond,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs one scan through the gate checks. The returned error is non-nil
// only for OutcomeTransientError and wraps domain.ErrTransient.
func (v *Verifier) Verify(ctx context.Context, req ScanRequest) (Result, error) {
	started := v.now()
	res, err := v.verify(ctx, &req)
	v.finish(ctx, req, res, err, started)
	return res, err
}

func (v *Verifier) verify(ctx context.Context, req *ScanRequest) (Result, error) {
	payloadEventID, err := normalize(req)
	if err != nil {
		return Result{Outcome: OutcomeInvalidRequest, Reason: err.Error()}, nil
	}

	booking, err := v.loadBooking(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Result{Outcome: OutcomeNotFound}, nil
		}
		return transient(err)
	}

	summary := summarize(booking)

	if booking.Status != domain.BookingStatusConfirmed {
		return Result{Outcome: OutcomeNotConfirmed, Booking: summary, Reason: string(booking.Status)}, nil
	}

	for _, supplied := range []string{req.EventID, payloadEventID} {
		if supplied != "" && supplied != booking.EventID {
			return Result{Outcome: OutcomeEventMismatch, Booking: summary}, nil
		}
	}

	if req.Signature == "" {
		if !v.allowManualEntry {
			return Result{Outcome: OutcomeInvalidSignature, Booking: summary, Reason: "signature missing"}, nil
		}
	} else if !v.signer.Verify(booking.ID, booking.EventID, booking.CustomerEmail, req.Signature) {
		return Result{Outcome: OutcomeInvalidSignature, Booking: summary}, nil
	}

	if err := ctx.Err(); err != nil {
		return transient(err)
	}

	// Stores keep microseconds at most, so every reader sees the same instant.
	record := domain.AttendanceRecord{
		BookingID:        booking.ID,
		EventID:          booking.EventID,
		CheckInTime:      v.now().UTC().Truncate(time.Microsecond),
		ScannedByGuardID: req.ScannedBy,
		GuardName:        req.GuardName,
		Location:         req.ScanLocation,
	}
	stored, inserted, err := v.insert(ctx, record)
	if err != nil {
		return transient(err)
	}
	v.describeEvent(ctx, summary)

	at := stored.CheckInTime.UTC()
	if at.IsZero() {
		at = record.CheckInTime
	}
	if !inserted {
		return Result{Outcome: OutcomeAlreadyAdmitted, Booking: summary, CheckInTime: &at}, nil
	}
	return Result{Outcome: OutcomeAdmitted, Booking: summary, CheckInTime: &at}, nil
}

// describeEvent adds the event name for the guard's screen. The decision is
// already made, so a failed lookup only leaves the name blank.
func (v *Verifier) describeEvent(ctx context.Context, summary *BookingSummary) {
	if v.events == nil {
		return
	}
	event, err := v.loadEvent(ctx, summary.EventID)
	if err != nil {
		v.logger.Debug("event name unavailable", "event_id", summary.EventID, "error", err)
		return
	}
	summary.EventName = event.Name
}

// normalize fills BookingID and Signature from the payload and returns the
// event id the ticket claims to belong to.
func normalize(req *ScanRequest) (string, error) {
	var payloadEventID string
	if req.Payload != "" {
		p, err := ticket.Decode(req.Payload)
		if err != nil {
			return "", err
		}
		if req.BookingID != "" && req.BookingID != p.BookingID {
			return "", errors.New("booking id does not match ticket payload")
		}
		req.BookingID = p.BookingID
		if req.Signature == "" {
			req.Signature = p.Signature
		}
		payloadEventID = p.EventID
	}
	if req.BookingID == "" {
		return "", errors.New("booking id is required")
	}
	return payloadEventID, nil
}

func (v *Verifier) loadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, v.storeTimeout)
	defer cancel()
	return v.bookings.GetBooking(ctx, id)
}

func (v *Verifier) loadEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, v.storeTimeout)
	defer cancel()
	return v.events.GetEvent(ctx, id)
}

func (v *Verifier) insert(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.storeTimeout)
	defer cancel()
	return v.attendance.InsertAttendanceIfAbsent(ctx, record)
}

func transient(err error) (Result, error) {
	return Result{Outcome: OutcomeTransientError, Reason: "storage unavailable, retry scan"}, fmt.Errorf("%w: %v", domain.ErrTransient, err)
}

func (v *Verifier) finish(ctx context.Context, req ScanRequest, res Result, err error, started time.Time) {
	attrs := []any{
		"booking_id", req.BookingID,
		"event_id", req.EventID,
		"outcome", res.Outcome,
		"scanned_by", req.ScannedBy,
		"location", req.ScanLocation,
	}
	switch res.Outcome {
	case OutcomeAdmitted, OutcomeAlreadyAdmitted:
		v.logger.Info("gate scan", attrs...)
	case OutcomeTransientError:
		v.logger.Error("gate scan", append(attrs, "error", err)...)
	default:
		v.logger.Warn("gate scan", append(attrs, "reason", res.Reason)...)
	}

	if v.metrics != nil {
		v.metrics.ObserveScan(string(res.Outcome), v.now().Sub(started))
	}

	if v.auditor == nil {
		return
	}
	scanTime := req.ScanTime
	if scanTime.IsZero() {
		scanTime = started
	}
	entry := AuditEntry{
		BookingID:    req.BookingID,
		EventID:      req.EventID,
		Outcome:      res.Outcome,
		Reason:       res.Reason,
		ScannedBy:    req.ScannedBy,
		GuardName:    req.GuardName,
		ScanLocation: req.ScanLocation,
		ScanTime:     scanTime.UTC(),
		RecordedAt:   v.now().UTC(),
	}
	if res.Booking != nil && entry.EventID == "" {
		entry.EventID = res.Booking.EventID
	}
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.auditTimeout)
	defer cancel()
	if auditErr := v.auditor.RecordScan(auditCtx, entry); auditErr != nil {
		v.logger.Warn("failed to record scan audit", "booking_id", req.BookingID, "error", auditErr)
	}
}
