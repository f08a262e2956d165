package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, event_id, pass_id, customer_name, customer_email, customer_phone, quantity,
	original_amount, final_amount, status, applied_discounts, ticket_issued_at, expires_at, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	discounts, err := json.Marshal(booking.AppliedDiscounts)
	if err != nil {
		return fmt.Errorf("marshal applied discounts: %w", err)
	}

	booking.Status = domain.BookingStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, event_id, pass_id, customer_name, customer_email, customer_phone,
		quantity, original_amount, final_amount, status, applied_discounts, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		booking.ID, booking.EventID, booking.PassID, booking.CustomerName, booking.CustomerEmail, booking.CustomerPhone,
		booking.Quantity, booking.OriginalAmount, booking.FinalAmount, booking.Status, discounts, booking.ExpiresAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) Confirm(ctx context.Context, id string, issuedAt time.Time) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidTransition
	}

	res, err := tx.Exec(ctx, `UPDATE passes SET sold = sold + $1, updated_at = now() WHERE id=$2 AND sold + $1 <= capacity`, current.Quantity, current.PassID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, domain.ErrPassSoldOut
	}

	if spent := current.DiscountAmount(); spent > 0 {
		res, err := tx.Exec(ctx, `UPDATE events SET discount_spent = discount_spent + $1, updated_at = now()
			WHERE id=$2 AND (discount_budget <= 0 OR discount_spent + $1 <= discount_budget)`, spent, current.EventID)
		if err != nil {
			return nil, err
		}
		if res.RowsAffected() == 0 {
			return nil, domain.ErrDiscountBudgetExceeded
		}
	}

	updated, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET status=$1, ticket_issued_at=$2, updated_at=now()
		WHERE id=$3 RETURNING `+bookingColumns, domain.BookingStatusConfirmed, issuedAt.UTC(), id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status=$3 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, id, domain.BookingStatusPending)
	b, err := scanBooking(row)
	if errors.Is(err, domain.ErrNotFound) {
		if _, getErr := r.GetBooking(ctx, id); getErr == nil {
			return nil, domain.ErrInvalidTransition
		}
	}
	return b, err
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND expires_at <= $3 RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b         domain.Booking
		discounts []byte
	)
	if err := row.Scan(&b.ID, &b.EventID, &b.PassID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.Quantity,
		&b.OriginalAmount, &b.FinalAmount, &b.Status, &discounts, &b.TicketIssuedAt, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	if len(discounts) > 0 {
		if err := json.Unmarshal(discounts, &b.AppliedDiscounts); err != nil {
			return nil, fmt.Errorf("decode applied discounts of %s: %w", b.ID, err)
		}
	}
	return &b, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
