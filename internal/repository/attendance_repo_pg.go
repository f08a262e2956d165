package repository

import (
	"context"
	"errors"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// rowQuerier is the part of *pgxpool.Pool the attendance repository uses.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGAttendanceRepository struct {
	db rowQuerier
}

func NewAttendanceRepository(db *pgxpool.Pool) AttendanceRepository {
	return &PGAttendanceRepository{db: db}
}

// InsertAttendanceIfAbsent relies on the primary key on booking_id: the insert
// either wins or does nothing, and the losing caller reads the winner's row.
// Both paths return the stored check_in_time, in UTC.
func (r *PGAttendanceRepository) InsertAttendanceIfAbsent(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, bool, error) {
	var inserted domain.AttendanceRecord
	err := r.db.QueryRow(ctx, `INSERT INTO attendance (booking_id, event_id, check_in_time, scanned_by_guard_id, guard_name, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (booking_id) DO NOTHING
		RETURNING booking_id, event_id, check_in_time, scanned_by_guard_id, guard_name, location`,
		record.BookingID, record.EventID, record.CheckInTime, record.ScannedByGuardID, record.GuardName, record.Location).
		Scan(&inserted.BookingID, &inserted.EventID, &inserted.CheckInTime, &inserted.ScannedByGuardID, &inserted.GuardName, &inserted.Location)
	if err == nil {
		inserted.CheckInTime = inserted.CheckInTime.UTC()
		return inserted, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.AttendanceRecord{}, false, err
	}

	existing, err := r.GetAttendance(ctx, record.BookingID)
	if err != nil {
		return domain.AttendanceRecord{}, false, err
	}
	return *existing, false, nil
}

func (r *PGAttendanceRepository) GetAttendance(ctx context.Context, bookingID string) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	err := r.db.QueryRow(ctx, `SELECT booking_id, event_id, check_in_time, scanned_by_guard_id, guard_name, location FROM attendance WHERE booking_id=$1`, bookingID).
		Scan(&rec.BookingID, &rec.EventID, &rec.CheckInTime, &rec.ScannedByGuardID, &rec.GuardName, &rec.Location)
	if err != nil {
		return nil, notFound(err)
	}
	rec.CheckInTime = rec.CheckInTime.UTC()
	return &rec, nil
}

var _ AttendanceRepository = (*PGAttendanceRepository)(nil)
