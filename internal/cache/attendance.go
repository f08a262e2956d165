package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AttendanceStore keeps admission records in Redis. SETNX makes the insert
// atomic across every gate process sharing the instance; keys never expire.
type AttendanceStore struct {
	client *redis.Client
}

func NewAttendanceStore(client *redis.Client) *AttendanceStore {
	return &AttendanceStore{client: client}
}

func (s *AttendanceStore) InsertAttendanceIfAbsent(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, bool, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return domain.AttendanceRecord{}, false, err
	}

	ok, err := s.client.SetNX(ctx, attendanceKey(record.BookingID), payload, 0).Result()
	if err != nil {
		return domain.AttendanceRecord{}, false, err
	}
	if ok {
		return record, true, nil
	}

	existing, err := s.GetAttendance(ctx, record.BookingID)
	if err != nil {
		return domain.AttendanceRecord{}, false, err
	}
	return *existing, false, nil
}

func (s *AttendanceStore) GetAttendance(ctx context.Context, bookingID string) (*domain.AttendanceRecord, error) {
	data, err := s.client.Get(ctx, attendanceKey(bookingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var rec domain.AttendanceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode attendance %s: %w", bookingID, err)
	}
	return &rec, nil
}

func attendanceKey(bookingID string) string {
	return fmt.Sprintf("attendance:booking:%s", bookingID)
}
