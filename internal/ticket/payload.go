package ticket

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
)

var ErrMalformedPayload = errors.New("malformed ticket payload")

// Issue builds the payload for a booking. It is derived from the booking alone,
// so re-issuing with the same issue time yields the same payload.
func Issue(s Signer, booking *domain.Booking, issuedAt time.Time) domain.TicketPayload {
	return domain.TicketPayload{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		IssuedAt:  issuedAt.UTC().Truncate(time.Second),
		Signature: s.Sign(booking.ID, booking.EventID, booking.CustomerEmail),
	}
}

// Encode renders the payload as URL-safe base64 of its JSON form.
func Encode(p domain.TicketPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal ticket payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode accepts either the encoded form or the raw JSON some scanners emit.
func Decode(raw string) (domain.TicketPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.TicketPayload{}, ErrMalformedPayload
	}

	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
		if err != nil {
			return domain.TicketPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		data = decoded
	}

	var p domain.TicketPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.TicketPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.BookingID == "" {
		return domain.TicketPayload{}, fmt.Errorf("%w: missing booking id", ErrMalformedPayload)
	}
	return p, nil
}
