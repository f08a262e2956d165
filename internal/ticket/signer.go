// Package ticket signs booking references and encodes the scannable payload.
package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Signer binds a booking to its event and customer. Implementations must be
// deterministic: no randomness and no clock.
type Signer interface {
	Sign(bookingID, eventID, customerEmail string) string
	Verify(bookingID, eventID, customerEmail, token string) bool
}

var ErrEmptySecret = errors.New("ticket signing secret is empty")

func canonical(bookingID, eventID, customerEmail string) string {
	return strings.TrimSpace(bookingID) + ":" + strings.TrimSpace(eventID) + ":" + strings.ToLower(strings.TrimSpace(customerEmail))
}

// HMACSigner keys the token with a server-held secret.
type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HMACSigner{secret: []byte(secret)}, nil
}

func (s *HMACSigner) Sign(bookingID, eventID, customerEmail string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(canonical(bookingID, eventID, customerEmail)))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *HMACSigner) Verify(bookingID, eventID, customerEmail, token string) bool {
	expected := s.Sign(bookingID, eventID, customerEmail)
	return hmac.Equal([]byte(expected), []byte(token))
}

// ChecksumSigner reproduces the legacy unkeyed checksum. Anyone who knows the
// formula can forge it; use only while old tickets are still in circulation.
type ChecksumSigner struct{}

func (ChecksumSigner) Sign(bookingID, eventID, customerEmail string) string {
	sum := xxhash.Sum64String(canonical(bookingID, eventID, customerEmail))
	return strconv.FormatUint(sum, 36)
}

func (c ChecksumSigner) Verify(bookingID, eventID, customerEmail, token string) bool {
	return c.Sign(bookingID, eventID, customerEmail) == token
}

var (
	_ Signer = (*HMACSigner)(nil)
	_ Signer = ChecksumSigner{}
)
