// Package pricing turns a pass price, a quantity and resolved discount codes
// into the amount the customer is charged.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
)

var (
	ErrInvalidAmount          = errors.New("unit price and quantity must not be negative")
	ErrAmountOverflow         = fmt.Errorf("%w: order total is too large", ErrInvalidAmount)
	ErrDuplicateDiscountClass = errors.New("only one discount per class may be applied")
)

// Subtotal is unitPrice times quantity, rejecting negative inputs and totals
// that do not fit in an int64.
func Subtotal(unitPrice int64, quantity int) (int64, error) {
	if unitPrice < 0 || quantity < 0 {
		return 0, ErrInvalidAmount
	}
	if quantity > 0 && unitPrice > math.MaxInt64/int64(quantity) {
		return 0, ErrAmountOverflow
	}
	return unitPrice * int64(quantity), nil
}

// Compute is pure: the same inputs always give the same result. Discounts
// carrying a rule are re-evaluated against the original amount, so a stale
// AmountOff from an earlier quote cannot leak in.
func Compute(unitPrice int64, quantity int, discounts ...domain.AppliedDiscount) (domain.PricingResult, error) {
	original, err := Subtotal(unitPrice, quantity)
	if err != nil {
		return domain.PricingResult{}, err
	}
	result := domain.PricingResult{
		OriginalAmount: original,
		AppliedCodes:   make([]domain.AppliedDiscount, 0, len(discounts)),
	}

	seen := make(map[domain.DiscountClass]string, 2)
	for _, d := range discounts {
		class := d.Class()
		if prev, ok := seen[class]; ok {
			return domain.PricingResult{}, fmt.Errorf("%w: %s and %s are both %s", ErrDuplicateDiscountClass, prev, d.Code, class)
		}
		seen[class] = d.Code

		if d.Rule != nil {
			d.AmountOff = d.Rule.AmountOff(original)
		}
		if d.AmountOff < 0 {
			d.AmountOff = 0
		}
		result.DiscountAmount += d.AmountOff
		result.AppliedCodes = append(result.AppliedCodes, d)
	}

	result.FinalAmount = original - result.DiscountAmount
	if result.FinalAmount < 0 {
		result.FinalAmount = 0
	}
	return result, nil
}
