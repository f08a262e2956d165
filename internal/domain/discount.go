package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountKindInfluencer   DiscountKind = "INFLUENCER"
	DiscountKindAdminPromo   DiscountKind = "ADMIN_PROMO"
	DiscountKindStudentPromo DiscountKind = "STUDENT_PROMO"
)

// DiscountClass groups kinds that may not be stacked with each other.
type DiscountClass string

const (
	DiscountClassInfluencer DiscountClass = "INFLUENCER"
	DiscountClassPromo      DiscountClass = "PROMO"
)

func (k DiscountKind) Class() DiscountClass {
	if k == DiscountKindInfluencer {
		return DiscountClassInfluencer
	}
	return DiscountClassPromo
}

// CodeInfo holds the fields every discount code variant carries.
type CodeInfo struct {
	Code         string
	IsActive     bool
	ScopeEventID string
	ExpiresAt    *time.Time
}

func (c CodeInfo) Info() CodeInfo { return c }

// DiscountCode is implemented only by InfluencerCode, AdminPromoCode and
// StudentPromoCode.
type DiscountCode interface {
	Info() CodeInfo
	Kind() DiscountKind
	// AmountOff returns the discount for orderAmount in minor units, rounded down
	// and never above orderAmount.
	AmountOff(orderAmount int64) int64
	isDiscountCode()
}

type InfluencerCode struct {
	CodeInfo
	OwnerID    string
	PercentOff decimal.Decimal
}

func (InfluencerCode) Kind() DiscountKind { return DiscountKindInfluencer }
func (InfluencerCode) isDiscountCode()    {}

func (c InfluencerCode) AmountOff(orderAmount int64) int64 {
	return percentOf(orderAmount, c.PercentOff)
}

// AdminPromoCode is either a percentage or a fixed amount off; FixedOff wins
// when both are set.
type AdminPromoCode struct {
	CodeInfo
	PercentOff decimal.Decimal
	FixedOff   int64
}

func (AdminPromoCode) Kind() DiscountKind { return DiscountKindAdminPromo }
func (AdminPromoCode) isDiscountCode()    {}

func (c AdminPromoCode) AmountOff(orderAmount int64) int64 {
	if c.FixedOff > 0 {
		return fixedOf(orderAmount, c.FixedOff)
	}
	return percentOf(orderAmount, c.PercentOff)
}

type StudentPromoCode struct {
	CodeInfo
	PercentOff                   decimal.Decimal
	RequiresDocumentVerification bool
}

func (StudentPromoCode) Kind() DiscountKind { return DiscountKindStudentPromo }
func (StudentPromoCode) isDiscountCode()    {}

func (c StudentPromoCode) AmountOff(orderAmount int64) int64 {
	return percentOf(orderAmount, c.PercentOff)
}

var hundred = decimal.NewFromInt(100)

func percentOf(amount int64, percent decimal.Decimal) int64 {
	if amount <= 0 || !percent.IsPositive() {
		return 0
	}
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	return decimal.NewFromInt(amount).Mul(percent).Div(hundred).Floor().IntPart()
}

func fixedOf(amount, fixed int64) int64 {
	if amount <= 0 || fixed <= 0 {
		return 0
	}
	if fixed > amount {
		return amount
	}
	return fixed
}

// AppliedDiscount is a resolved code bound to an order.
type AppliedDiscount struct {
	Code      string       `json:"code"`
	Kind      DiscountKind `json:"kind"`
	OwnerID   string       `json:"owner_id,omitempty"`
	AmountOff int64        `json:"amount_off"`
	Rule      DiscountCode `json:"-"`
}

func (d AppliedDiscount) Class() DiscountClass { return d.Kind.Class() }

type PricingResult struct {
	OriginalAmount int64             `json:"original_amount"`
	DiscountAmount int64             `json:"discount_amount"`
	FinalAmount    int64             `json:"final_amount"`
	AppliedCodes   []AppliedDiscount `json:"applied_codes"`
}
