package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PGDiscountRepository struct {
	db *pgxpool.Pool
}

func NewDiscountRepository(db *pgxpool.Pool) *PGDiscountRepository {
	return &PGDiscountRepository{db: db}
}

// FindByCode matches case-insensitively; codes are stored upper case.
func (r *PGDiscountRepository) FindByCode(ctx context.Context, code string) (domain.DiscountCode, error) {
	row := r.db.QueryRow(ctx, `SELECT code, kind, is_active, COALESCE(scope_event_id, ''), expires_at, COALESCE(owner_id, ''),
		COALESCE(percent_off, 0)::text, COALESCE(fixed_off, 0), requires_verification
		FROM discount_codes WHERE code = upper($1)`, strings.TrimSpace(code))

	var (
		info      domain.CodeInfo
		kind      domain.DiscountKind
		expiresAt *time.Time
		ownerID   string
		percent   string
		fixedOff  int64
		requires  bool
	)
	if err := row.Scan(&info.Code, &kind, &info.IsActive, &info.ScopeEventID, &expiresAt, &ownerID, &percent, &fixedOff, &requires); err != nil {
		return nil, notFound(err)
	}
	info.ExpiresAt = expiresAt

	pct, err := decimal.NewFromString(percent)
	if err != nil {
		return nil, fmt.Errorf("discount %s: bad percent_off %q: %w", info.Code, percent, err)
	}

	switch kind {
	case domain.DiscountKindInfluencer:
		return domain.InfluencerCode{CodeInfo: info, OwnerID: ownerID, PercentOff: pct}, nil
	case domain.DiscountKindAdminPromo:
		return domain.AdminPromoCode{CodeInfo: info, PercentOff: pct, FixedOff: fixedOff}, nil
	case domain.DiscountKindStudentPromo:
		return domain.StudentPromoCode{CodeInfo: info, PercentOff: pct, RequiresDocumentVerification: requires}, nil
	default:
		return nil, fmt.Errorf("discount %s: unknown kind %q", info.Code, kind)
	}
}

// IsVerified reports whether the student documents for this code and customer
// were approved.
func (r *PGDiscountRepository) IsVerified(ctx context.Context, code, customerEmail string) (bool, error) {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM student_verifications WHERE code = upper($1) AND customer_email = lower($2)`,
		code, customerEmail).Scan(&status)
	if err != nil {
		return false, notFound(err)
	}
	return status == "APPROVED", nil
}

var (
	_ DiscountRepository            = (*PGDiscountRepository)(nil)
	_ StudentVerificationRepository = (*PGDiscountRepository)(nil)
)
