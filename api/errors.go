package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/797Events/797Eventsapp-sub000/internal/discount"
	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/797Events/797Eventsapp-sub000/internal/pricing"
	"github.com/797Events/797Eventsapp-sub000/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// Reason is set for discount codes that exist but cannot be used.
	Reason string `json:"reason,omitempty"`
}

// writeError maps use case errors to HTTP responses. Unknown errors are logged
// and reported without detail.
func writeError(c *gin.Context, err error) {
	var ineligible *discount.IneligibleError
	switch {
	case errors.As(err, &ineligible):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "code_ineligible", Reason: string(ineligible.Reason)})
	case errors.Is(err, domain.ErrDiscountBudgetExceeded):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "code_ineligible", Reason: string(discount.ReasonBudgetExceeded)})
	case errors.Is(err, discount.ErrCodeNotFound):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "code_not_found"})
	case errors.Is(err, pricing.ErrDuplicateDiscountClass):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "duplicate_discount_class"})
	case errors.Is(err, booking.ErrInvalidInput), errors.Is(err, pricing.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_input"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, domain.ErrPassSoldOut):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "sold_out"})
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, booking.ErrHoldExpired), errors.Is(err, booking.ErrNotTicketed):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "invalid_state"})
	case errors.Is(err, domain.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable, retry", Code: "transient"})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}
