package api

import (
	"net/http"
	"time"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/797Events/797Eventsapp-sub000/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type quoteRequest struct {
	EventID        string `json:"event_id"`
	PassID         string `json:"pass_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required"`
	InfluencerCode string `json:"influencer_code"`
	PromoCode      string `json:"promo_code"`
	CustomerEmail  string `json:"customer_email"`
}

func (r quoteRequest) input() booking.QuoteInput {
	return booking.QuoteInput{
		EventID:        r.EventID,
		PassID:         r.PassID,
		Quantity:       r.Quantity,
		InfluencerCode: r.InfluencerCode,
		PromoCode:      r.PromoCode,
		CustomerEmail:  r.CustomerEmail,
	}
}

type createBookingRequest struct {
	quoteRequest
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
}

type appliedCodeResponse struct {
	Code      string `json:"code"`
	Kind      string `json:"kind"`
	OwnerID   string `json:"owner_id,omitempty"`
	AmountOff int64  `json:"amount_off"`
}

type quoteResponse struct {
	EventID        string                `json:"event_id"`
	PassID         string                `json:"pass_id"`
	Quantity       int                   `json:"quantity"`
	UnitPrice      int64                 `json:"unit_price"`
	OriginalAmount int64                 `json:"original_amount"`
	DiscountAmount int64                 `json:"discount_amount"`
	FinalAmount    int64                 `json:"final_amount"`
	AppliedCodes   []appliedCodeResponse `json:"applied_codes"`
}

type bookingResponse struct {
	ID             string                `json:"id"`
	Status         string                `json:"status"`
	EventID        string                `json:"event_id"`
	PassID         string                `json:"pass_id"`
	Quantity       int                   `json:"quantity"`
	CustomerName   string                `json:"customer_name"`
	Email          string                `json:"email"`
	OriginalAmount int64                 `json:"original_amount"`
	FinalAmount    int64                 `json:"final_amount"`
	AppliedCodes   []appliedCodeResponse `json:"applied_codes"`
	ExpiresAt      string                `json:"expires_at"`
}

type ticketResponse struct {
	Booking   bookingResponse `json:"booking"`
	Ticket    string          `json:"ticket"`
	Signature string          `json:"signature"`
	IssuedAt  string          `json:"issued_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/quote", h.quote)
	router.POST("/", h.create)
	router.PUT("/:id", h.confirm)
	router.DELETE("/:id", h.cancel)
	router.GET("/:id/ticket", h.ticket)
}

func (h *BookingHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	q, err := h.service.Quote(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quoteResponse{
		EventID:        q.EventID,
		PassID:         q.PassID,
		Quantity:       q.Quantity,
		UnitPrice:      q.UnitPrice,
		OriginalAmount: q.Pricing.OriginalAmount,
		DiscountAmount: q.Pricing.DiscountAmount,
		FinalAmount:    q.Pricing.FinalAmount,
		AppliedCodes:   toAppliedCodes(q.Pricing.AppliedCodes),
	})
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		QuoteInput:    req.input(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(b))
}

// confirm is called once payment has been captured.
func (h *BookingHandler) confirm(c *gin.Context) {
	issued, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(issued))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) ticket(c *gin.Context) {
	issued, err := h.service.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(issued))
}

func toAppliedCodes(applied []domain.AppliedDiscount) []appliedCodeResponse {
	out := make([]appliedCodeResponse, 0, len(applied))
	for _, d := range applied {
		out = append(out, appliedCodeResponse{
			Code:      d.Code,
			Kind:      string(d.Kind),
			OwnerID:   d.OwnerID,
			AmountOff: d.AmountOff,
		})
	}
	return out
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:             b.ID,
		Status:         string(b.Status),
		EventID:        b.EventID,
		PassID:         b.PassID,
		Quantity:       b.Quantity,
		CustomerName:   b.CustomerName,
		Email:          b.CustomerEmail,
		OriginalAmount: b.OriginalAmount,
		FinalAmount:    b.FinalAmount,
		AppliedCodes:   toAppliedCodes(b.AppliedDiscounts),
		ExpiresAt:      b.ExpiresAt.Format(time.RFC3339),
	}
}

func toTicketResponse(t *booking.IssuedTicket) ticketResponse {
	return ticketResponse{
		Booking:   toBookingResponse(t.Booking),
		Ticket:    t.Encoded,
		Signature: t.Payload.Signature,
		IssuedAt:  t.Payload.IssuedAt.Format(time.RFC3339),
	}
}
